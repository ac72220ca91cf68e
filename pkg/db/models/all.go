package models

// All lists every persisted model, parents before children, for AutoMigrate
// in local sqlite mode and repository tests.
func All() []any {
	return []any{
		&User{},
		&Neighborhood{},
		&ShippingMethod{},
		&LoyaltyProfile{},
		&LoyaltyHistoryEntry{},
		&Category{},
		&CategoryDiscount{},
		&CatalogItem{},
		&Variant{},
		&OrderStatus{},
		&Order{},
		&OrderLine{},
		&Cart{},
		&CartLine{},
		&Coupon{},
		&StoreSetting{},
		&Theme{},
		&OutboxEvent{},
		&OutboxDLQ{},
	}
}
