package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddLineInput is the payload of an add-to-cart request.
type AddLineInput struct {
	VariantID uuid.UUID `json:"variant_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

// LineDTO is one cart line priced at the current effective price.
type LineDTO struct {
	VariantID      uuid.UUID       `json:"variant_id"`
	CatalogItemID  uuid.UUID       `json:"catalog_item_id"`
	AttributeName  string          `json:"attribute_name"`
	AttributeValue string          `json:"attribute_value"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Available      int             `json:"available"`
}

// CartDTO is the caller's cart. Prices are indicative; the order freezes them.
type CartDTO struct {
	UserID uuid.UUID       `json:"user_id"`
	Lines  []LineDTO       `json:"lines"`
	Total  decimal.Decimal `json:"total"`
}
