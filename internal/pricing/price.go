package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

var hundred = decimal.NewFromInt(100)

// Quote is the effective price of a catalog item at read time.
type Quote struct {
	ItemID          uuid.UUID       `json:"item_id"`
	BasePrice       decimal.Decimal `json:"base_price"`
	Price           decimal.Decimal `json:"price"`
	DiscountPercent int             `json:"discount_percent"`
	PointsPerUnit   int             `json:"points_per_unit"`
}

// EffectivePrice applies the single applicable discount to the item's base price.
// A positive direct discount wins; otherwise categoryDiscount (may be nil) is used.
func EffectivePrice(item models.CatalogItem, categoryDiscount *decimal.Decimal) Quote {
	pct := decimal.Zero
	switch {
	case item.DiscountPercent != nil && item.DiscountPercent.IsPositive():
		pct = *item.DiscountPercent
	case categoryDiscount != nil:
		pct = *categoryDiscount
	}
	pct = clampPercent(pct)

	base := item.BasePrice
	price := base.Sub(base.Mul(pct).Div(hundred)).Round(2)
	if price.IsNegative() {
		price = decimal.Zero
	}

	return Quote{
		ItemID:          item.ID,
		BasePrice:       base,
		Price:           price,
		DiscountPercent: int(pct.Round(0).IntPart()),
		PointsPerUnit:   item.PointsPerUnit,
	}
}

func clampPercent(pct decimal.Decimal) decimal.Decimal {
	if pct.IsNegative() {
		return decimal.Zero
	}
	if pct.GreaterThan(hundred) {
		return hundred
	}
	return pct
}
