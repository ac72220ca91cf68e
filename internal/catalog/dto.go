package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/internal/pricing"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// ListFilters describe the supported filter knobs for the browse endpoint.
type ListFilters struct {
	CategoryID *uuid.UUID `json:"category_id,omitempty"`
	Query      string     `json:"q,omitempty"`
}

// VariantDTO is a purchasable variant with its current stock.
type VariantDTO struct {
	ID             uuid.UUID `json:"id"`
	AttributeName  string    `json:"attribute_name"`
	AttributeValue string    `json:"attribute_value"`
	Stock          int       `json:"stock"`
}

// ItemDTO is a catalog item priced at its effective price. ImagePath is
// storage-relative; the HTTP layer turns it into a URL.
type ItemDTO struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	Description     *string         `json:"description,omitempty"`
	CategoryID      *uuid.UUID      `json:"category_id,omitempty"`
	BasePrice       decimal.Decimal `json:"base_price"`
	Price           decimal.Decimal `json:"price"`
	DiscountPercent int             `json:"discount_percent"`
	PointsPerUnit   int             `json:"points_per_unit"`
	ImagePath       *string         `json:"image_path,omitempty"`
	Variants        []VariantDTO    `json:"variants"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ItemList is a cursor page of catalog items.
type ItemList struct {
	Items      []ItemDTO `json:"items"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

func newItemDTO(item models.CatalogItem, quote pricing.Quote, variants []models.Variant) ItemDTO {
	dto := ItemDTO{
		ID:              item.ID,
		Name:            item.Name,
		Description:     item.Description,
		CategoryID:      item.CategoryID,
		BasePrice:       item.BasePrice,
		Price:           quote.Price,
		DiscountPercent: quote.DiscountPercent,
		PointsPerUnit:   item.PointsPerUnit,
		ImagePath:       item.ImagePath,
		Variants:        make([]VariantDTO, 0, len(variants)),
		CreatedAt:       item.CreatedAt,
	}
	for _, v := range variants {
		dto.Variants = append(dto.Variants, VariantDTO{
			ID:             v.ID,
			AttributeName:  v.AttributeName,
			AttributeValue: v.AttributeValue,
			Stock:          v.Stock,
		})
	}
	return dto
}
