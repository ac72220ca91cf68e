package presenters

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/settings"
)

// ImageURLs turns storage-relative image paths into absolute URLs.
type ImageURLs struct {
	base string
}

func NewImageURLs(publicBaseURL string) ImageURLs {
	return ImageURLs{base: strings.TrimRight(strings.TrimSpace(publicBaseURL), "/")}
}

// URL returns nil for an empty path and leaves absolute URLs untouched.
func (p ImageURLs) URL(path *string) *string {
	if path == nil {
		return nil
	}
	raw := strings.TrimSpace(*path)
	if raw == "" {
		return nil
	}
	if u, err := url.Parse(raw); err == nil && u.IsAbs() {
		return &raw
	}
	if p.base == "" {
		return &raw
	}
	full := p.base + "/" + strings.TrimLeft(raw, "/")
	return &full
}

// CatalogItem is the wire shape of a catalog item.
type CatalogItem struct {
	ID              uuid.UUID            `json:"id"`
	Name            string               `json:"name"`
	Description     *string              `json:"description,omitempty"`
	CategoryID      *uuid.UUID           `json:"category_id,omitempty"`
	BasePrice       decimal.Decimal      `json:"base_price"`
	Price           decimal.Decimal      `json:"price"`
	DiscountPercent int                  `json:"discount_percent"`
	PointsPerUnit   int                  `json:"points_per_unit"`
	ImageURL        *string              `json:"image_url,omitempty"`
	Variants        []catalog.VariantDTO `json:"variants"`
	CreatedAt       time.Time            `json:"created_at"`
}

// CatalogItemList is the wire shape of a catalog page.
type CatalogItemList struct {
	Items      []CatalogItem `json:"items"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

func (p ImageURLs) Item(item catalog.ItemDTO) CatalogItem {
	return CatalogItem{
		ID:              item.ID,
		Name:            item.Name,
		Description:     item.Description,
		CategoryID:      item.CategoryID,
		BasePrice:       item.BasePrice,
		Price:           item.Price,
		DiscountPercent: item.DiscountPercent,
		PointsPerUnit:   item.PointsPerUnit,
		ImageURL:        p.URL(item.ImagePath),
		Variants:        item.Variants,
		CreatedAt:       item.CreatedAt,
	}
}

func (p ImageURLs) ItemList(list *catalog.ItemList) CatalogItemList {
	out := CatalogItemList{Items: make([]CatalogItem, 0)}
	if list == nil {
		return out
	}
	for _, item := range list.Items {
		out.Items = append(out.Items, p.Item(item))
	}
	out.NextCursor = list.NextCursor
	return out
}

// Theme is the wire shape of a storefront theme.
type Theme struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	PrimaryColor   string    `json:"primary_color"`
	SecondaryColor string    `json:"secondary_color"`
	LogoURL        *string   `json:"logo_url,omitempty"`
	IsActive       bool      `json:"is_active"`
}

func (p ImageURLs) Theme(t settings.ThemeDTO) Theme {
	return Theme{
		ID:             t.ID,
		Name:           t.Name,
		PrimaryColor:   t.PrimaryColor,
		SecondaryColor: t.SecondaryColor,
		LogoURL:        p.URL(t.LogoPath),
		IsActive:       t.IsActive,
	}
}
