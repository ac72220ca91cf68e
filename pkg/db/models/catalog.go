package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Category groups catalog items and carries the fallback discount.
type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (c *Category) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}

// CategoryDiscount is a percentage applied to every item of a category without a direct discount.
type CategoryDiscount struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CategoryID uuid.UUID       `gorm:"column:category_id;type:uuid;not null;index"`
	Percent    decimal.Decimal `gorm:"column:percent;type:numeric(5,2);not null"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (d *CategoryDiscount) BeforeCreate(*gorm.DB) error {
	assignID(&d.ID)
	return nil
}

// CatalogItem is a sellable product; stock lives on its variants.
type CatalogItem struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey"`
	Name            string           `gorm:"column:name;not null"`
	Description     *string          `gorm:"column:description"`
	BasePrice       decimal.Decimal  `gorm:"column:base_price;type:numeric(12,2);not null"`
	DiscountPercent *decimal.Decimal `gorm:"column:discount_percent;type:numeric(5,2)"`
	CategoryID      *uuid.UUID       `gorm:"column:category_id;type:uuid;index"`
	PointsPerUnit   int              `gorm:"column:points_per_unit;not null;default:0"`
	ImagePath       *string          `gorm:"column:image_path"`
	IsActive        bool             `gorm:"column:is_active;not null;default:true"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (i *CatalogItem) BeforeCreate(*gorm.DB) error {
	assignID(&i.ID)
	return nil
}

// Variant is a purchasable configuration of a catalog item with its own stock.
type Variant struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	CatalogItemID  uuid.UUID `gorm:"column:catalog_item_id;type:uuid;not null;index"`
	AttributeName  string    `gorm:"column:attribute_name;not null"`
	AttributeValue string    `gorm:"column:attribute_value;not null"`
	Stock          int       `gorm:"column:stock;not null;default:0;check:stock >= 0"`
	Sold           int       `gorm:"column:sold;not null;default:0;check:sold >= 0"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (v *Variant) BeforeCreate(*gorm.DB) error {
	assignID(&v.ID)
	return nil
}
