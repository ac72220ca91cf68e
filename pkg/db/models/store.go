package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StoreSettingsID is the primary key of the singleton store_settings row.
const StoreSettingsID = 1

// StoreSetting is the singleton configuration row of the storefront.
type StoreSetting struct {
	ID            int       `gorm:"column:id;primaryKey;autoIncrement:false"`
	LoyaltyActive bool      `gorm:"column:loyalty_active;not null;default:false"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Theme is a storefront design; at most one row is active.
type Theme struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name           string    `gorm:"column:name;not null;uniqueIndex"`
	PrimaryColor   string    `gorm:"column:primary_color;not null"`
	SecondaryColor string    `gorm:"column:secondary_color;not null"`
	LogoPath       *string   `gorm:"column:logo_path"`
	IsActive       bool      `gorm:"column:is_active;not null;default:false"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (t *Theme) BeforeCreate(*gorm.DB) error {
	assignID(&t.ID)
	return nil
}

// Coupon is a discount code validated at checkout time.
type Coupon struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Code      string          `gorm:"column:code;not null;uniqueIndex"`
	Discount  decimal.Decimal `gorm:"column:discount;type:numeric(12,2);not null"`
	ExpiresAt *time.Time      `gorm:"column:expires_at"`
	IsActive  bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Coupon) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}

// Neighborhood is a delivery zone with its delivery price.
type Neighborhood struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name          string          `gorm:"column:name;not null;uniqueIndex"`
	DeliveryPrice decimal.Decimal `gorm:"column:delivery_price;type:numeric(12,2);not null;default:0"`
	IsActive      bool            `gorm:"column:is_active;not null;default:true"`
}

func (n *Neighborhood) BeforeCreate(*gorm.DB) error {
	assignID(&n.ID)
	return nil
}

// ShippingMethod names how an order reaches the buyer.
type ShippingMethod struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name     string    `gorm:"column:name;not null;uniqueIndex"`
	IsActive bool      `gorm:"column:is_active;not null;default:true"`
}

func (m *ShippingMethod) BeforeCreate(*gorm.DB) error {
	assignID(&m.ID)
	return nil
}
