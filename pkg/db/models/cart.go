package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cart is the single mutable basket owned by a registered user.
type Cart struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
	Lines     []CartLine `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
}

func (c *Cart) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}

// CartLine holds the quantity of one variant inside a cart.
type CartLine struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CartID    uuid.UUID `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:ux_cart_lines_cart_variant"`
	VariantID uuid.UUID `gorm:"column:variant_id;type:uuid;not null;uniqueIndex:ux_cart_lines_cart_variant"`
	Quantity  int       `gorm:"column:quantity;not null;check:quantity > 0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (l *CartLine) BeforeCreate(*gorm.DB) error {
	assignID(&l.ID)
	return nil
}
