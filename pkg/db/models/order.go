package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus is a row of the order_statuses lookup table.
type OrderStatus struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;not null;uniqueIndex"`
	SortOrder int       `gorm:"column:sort_order;not null;default:0"`
}

func (s *OrderStatus) BeforeCreate(*gorm.DB) error {
	assignID(&s.ID)
	return nil
}

// Order is a persisted sale. After creation only status and receipt change.
type Order struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	BuyerUserID      *uuid.UUID      `gorm:"column:buyer_user_id;type:uuid;index"`
	GuestName        *string         `gorm:"column:guest_name"`
	SellerUserID     *uuid.UUID      `gorm:"column:seller_user_id;type:uuid"`
	TotalPrice       decimal.Decimal `gorm:"column:total_price;type:numeric(12,2);not null"`
	NeighborhoodID   *uuid.UUID      `gorm:"column:neighborhood_id;type:uuid"`
	ShippingMethodID *uuid.UUID      `gorm:"column:shipping_method_id;type:uuid"`
	Address          *string         `gorm:"column:address"`
	DeliveryDate     *time.Time      `gorm:"column:delivery_date"`
	DeliveryWindow   *string         `gorm:"column:delivery_window"`
	StatusID         uuid.UUID       `gorm:"column:status_id;type:uuid;not null"`
	PointsEarned     *int            `gorm:"column:points_earned"`
	ReceiptRef       *string         `gorm:"column:receipt_ref"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime"`

	Status OrderStatus `gorm:"foreignKey:StatusID"`
	Lines  []OrderLine `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	assignID(&o.ID)
	return nil
}

// OrderLine freezes the variant, quantity and price bought within an order.
type OrderLine struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	VariantID uuid.UUID       `gorm:"column:variant_id;type:uuid;not null"`
	Quantity  int             `gorm:"column:quantity;not null;check:quantity > 0"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Subtotal  decimal.Decimal `gorm:"column:subtotal;type:numeric(12,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (l *OrderLine) BeforeCreate(*gorm.DB) error {
	assignID(&l.ID)
	return nil
}
