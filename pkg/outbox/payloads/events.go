package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLineSnapshot is the frozen line data carried by order events.
type OrderLineSnapshot struct {
	VariantID uuid.UUID       `json:"variant_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderCreatedEvent is emitted once an order and its lines are committed.
type OrderCreatedEvent struct {
	OrderID      uuid.UUID           `json:"order_id"`
	BuyerUserID  *uuid.UUID          `json:"buyer_user_id,omitempty"`
	GuestName    *string             `json:"guest_name,omitempty"`
	BuyerEmail   string              `json:"buyer_email,omitempty"`
	SellerUserID *uuid.UUID          `json:"seller_user_id,omitempty"`
	TotalPrice   decimal.Decimal     `json:"total_price"`
	PointsEarned *int                `json:"points_earned,omitempty"`
	Status       string              `json:"status"`
	Lines        []OrderLineSnapshot `json:"lines"`
	CreatedAt    time.Time           `json:"created_at"`
}

// OrderStatusChangedEvent is emitted when staff move an order to another status.
type OrderStatusChangedEvent struct {
	OrderID        uuid.UUID  `json:"order_id"`
	BuyerUserID    *uuid.UUID `json:"buyer_user_id,omitempty"`
	PreviousStatus string     `json:"previous_status"`
	Status         string     `json:"status"`
	ChangedBy      uuid.UUID  `json:"changed_by"`
	ChangedAt      time.Time  `json:"changed_at"`
}
