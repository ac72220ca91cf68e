package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Actor is the authenticated caller placing or reading an order.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// IsStaff reports whether the actor may act on behalf of other buyers.
func (a *Actor) IsStaff() bool {
	return a != nil && a.Role.IsStaff()
}

// NewBuyer registers a customer as part of the order. Profile is mandatory.
type NewBuyer struct {
	Email     string              `json:"email" validate:"required,email"`
	Password  string              `json:"password,omitempty" validate:"omitempty,min=8"`
	FirstName string              `json:"first_name" validate:"required"`
	LastName  string              `json:"last_name" validate:"required"`
	Profile   *users.ProfileInput `json:"profile"`
}

func (n NewBuyer) registration() users.RegistrationInput {
	in := users.RegistrationInput{
		Email:     n.Email,
		Password:  n.Password,
		FirstName: n.FirstName,
		LastName:  n.LastName,
	}
	if n.Profile != nil {
		in.Profile = *n.Profile
	}
	return in
}

// BuyerDescriptor names who the order is for. At most one field is set; when
// none is, the authenticated caller becomes the buyer.
type BuyerDescriptor struct {
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	GuestName *string    `json:"guest_name,omitempty" validate:"omitempty,max=120"`
	NewUser   *NewBuyer  `json:"new_user,omitempty"`
}

// LineRequest is one requested variant. UnitPrice or Subtotal, when given,
// override the resolved price.
type LineRequest struct {
	VariantID uuid.UUID        `json:"variant_id" validate:"required"`
	Quantity  int              `json:"quantity" validate:"required,gt=0"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
	Subtotal  *decimal.Decimal `json:"subtotal,omitempty"`
}

// DeliveryInfo carries the optional delivery fields of an order.
type DeliveryInfo struct {
	NeighborhoodID   *uuid.UUID `json:"neighborhood_id,omitempty"`
	ShippingMethodID *uuid.UUID `json:"shipping_method_id,omitempty"`
	Address          *string    `json:"address,omitempty" validate:"omitempty,max=255"`
	DeliveryDate     *time.Time `json:"delivery_date,omitempty"`
	DeliveryWindow   *string    `json:"delivery_window,omitempty" validate:"omitempty,max=64"`
}

// PlaceOrderInput is everything PlaceOrder needs.
type PlaceOrderInput struct {
	Actor    *Actor
	Buyer    BuyerDescriptor
	Lines    []LineRequest
	Delivery DeliveryInfo
	// FromCart replaces Lines with the buyer's cart contents.
	FromCart bool
	// ClearCart empties the buyer's cart in the same transaction; nil uses the configured default.
	ClearCart *bool
}

// LineDTO is a frozen order line.
type LineDTO struct {
	ID        uuid.UUID       `json:"id"`
	VariantID uuid.UUID       `json:"variant_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderDTO is the persisted order returned to callers.
type OrderDTO struct {
	ID               uuid.UUID       `json:"id"`
	BuyerUserID      *uuid.UUID      `json:"buyer_user_id,omitempty"`
	GuestName        *string         `json:"guest_name,omitempty"`
	SellerUserID     *uuid.UUID      `json:"seller_user_id,omitempty"`
	TotalPrice       decimal.Decimal `json:"total_price"`
	NeighborhoodID   *uuid.UUID      `json:"neighborhood_id,omitempty"`
	ShippingMethodID *uuid.UUID      `json:"shipping_method_id,omitempty"`
	Address          *string         `json:"address,omitempty"`
	DeliveryDate     *time.Time      `json:"delivery_date,omitempty"`
	DeliveryWindow   *string         `json:"delivery_window,omitempty"`
	Status           string          `json:"status"`
	PointsEarned     *int            `json:"points_earned,omitempty"`
	ReceiptRef       *string         `json:"receipt_ref,omitempty"`
	Lines            []LineDTO       `json:"lines"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// OrderList is a cursor page of orders.
type OrderList struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// ListFilters narrows staff order listings.
type ListFilters struct {
	Status       string
	BuyerUserID  *uuid.UUID
	SellerUserID *uuid.UUID
}

// SellerSales is one row of the per-seller sales report.
type SellerSales struct {
	SellerUserID uuid.UUID       `json:"seller_user_id"`
	SellerEmail  string          `json:"seller_email"`
	OrderCount   int64           `json:"order_count"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// UpdateOrderInput carries the mutable order fields.
type UpdateOrderInput struct {
	Status     *string `json:"status,omitempty"`
	ReceiptRef *string `json:"receipt_ref,omitempty" validate:"omitempty,max=512"`
}

func orderFromModel(m models.Order) OrderDTO {
	dto := OrderDTO{
		ID:               m.ID,
		BuyerUserID:      m.BuyerUserID,
		GuestName:        m.GuestName,
		SellerUserID:     m.SellerUserID,
		TotalPrice:       m.TotalPrice,
		NeighborhoodID:   m.NeighborhoodID,
		ShippingMethodID: m.ShippingMethodID,
		Address:          m.Address,
		DeliveryDate:     m.DeliveryDate,
		DeliveryWindow:   m.DeliveryWindow,
		Status:           m.Status.Name,
		PointsEarned:     m.PointsEarned,
		ReceiptRef:       m.ReceiptRef,
		Lines:            make([]LineDTO, 0, len(m.Lines)),
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
	for _, line := range m.Lines {
		dto.Lines = append(dto.Lines, LineDTO{
			ID:        line.ID,
			VariantID: line.VariantID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Subtotal:  line.Subtotal,
		})
	}
	return dto
}
