package errors

import (
	"fmt"

	"github.com/google/uuid"
)

// StockShortfall describes why a variant could not satisfy a requested quantity.
type StockShortfall struct {
	VariantID uuid.UUID `json:"variant_id"`
	Requested int       `json:"requested"`
	Available int       `json:"available"`
	Shortfall int       `json:"shortfall"`
}

// InsufficientStock builds the error returned when requested > available.
func InsufficientStock(variantID uuid.UUID, requested, available int) *Error {
	shortfall := requested - available
	if shortfall < 0 {
		shortfall = 0
	}
	return New(CodeInsufficientStock, fmt.Sprintf("insufficient stock for variant %s: requested %d, available %d", variantID, requested, available)).
		WithDetails(StockShortfall{
			VariantID: variantID,
			Requested: requested,
			Available: available,
			Shortfall: shortfall,
		})
}

// Shortfall extracts the stock details from an insufficient stock error.
func Shortfall(err error) (StockShortfall, bool) {
	typed := As(err)
	if typed == nil || typed.Code() != CodeInsufficientStock {
		return StockShortfall{}, false
	}
	details, ok := typed.Details().(StockShortfall)
	return details, ok
}

func BuyerRequired() *Error {
	return New(CodeBuyerRequired, "a registered buyer, guest name or new user is required")
}

func EmptyOrder() *Error {
	return New(CodeEmptyOrder, "order must contain at least one line")
}

// Concurrency wraps a storage lock or serialization failure. pgCode may be empty.
func Concurrency(err error, pgCode string) *Error {
	wrapped := Wrap(CodeConcurrency, err, "order could not acquire inventory locks")
	if pgCode != "" {
		wrapped = wrapped.WithDetails(map[string]any{"pg_code": pgCode})
	}
	return wrapped
}

// IsCode reports whether err carries the given code anywhere in its chain.
func IsCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.Code() == code
}
