package receipts

import (
	"context"
	"fmt"

	"github.com/angelmondragon/storefront-backend/pkg/outbox/payloads"
)

// Renderer produces the stored receipt for a committed order and returns its reference.
type Renderer interface {
	Render(ctx context.Context, order payloads.OrderCreatedEvent) (string, error)
}

// PathRenderer derives a deterministic storage key; the document itself is produced out of band.
type PathRenderer struct{}

func (PathRenderer) Render(_ context.Context, order payloads.OrderCreatedEvent) (string, error) {
	if order.CreatedAt.IsZero() {
		return "", fmt.Errorf("order %s has no creation time", order.OrderID)
	}
	return fmt.Sprintf("receipts/%04d/%s.pdf", order.CreatedAt.UTC().Year(), order.OrderID), nil
}
