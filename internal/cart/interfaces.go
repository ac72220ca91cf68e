package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/pricing"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// CartRepository defines the persistence surface required by the cart service.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	EnsureCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	FindLine(ctx context.Context, cartID, variantID uuid.UUID) (*models.CartLine, error)
	CreateLine(ctx context.Context, line *models.CartLine) error
	UpdateLineQuantity(ctx context.Context, lineID uuid.UUID, quantity int) error
	DeleteLine(ctx context.Context, cartID, variantID uuid.UUID) (bool, error)
	DeleteLines(ctx context.Context, cartID uuid.UUID) error
	FindVariants(ctx context.Context, ids []uuid.UUID) ([]models.Variant, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type stockLocker interface {
	LockAndFetch(ctx context.Context, tx *gorm.DB, variantIDs []uuid.UUID) (map[uuid.UUID]models.Variant, error)
}

type priceResolver interface {
	Resolve(ctx context.Context, tx *gorm.DB, itemIDs []uuid.UUID) (map[uuid.UUID]pricing.Quote, error)
}
