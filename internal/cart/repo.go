package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// Repository exposes persistence operations for carts and their lines.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByUserID loads the user's cart with lines in insertion order.
func (r *Repository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC").Order("id ASC") }).
		Where("user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// EnsureCart returns the user's cart, creating it on first use.
func (r *Repository) EnsureCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := r.FindByUserID(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created := &models.Cart{UserID: userID}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Omit("Lines").
		Create(created).Error; err != nil {
		return nil, err
	}
	return r.FindByUserID(ctx, userID)
}

func (r *Repository) FindLine(ctx context.Context, cartID, variantID uuid.UUID) (*models.CartLine, error) {
	var line models.CartLine
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND variant_id = ?", cartID, variantID).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *Repository) CreateLine(ctx context.Context, line *models.CartLine) error {
	return r.db.WithContext(ctx).Create(line).Error
}

func (r *Repository) UpdateLineQuantity(ctx context.Context, lineID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartLine{}).
		Where("id = ?", lineID).
		Update("quantity", quantity).Error
}

// DeleteLine removes the variant from the cart and reports whether a row existed.
func (r *Repository) DeleteLine(ctx context.Context, cartID, variantID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("cart_id = ? AND variant_id = ?", cartID, variantID).
		Delete(&models.CartLine{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) DeleteLines(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&models.CartLine{}).Error
}

func (r *Repository) FindVariants(ctx context.Context, ids []uuid.UUID) ([]models.Variant, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Variant
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
