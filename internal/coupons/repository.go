package coupons

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// Repository persists coupons.
type Repository struct {
	repo.Base
}

// NewRepository binds the repository to the provided base connection.
func NewRepository(base repo.Base) *Repository {
	return &Repository{Base: base}
}

// WithTx scopes the repository to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{Base: r.Base.WithTx(tx)}
}

// FindByCode matches the code case-insensitively.
func (r *Repository) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.DB(ctx).
		Where("UPPER(code) = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&coupon).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

// DeactivateExpired switches off active coupons whose expiry is at or before now.
func (r *Repository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.DB(ctx).
		Model(&models.Coupon{}).
		Where("is_active = ? AND expires_at IS NOT NULL AND expires_at <= ?", true, now).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}
