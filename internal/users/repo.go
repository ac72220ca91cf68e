package users

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// Repository persists users and their loyalty profiles.
type Repository struct {
	repo.Base
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Base.WithTx(tx)}
}

func first[T any](q *gorm.DB, query string, args ...any) (*T, error) {
	var out T
	if err := q.Where(query, args...).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.DB(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByEmail expects email already normalized to lower case.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return first[models.User](r.DB(ctx), "email = ?", email)
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return first[models.User](r.DB(ctx), "id = ?", id)
}

func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.DB(ctx).Model(&models.User{}).Where("id = ?", id).UpdateColumn("last_login_at", at).Error
}

func (r *Repository) CreateProfile(ctx context.Context, dto CreateProfileDTO) (*models.LoyaltyProfile, error) {
	profile := dto.ToModel()
	if err := r.DB(ctx).Create(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *Repository) FindProfileByUserID(ctx context.Context, userID uuid.UUID) (*models.LoyaltyProfile, error) {
	return first[models.LoyaltyProfile](r.DB(ctx), "user_id = ?", userID)
}

// NationalIDExists reports whether any profile already carries nationalID.
func (r *Repository) NationalIDExists(ctx context.Context, nationalID string) (bool, error) {
	var n int64
	err := r.DB(ctx).Model(&models.LoyaltyProfile{}).Where("national_id = ?", nationalID).Limit(1).Count(&n).Error
	return n > 0, err
}
