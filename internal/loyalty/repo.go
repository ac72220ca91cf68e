package loyalty

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// Repository persists loyalty profiles, their history and the order's points column.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindProfileByUserID(ctx context.Context, userID uuid.UUID) (*models.LoyaltyProfile, error)
	IncrementPoints(ctx context.Context, profileID uuid.UUID, delta int) error
	AppendHistory(ctx context.Context, entry *models.LoyaltyHistoryEntry) error
	ListHistory(ctx context.Context, profileID uuid.UUID, limit int) ([]models.LoyaltyHistoryEntry, error)
	SetOrderPoints(ctx context.Context, orderID uuid.UUID, points int) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a loyalty repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindProfileByUserID(ctx context.Context, userID uuid.UUID) (*models.LoyaltyProfile, error) {
	var profile models.LoyaltyProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// IncrementPoints adds delta in SQL so concurrent accruals never lose an update.
func (r *repository) IncrementPoints(ctx context.Context, profileID uuid.UUID, delta int) error {
	res := r.db.WithContext(ctx).
		Model(&models.LoyaltyProfile{}).
		Where("id = ?", profileID).
		Update("points", gorm.Expr("points + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) AppendHistory(ctx context.Context, entry *models.LoyaltyHistoryEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListHistory(ctx context.Context, profileID uuid.UUID, limit int) ([]models.LoyaltyHistoryEntry, error) {
	var rows []models.LoyaltyHistoryEntry
	q := r.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("created_at DESC").
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SetOrderPoints writes points_earned once; false means the order already had a value.
func (r *repository) SetOrderPoints(ctx context.Context, orderID uuid.UUID, points int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND points_earned IS NULL", orderID).
		Update("points_earned", points)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
