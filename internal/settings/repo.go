package settings

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// Repository persists the store settings singleton and themes.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetSettings(ctx context.Context) (*models.StoreSetting, error)
	SetLoyaltyActive(ctx context.Context, active bool) error
	FindActiveTheme(ctx context.Context) (*models.Theme, error)
	FindTheme(ctx context.Context, id uuid.UUID) (*models.Theme, error)
	DeactivateThemesExcept(ctx context.Context, id uuid.UUID) error
	ActivateTheme(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a settings repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// GetSettings reads the singleton row, creating it with defaults when absent.
func (r *repository) GetSettings(ctx context.Context) (*models.StoreSetting, error) {
	row := models.StoreSetting{ID: models.StoreSettingsID}
	if err := r.db.WithContext(ctx).
		Where(models.StoreSetting{ID: models.StoreSettingsID}).
		FirstOrCreate(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) SetLoyaltyActive(ctx context.Context, active bool) error {
	row := models.StoreSetting{ID: models.StoreSettingsID, LoyaltyActive: active}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"loyalty_active", "updated_at"}),
		}).
		Create(&row).Error
}

func (r *repository) FindActiveTheme(ctx context.Context) (*models.Theme, error) {
	var theme models.Theme
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).First(&theme).Error; err != nil {
		return nil, err
	}
	return &theme, nil
}

func (r *repository) FindTheme(ctx context.Context, id uuid.UUID) (*models.Theme, error) {
	var theme models.Theme
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&theme).Error; err != nil {
		return nil, err
	}
	return &theme, nil
}

func (r *repository) DeactivateThemesExcept(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Theme{}).
		Where("id <> ? AND is_active = ?", id, true).
		Update("is_active", false).Error
}

func (r *repository) ActivateTheme(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Theme{}).
		Where("id = ?", id).
		Update("is_active", true).Error
}
