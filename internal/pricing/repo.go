package pricing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// Repository reads the catalog rows pricing depends on.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindItem(ctx context.Context, id uuid.UUID) (*models.CatalogItem, error)
	FindItems(ctx context.Context, ids []uuid.UUID) ([]models.CatalogItem, error)
	FirstCategoryDiscounts(ctx context.Context, categoryIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a pricing repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindItem(ctx context.Context, id uuid.UUID) (*models.CatalogItem, error) {
	var item models.CatalogItem
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindItems(ctx context.Context, ids []uuid.UUID) ([]models.CatalogItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []models.CatalogItem
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FirstCategoryDiscounts returns the earliest discount row per category (created_at, then id).
func (r *repository) FirstCategoryDiscounts(ctx context.Context, categoryIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	out := make(map[uuid.UUID]decimal.Decimal, len(categoryIDs))
	if len(categoryIDs) == 0 {
		return out, nil
	}
	var rows []models.CategoryDiscount
	if err := r.db.WithContext(ctx).
		Where("category_id IN ?", categoryIDs).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		if _, seen := out[row.CategoryID]; seen {
			continue
		}
		out[row.CategoryID] = row.Percent
	}
	return out, nil
}
