package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

// Repository reads the public catalog.
type Repository struct {
	repo.Base
}

// NewRepository binds the repository to the provided base connection.
func NewRepository(base repo.Base) *Repository {
	return &Repository{Base: base}
}

// ListItems returns active items newest first together with the next page cursor.
func (r *Repository) ListItems(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.CatalogItem, string, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	qb := r.DB(ctx).Model(&models.CatalogItem{}).Where("is_active = ?", true)
	if filters.CategoryID != nil {
		qb = qb.Where("category_id = ?", *filters.CategoryID)
	}
	if q := strings.TrimSpace(filters.Query); q != "" {
		qb = qb.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q)+"%")
	}
	if cursor != nil {
		clause, args := cursor.After("")
		qb = qb.Where(clause, args...)
	}

	var rows []models.CatalogItem
	if err := qb.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error; err != nil {
		return nil, "", err
	}

	rows, next := pagination.Page(rows, params.Limit, func(it models.CatalogItem) pagination.Cursor {
		return pagination.Cursor{CreatedAt: it.CreatedAt, ID: it.ID}
	})
	return rows, next, nil
}

func (r *Repository) FindItem(ctx context.Context, id uuid.UUID) (*models.CatalogItem, error) {
	var item models.CatalogItem
	if err := r.DB(ctx).Where("id = ? AND is_active = ?", id, true).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// VariantsFor groups the variants of the given items by item id.
func (r *Repository) VariantsFor(ctx context.Context, itemIDs []uuid.UUID) (map[uuid.UUID][]models.Variant, error) {
	out := make(map[uuid.UUID][]models.Variant, len(itemIDs))
	if len(itemIDs) == 0 {
		return out, nil
	}
	var rows []models.Variant
	if err := r.DB(ctx).
		Where("catalog_item_id IN ?", itemIDs).
		Order("attribute_name ASC").
		Order("attribute_value ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.CatalogItemID] = append(out[row.CatalogItemID], row)
	}
	return out, nil
}
