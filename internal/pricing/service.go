package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// Service resolves effective prices from current catalog state.
type Service interface {
	GetEffectivePrice(ctx context.Context, itemID uuid.UUID) (*Quote, error)
	// Resolve prices every item in one pass; tx may be nil outside a transaction.
	Resolve(ctx context.Context, tx *gorm.DB, itemIDs []uuid.UUID) (map[uuid.UUID]Quote, error)
	QuoteItems(ctx context.Context, items []models.CatalogItem) (map[uuid.UUID]Quote, error)
}

type service struct {
	repo Repository
}

// NewService builds a pricing service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("pricing repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetEffectivePrice(ctx context.Context, itemID uuid.UUID) (*Quote, error) {
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	item, err := s.repo.FindItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "catalog item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load catalog item")
	}
	quotes, err := s.quote(ctx, s.repo, []models.CatalogItem{*item})
	if err != nil {
		return nil, err
	}
	quote := quotes[item.ID]
	return &quote, nil
}

func (s *service) Resolve(ctx context.Context, tx *gorm.DB, itemIDs []uuid.UUID) (map[uuid.UUID]Quote, error) {
	repo := s.repo.WithTx(tx)
	items, err := repo.FindItems(ctx, uniqueIDs(itemIDs))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load catalog items")
	}
	quotes, err := s.quote(ctx, repo, items)
	if err != nil {
		return nil, err
	}
	for _, id := range itemIDs {
		if _, ok := quotes[id]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("catalog item %s not found", id))
		}
	}
	return quotes, nil
}

func (s *service) QuoteItems(ctx context.Context, items []models.CatalogItem) (map[uuid.UUID]Quote, error) {
	return s.quote(ctx, s.repo, items)
}

func (s *service) quote(ctx context.Context, repo Repository, items []models.CatalogItem) (map[uuid.UUID]Quote, error) {
	var categoryIDs []uuid.UUID
	for _, item := range items {
		if item.CategoryID != nil && (item.DiscountPercent == nil || !item.DiscountPercent.IsPositive()) {
			categoryIDs = append(categoryIDs, *item.CategoryID)
		}
	}
	discounts, err := repo.FirstCategoryDiscounts(ctx, uniqueIDs(categoryIDs))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load category discounts")
	}

	out := make(map[uuid.UUID]Quote, len(items))
	for _, item := range items {
		var categoryDiscount *decimal.Decimal
		if item.CategoryID != nil {
			if pct, ok := discounts[*item.CategoryID]; ok {
				categoryDiscount = &pct
			}
		}
		out[item.ID] = EffectivePrice(item, categoryDiscount)
	}
	return out, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
