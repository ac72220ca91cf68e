package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/pricing"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

type itemQuoter interface {
	QuoteItems(ctx context.Context, items []models.CatalogItem) (map[uuid.UUID]pricing.Quote, error)
}

// Service exposes the public catalog.
type Service interface {
	ListItems(ctx context.Context, params pagination.Params, filters ListFilters) (*ItemList, error)
	GetItem(ctx context.Context, id uuid.UUID) (*ItemDTO, error)
}

type service struct {
	repo   *Repository
	quoter itemQuoter
}

// NewService builds the catalog service.
func NewService(repo *Repository, quoter itemQuoter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if quoter == nil {
		return nil, fmt.Errorf("item quoter required")
	}
	return &service{repo: repo, quoter: quoter}, nil
}

func (s *service) ListItems(ctx context.Context, params pagination.Params, filters ListFilters) (*ItemList, error) {
	rows, next, err := s.repo.ListItems(ctx, params, filters)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list catalog items")
	}
	items, err := s.present(ctx, rows)
	if err != nil {
		return nil, err
	}
	return &ItemList{Items: items, NextCursor: next}, nil
}

func (s *service) GetItem(ctx context.Context, id uuid.UUID) (*ItemDTO, error) {
	item, err := s.repo.FindItem(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "catalog item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load catalog item")
	}
	items, err := s.present(ctx, []models.CatalogItem{*item})
	if err != nil {
		return nil, err
	}
	return &items[0], nil
}

func (s *service) present(ctx context.Context, rows []models.CatalogItem) ([]ItemDTO, error) {
	out := make([]ItemDTO, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}
	quotes, err := s.quoter.QuoteItems(ctx, rows)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	variants, err := s.repo.VariantsFor(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load variants")
	}
	for _, row := range rows {
		out = append(out, newItemDTO(row, quotes[row.ID], variants[row.ID]))
	}
	return out, nil
}
