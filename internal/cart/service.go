package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/inventory"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// Service exposes cart operations for registered users.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
	Add(ctx context.Context, userID uuid.UUID, input AddLineInput) (*CartDTO, error)
	Remove(ctx context.Context, userID, variantID uuid.UUID) (*CartDTO, error)
	Clear(ctx context.Context, userID uuid.UUID) error
	// CheckoutLines returns the cart lines on the caller's transaction.
	CheckoutLines(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]models.CartLine, error)
	// ClearTx empties the cart on the caller's transaction.
	ClearTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

// ServiceParams groups the cart service dependencies.
type ServiceParams struct {
	Repo    CartRepository
	Tx      txRunner
	Ledger  stockLocker
	Pricing priceResolver
	Logger  *logger.Logger
}

type service struct {
	repo    CartRepository
	tx      txRunner
	ledger  stockLocker
	pricing priceResolver
	logg    *logger.Logger
}

// NewService builds a cart service backed by the provided stack.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("stock ledger required")
	}
	if params.Pricing == nil {
		return nil, fmt.Errorf("price resolver required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:    params.Repo,
		tx:      params.Tx,
		ledger:  params.Ledger,
		pricing: params.Pricing,
		logg:    params.Logger,
	}, nil
}

// Add merges the quantity into the cart. The merged quantity must fit the variant stock.
func (s *service) Add(ctx context.Context, userID uuid.UUID, input AddLineInput) (*CartDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if err := validateLine(input); err != nil {
		return nil, err
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		variants, err := s.ledger.LockAndFetch(ctx, tx, []uuid.UUID{input.VariantID})
		if err != nil {
			return err
		}
		repo := s.repo.WithTx(tx)
		cart, err := repo.EnsureCart(ctx, userID)
		if err != nil {
			return err
		}

		existing, err := repo.FindLine(ctx, cart.ID, input.VariantID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		merged := input.Quantity
		if existing != nil {
			merged += existing.Quantity
		}
		if err := inventory.CheckStock(variants[input.VariantID], merged); err != nil {
			return err
		}

		if existing != nil {
			return repo.UpdateLineQuantity(ctx, existing.ID, merged)
		}
		return repo.CreateLine(ctx, &models.CartLine{CartID: cart.ID, VariantID: input.VariantID, Quantity: merged})
	})
	if err != nil {
		return nil, wrapInternal(err, "add cart line")
	}

	ctx = s.logg.WithUserID(ctx, userID.String())
	ctx = s.logg.WithFields(ctx, map[string]any{"variant_id": input.VariantID.String(), "quantity": input.Quantity})
	s.logg.Debug(ctx, "cart line added")
	return s.Get(ctx, userID)
}

func validateLine(input AddLineInput) error {
	fields := map[string]string{}
	if input.VariantID == uuid.Nil {
		fields["variant_id"] = "is required"
	}
	if input.Quantity <= 0 {
		fields["quantity"] = "must be greater than zero"
	}
	if len(fields) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid cart line").WithDetails(fields)
}

func (s *service) Remove(ctx context.Context, userID, variantID uuid.UUID) (*CartDTO, error) {
	cart, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	removed, err := s.repo.DeleteLine(ctx, cart.ID, variantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove cart line")
	}
	if !removed {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}
	return s.Get(ctx, userID)
}

// Get returns the cart priced at current effective prices. A user without a cart gets an empty one.
func (s *service) Get(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	out := &CartDTO{UserID: userID, Lines: []LineDTO{}, Total: decimal.Zero}
	cart, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return out, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	if len(cart.Lines) == 0 {
		return out, nil
	}

	variantIDs := make([]uuid.UUID, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		variantIDs = append(variantIDs, line.VariantID)
	}
	rows, err := s.repo.FindVariants(ctx, variantIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart variants")
	}
	variants := make(map[uuid.UUID]models.Variant, len(rows))
	itemIDs := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		variants[row.ID] = row
		itemIDs = append(itemIDs, row.CatalogItemID)
	}
	quotes, err := s.pricing.Resolve(ctx, nil, itemIDs)
	if err != nil {
		return nil, err
	}

	for _, line := range cart.Lines {
		variant, ok := variants[line.VariantID]
		if !ok {
			continue
		}
		unit := quotes[variant.CatalogItemID].Price
		subtotal := unit.Mul(decimal.NewFromInt(int64(line.Quantity)))
		out.Lines = append(out.Lines, LineDTO{
			VariantID:      line.VariantID,
			CatalogItemID:  variant.CatalogItemID,
			AttributeName:  variant.AttributeName,
			AttributeValue: variant.AttributeValue,
			Quantity:       line.Quantity,
			UnitPrice:      unit,
			Subtotal:       subtotal,
			Available:      variant.Stock,
		})
		out.Total = out.Total.Add(subtotal)
	}
	return out, nil
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	return wrapInternal(s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.ClearTx(ctx, tx, userID)
	}), "clear cart")
}

func (s *service) CheckoutLines(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]models.CartLine, error) {
	cart, err := s.repo.WithTx(tx).FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return cart.Lines, nil
}

func (s *service) ClearTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	repo := s.repo.WithTx(tx)
	cart, err := repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	return repo.DeleteLines(ctx, cart.ID)
}

func wrapInternal(err error, msg string) error {
	if err == nil || pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, msg)
}
