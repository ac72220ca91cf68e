package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// Ledger reads and mutates variant stock. Every method runs on the caller's transaction.
type Ledger interface {
	// LockAndFetch locks every referenced variant in id order and returns them keyed by id.
	LockAndFetch(ctx context.Context, tx *gorm.DB, variantIDs []uuid.UUID) (map[uuid.UUID]models.Variant, error)
	Decrement(ctx context.Context, tx *gorm.DB, variantID uuid.UUID, qty int) error
}

type ledger struct{}

// NewLedger builds the stock ledger.
func NewLedger() Ledger {
	return ledger{}
}

func (ledger) LockAndFetch(ctx context.Context, tx *gorm.DB, variantIDs []uuid.UUID) (map[uuid.UUID]models.Variant, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction required")
	}
	ids := sortedUnique(variantIDs)
	if len(ids) == 0 {
		return map[uuid.UUID]models.Variant{}, nil
	}

	query := tx.WithContext(ctx).Where("id IN ?", ids).Order("id ASC")
	if supportsRowLocks(tx) {
		query = query.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
	}

	var rows []models.Variant
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[uuid.UUID]models.Variant, len(rows))
	for _, row := range rows {
		out[row.ID] = row
	}
	for _, id := range ids {
		if _, ok := out[id]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("variant %s not found", id)).
				WithDetails(map[string]any{"variant_id": id})
		}
	}
	return out, nil
}

// Decrement moves qty units from stock to sold. The guarded update keeps stock
// non-negative even when the caller skipped LockAndFetch.
func (ledger) Decrement(ctx context.Context, tx *gorm.DB, variantID uuid.UUID, qty int) error {
	if tx == nil {
		return fmt.Errorf("transaction required")
	}
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive").
			WithDetails(map[string]string{"quantity": "must be greater than zero"})
	}

	res := tx.WithContext(ctx).
		Model(&models.Variant{}).
		Where("id = ? AND stock >= ?", variantID, qty).
		Updates(map[string]any{
			"stock": gorm.Expr("stock - ?", qty),
			"sold":  gorm.Expr("sold + ?", qty),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var current models.Variant
	if err := tx.WithContext(ctx).Select("id", "stock").Where("id = ?", variantID).First(&current).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("variant %s not found", variantID))
		}
		return err
	}
	return pkgerrors.InsufficientStock(variantID, qty, current.Stock)
}

// CheckStock fails with an insufficient stock error when qty exceeds the variant's stock.
func CheckStock(variant models.Variant, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive").
			WithDetails(map[string]string{"quantity": "must be greater than zero"})
	}
	if qty > variant.Stock {
		return pkgerrors.InsufficientStock(variant.ID, qty, variant.Stock)
	}
	return nil
}

func supportsRowLocks(tx *gorm.DB) bool {
	return tx.Dialector != nil && tx.Dialector.Name() == "postgres"
}

func sortedUnique(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
