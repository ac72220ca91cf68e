package loyalty

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const defaultHistoryLimit = 50

type flagReader interface {
	LoyaltyActive(ctx context.Context, tx *gorm.DB) (bool, error)
}

// AccrualLine is the loyalty-relevant part of an order line.
type AccrualLine struct {
	PointsPerUnit int
	Quantity      int
}

// AccrualInput describes a freshly created order.
type AccrualInput struct {
	OrderID     uuid.UUID
	BuyerUserID *uuid.UUID
	Lines       []AccrualLine
}

// AccrualResult reports what Accrue persisted.
type AccrualResult struct {
	Points  int
	Applied bool
}

// HistoryEntryDTO is one line of a buyer's points history.
type HistoryEntryDTO struct {
	ID        uuid.UUID  `json:"id"`
	OrderID   *uuid.UUID `json:"order_id,omitempty"`
	Points    int        `json:"points"`
	Reason    string     `json:"reason"`
	CreatedAt time.Time  `json:"created_at"`
}

// SummaryDTO is the buyer-facing loyalty view.
type SummaryDTO struct {
	Points  int               `json:"points"`
	History []HistoryEntryDTO `json:"history"`
}

// Service credits points for orders and exposes the buyer's balance.
type Service interface {
	// Accrue must run inside the order transaction.
	Accrue(ctx context.Context, tx *gorm.DB, input AccrualInput) (AccrualResult, error)
	GetSummary(ctx context.Context, userID uuid.UUID) (*SummaryDTO, error)
}

// ServiceParams groups the loyalty service dependencies.
type ServiceParams struct {
	Repo     Repository
	Settings flagReader
	Logger   *logger.Logger
}

type service struct {
	repo     Repository
	settings flagReader
	logg     *logger.Logger
}

// NewService builds the loyalty service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("loyalty repository required")
	}
	if params.Settings == nil {
		return nil, fmt.Errorf("settings reader required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: params.Repo, settings: params.Settings, logg: params.Logger}, nil
}

// PointsFor sums points_per_unit × quantity over the lines.
func PointsFor(lines []AccrualLine) int {
	total := 0
	for _, line := range lines {
		if line.PointsPerUnit <= 0 || line.Quantity <= 0 {
			continue
		}
		total += line.PointsPerUnit * line.Quantity
	}
	return total
}

// HistoryReason is the history text recorded for an order's accrual.
func HistoryReason(orderID uuid.UUID) string {
	return fmt.Sprintf("Puntos obtenidos por compra (Venta #%s)", orderID)
}

func (s *service) Accrue(ctx context.Context, tx *gorm.DB, input AccrualInput) (AccrualResult, error) {
	if tx == nil {
		return AccrualResult{}, fmt.Errorf("transaction required")
	}
	if input.BuyerUserID == nil || *input.BuyerUserID == uuid.Nil {
		return AccrualResult{}, nil
	}

	active, err := s.settings.LoyaltyActive(ctx, tx)
	if err != nil {
		return AccrualResult{}, err
	}
	if !active {
		return AccrualResult{}, nil
	}

	points := PointsFor(input.Lines)
	if points <= 0 {
		return AccrualResult{}, nil
	}

	repo := s.repo.WithTx(tx)
	profile, err := repo.FindProfileByUserID(ctx, *input.BuyerUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx = s.logg.WithFields(ctx, map[string]any{
				"order_id": input.OrderID.String(),
				"user_id":  input.BuyerUserID.String(),
			})
			s.logg.Warn(ctx, "buyer has no loyalty profile; skipping accrual")
			return AccrualResult{}, nil
		}
		return AccrualResult{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load loyalty profile")
	}

	written, err := repo.SetOrderPoints(ctx, input.OrderID, points)
	if err != nil {
		return AccrualResult{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record order points")
	}
	if !written {
		return AccrualResult{}, pkgerrors.New(pkgerrors.CodeStateConflict, "order points already recorded")
	}
	if err := repo.IncrementPoints(ctx, profile.ID, points); err != nil {
		return AccrualResult{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "increment loyalty points")
	}

	orderID := input.OrderID
	entry := &models.LoyaltyHistoryEntry{
		ProfileID: profile.ID,
		OrderID:   &orderID,
		Points:    points,
		Reason:    HistoryReason(orderID),
	}
	if err := repo.AppendHistory(ctx, entry); err != nil {
		return AccrualResult{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append loyalty history")
	}

	return AccrualResult{Points: points, Applied: true}, nil
}

func (s *service) GetSummary(ctx context.Context, userID uuid.UUID) (*SummaryDTO, error) {
	profile, err := s.repo.FindProfileByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "loyalty profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load loyalty profile")
	}
	rows, err := s.repo.ListHistory(ctx, profile.ID, defaultHistoryLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load loyalty history")
	}

	out := &SummaryDTO{Points: profile.Points, History: make([]HistoryEntryDTO, 0, len(rows))}
	for _, row := range rows {
		out.History = append(out.History, HistoryEntryDTO{
			ID:        row.ID,
			OrderID:   row.OrderID,
			Points:    row.Points,
			Reason:    row.Reason,
			CreatedAt: row.CreatedAt,
		})
	}
	return out, nil
}
