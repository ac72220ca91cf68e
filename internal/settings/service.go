package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes store-wide settings.
type Service interface {
	// LoyaltyActive reads the flag; pass the order transaction so the read joins it.
	LoyaltyActive(ctx context.Context, tx *gorm.DB) (bool, error)
	GetLoyalty(ctx context.Context) (*LoyaltySettingsDTO, error)
	SetLoyaltyActive(ctx context.Context, active bool) (*LoyaltySettingsDTO, error)
	ActiveTheme(ctx context.Context) (*ThemeDTO, error)
	ActivateTheme(ctx context.Context, id uuid.UUID) (*ThemeDTO, error)
}

// ServiceParams groups the settings service dependencies.
type ServiceParams struct {
	Repo   Repository
	Tx     txRunner
	Logger *logger.Logger
}

type service struct {
	repo Repository
	tx   txRunner
	logg *logger.Logger
}

// NewService builds the settings service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: params.Repo, tx: params.Tx, logg: params.Logger}, nil
}

func (s *service) LoyaltyActive(ctx context.Context, tx *gorm.DB) (bool, error) {
	row, err := s.repo.WithTx(tx).GetSettings(ctx)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load store settings")
	}
	return row.LoyaltyActive, nil
}

func (s *service) GetLoyalty(ctx context.Context) (*LoyaltySettingsDTO, error) {
	row, err := s.repo.GetSettings(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load store settings")
	}
	return &LoyaltySettingsDTO{Active: row.LoyaltyActive, UpdatedAt: row.UpdatedAt}, nil
}

func (s *service) SetLoyaltyActive(ctx context.Context, active bool) (*LoyaltySettingsDTO, error) {
	if err := s.repo.SetLoyaltyActive(ctx, active); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update loyalty flag")
	}
	ctx = s.logg.WithField(ctx, "loyalty_active", active)
	s.logg.Info(ctx, "loyalty program toggled")
	return s.GetLoyalty(ctx)
}

func (s *service) ActiveTheme(ctx context.Context) (*ThemeDTO, error) {
	theme, err := s.repo.FindActiveTheme(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no active theme")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load active theme")
	}
	dto := themeFromModel(*theme)
	return &dto, nil
}

// ActivateTheme makes id the only active theme.
func (s *service) ActivateTheme(ctx context.Context, id uuid.UUID) (*ThemeDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "theme id is required")
	}

	var activated ThemeDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		theme, err := repo.FindTheme(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "theme not found")
			}
			return err
		}
		if err := repo.DeactivateThemesExcept(ctx, id); err != nil {
			return err
		}
		if err := repo.ActivateTheme(ctx, id); err != nil {
			return err
		}
		theme.IsActive = true
		activated = themeFromModel(*theme)
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "activate theme")
	}

	ctx = s.logg.WithField(ctx, "theme_id", id.String())
	s.logg.Info(ctx, "theme activated")
	return &activated, nil
}
