package settings

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// LoyaltySettingsDTO is the public shape of the loyalty program flag.
type LoyaltySettingsDTO struct {
	Active    bool      `json:"active"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ThemeDTO describes a storefront theme.
type ThemeDTO struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	PrimaryColor   string    `json:"primary_color"`
	SecondaryColor string    `json:"secondary_color"`
	LogoPath       *string   `json:"logo_path,omitempty"`
	IsActive       bool      `json:"is_active"`
}

func themeFromModel(m models.Theme) ThemeDTO {
	return ThemeDTO{
		ID:             m.ID,
		Name:           m.Name,
		PrimaryColor:   m.PrimaryColor,
		SecondaryColor: m.SecondaryColor,
		LogoPath:       m.LogoPath,
		IsActive:       m.IsActive,
	}
}
