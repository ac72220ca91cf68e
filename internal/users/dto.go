package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID          uuid.UUID      `json:"id"`
	Email       string         `json:"email"`
	FirstName   string         `json:"first_name"`
	LastName    string         `json:"last_name"`
	Role        enums.UserRole `json:"role"`
	IsActive    bool           `json:"is_active"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// ProfileDTO exposes the customer profile attached to a user.
type ProfileDTO struct {
	ID             uuid.UUID  `json:"id"`
	FullName       string     `json:"full_name"`
	NationalID     string     `json:"national_id"`
	Phone          *string    `json:"phone,omitempty"`
	NeighborhoodID *uuid.UUID `json:"neighborhood_id,omitempty"`
	Address        *string    `json:"address,omitempty"`
	Points         int        `json:"points"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         enums.UserRole
	IsActive     *bool
}

// CreateProfileDTO holds the profile columns written at registration.
type CreateProfileDTO struct {
	UserID         uuid.UUID
	FullName       string
	NationalID     string
	Phone          *string
	NeighborhoodID *uuid.UUID
	Address        *string
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        u.Role,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func ProfileFromModel(p *models.LoyaltyProfile) *ProfileDTO {
	if p == nil {
		return nil
	}
	return &ProfileDTO{
		ID:             p.ID,
		FullName:       p.FullName,
		NationalID:     p.NationalID,
		Phone:          p.Phone,
		NeighborhoodID: p.NeighborhoodID,
		Address:        p.Address,
		Points:         p.Points,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	isActive := true
	if c.IsActive != nil {
		isActive = *c.IsActive
	}
	role := c.Role
	if role == "" {
		role = enums.UserRoleCustomer
	}

	return &models.User{
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		Role:         role,
		IsActive:     isActive,
	}
}

func (c CreateProfileDTO) ToModel() *models.LoyaltyProfile {
	return &models.LoyaltyProfile{
		UserID:         c.UserID,
		FullName:       c.FullName,
		NationalID:     c.NationalID,
		Phone:          c.Phone,
		NeighborhoodID: c.NeighborhoodID,
		Address:        c.Address,
	}
}
