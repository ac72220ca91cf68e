package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/security"
)

// AdminRegisterRequest is the body of the non-production staff sign-up.
type AdminRegisterRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
}

func (r AdminRegisterRequest) normalized() AdminRegisterRequest {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	return r
}

func (r AdminRegisterRequest) missing() map[string]string {
	fields := map[string]string{}
	for name, value := range map[string]string{
		"email":      r.Email,
		"first_name": r.FirstName,
		"last_name":  r.LastName,
		"password":   r.Password,
	} {
		if value == "" {
			fields[name] = "is required"
		}
	}
	return fields
}

type AdminRegisterService interface {
	Register(ctx context.Context, req AdminRegisterRequest) (*users.UserDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type AdminRegisterServiceParams struct {
	Tx             txRunner
	Users          *users.Repository
	PasswordConfig config.PasswordConfig
}

type adminRegisterService struct {
	AdminRegisterServiceParams
}

func NewAdminRegisterService(params AdminRegisterServiceParams) (AdminRegisterService, error) {
	switch {
	case params.Tx == nil:
		return nil, fmt.Errorf("transaction runner required")
	case params.Users == nil:
		return nil, fmt.Errorf("users repository required")
	}
	return &adminRegisterService{params}, nil
}

// Register creates an admin account. The email check and the insert share
// one transaction.
func (s *adminRegisterService) Register(ctx context.Context, req AdminRegisterRequest) (*users.UserDTO, error) {
	req = req.normalized()
	if fields := req.missing(); len(fields) > 0 {
		return nil, validationError(fields)
	}

	hash, err := security.HashPassword(req.Password, s.PasswordConfig)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var out *users.UserDTO
	err = s.Tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.Users.WithTx(tx)
		_, lookupErr := repo.FindByEmail(ctx, req.Email)
		switch {
		case lookupErr == nil:
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		case !errors.Is(lookupErr, gorm.ErrRecordNotFound):
			return pkgerrors.Wrap(pkgerrors.CodeInternal, lookupErr, "check user email")
		}

		user, err := repo.Create(ctx, users.CreateUserDTO{
			Email:        req.Email,
			PasswordHash: hash,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Role:         enums.UserRoleAdmin,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}
		out = users.FromModel(user)
		return nil
	})
	return out, err
}

func validationError(fields map[string]string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid request").WithDetails(fields)
}
