package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/security"
)

const tempPasswordLength = 16

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ProfileInput carries the customer profile captured with a registration.
type ProfileInput struct {
	FullName       string     `json:"full_name"`
	NationalID     string     `json:"national_id" validate:"required,max=32"`
	Phone          *string    `json:"phone,omitempty" validate:"omitempty,max=32"`
	NeighborhoodID *uuid.UUID `json:"neighborhood_id,omitempty"`
	Address        *string    `json:"address,omitempty" validate:"omitempty,max=255"`
}

// RegistrationInput describes a new customer account. An empty password is
// replaced by a random one, which is how staff create accounts at checkout.
type RegistrationInput struct {
	Email     string       `json:"email" validate:"required,email"`
	Password  string       `json:"password" validate:"omitempty,min=8"`
	FirstName string       `json:"first_name" validate:"required"`
	LastName  string       `json:"last_name" validate:"required"`
	Profile   ProfileInput `json:"profile" validate:"required"`
}

// Registration is the pair of rows created for a new customer.
type Registration struct {
	User    *models.User
	Profile *models.LoyaltyProfile
}

// Service registers customers and reads their profiles.
type Service interface {
	Register(ctx context.Context, input RegistrationInput) (*Registration, error)
	// RegisterTx creates the user and profile on the caller's transaction.
	RegisterTx(ctx context.Context, tx *gorm.DB, input RegistrationInput) (*Registration, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error)
}

// ServiceParams groups the users service dependencies.
type ServiceParams struct {
	Repo           *Repository
	Tx             txRunner
	PasswordConfig config.PasswordConfig
	Logger         *logger.Logger
}

type service struct {
	repo        *Repository
	tx          txRunner
	passwordCfg config.PasswordConfig
	logg        *logger.Logger
}

// NewService builds the users service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:        params.Repo,
		tx:          params.Tx,
		passwordCfg: params.PasswordConfig,
		logg:        params.Logger,
	}, nil
}

func (s *service) Register(ctx context.Context, input RegistrationInput) (*Registration, error) {
	var out *Registration
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		out, err = s.RegisterTx(ctx, tx, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	ctx = s.logg.WithUserID(ctx, out.User.ID.String())
	s.logg.Info(ctx, "customer registered")
	return out, nil
}

func (s *service) RegisterTx(ctx context.Context, tx *gorm.DB, input RegistrationInput) (*Registration, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction required")
	}
	input = normalize(input)
	if err := validateRegistration(input); err != nil {
		return nil, err
	}

	password := input.Password
	if password == "" {
		generated, err := security.GenerateTempPassword(tempPasswordLength)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate password")
		}
		password = generated
	}
	hash, err := security.HashPassword(password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	repo := s.repo.WithTx(tx)
	if _, err := repo.FindByEmail(ctx, input.Email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
	}
	taken, err := repo.NationalIDExists(ctx, input.Profile.NationalID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check national id")
	}
	if taken {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "national id already registered")
	}

	user, err := repo.Create(ctx, CreateUserDTO{
		Email:        input.Email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
	})
	if err != nil {
		return nil, classifyCreateError(err, "create user")
	}

	profile, err := repo.CreateProfile(ctx, CreateProfileDTO{
		UserID:         user.ID,
		FullName:       input.Profile.FullName,
		NationalID:     input.Profile.NationalID,
		Phone:          input.Profile.Phone,
		NeighborhoodID: input.Profile.NeighborhoodID,
		Address:        input.Profile.Address,
	})
	if err != nil {
		return nil, classifyCreateError(err, "create profile")
	}

	return &Registration{User: user, Profile: profile}, nil
}

func (s *service) GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error) {
	profile, err := s.repo.FindProfileByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load profile")
	}
	return ProfileFromModel(profile), nil
}

func normalize(input RegistrationInput) RegistrationInput {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Profile.NationalID = strings.TrimSpace(input.Profile.NationalID)
	input.Profile.FullName = strings.TrimSpace(input.Profile.FullName)
	if input.Profile.FullName == "" {
		input.Profile.FullName = strings.TrimSpace(input.FirstName + " " + input.LastName)
	}
	return input
}

func validateRegistration(input RegistrationInput) error {
	fields := map[string]string{}
	if input.Email == "" {
		fields["email"] = "is required"
	}
	if input.FirstName == "" {
		fields["first_name"] = "is required"
	}
	if input.LastName == "" {
		fields["last_name"] = "is required"
	}
	if input.Profile.NationalID == "" {
		fields["profile.national_id"] = "is required"
	}
	if len(fields) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid registration").WithDetails(fields)
}

func classifyCreateError(err error, action string) error {
	if db.IsUniqueViolation(err, "") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "user or profile already exists")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, action)
}
