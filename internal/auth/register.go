package auth

import (
	"context"
	"fmt"

	"github.com/angelmondragon/storefront-backend/internal/users"
)

// RegisterRequest is the public sign-up payload.
type RegisterRequest = users.RegistrationInput

type registrar interface {
	Register(ctx context.Context, input users.RegistrationInput) (*users.Registration, error)
}

// RegisterService creates a customer account and signs it in.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*LoginResponse, error)
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	Users registrar
	Auth  Service
}

type registerService struct {
	users registrar
	auth  Service
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.Users == nil {
		return nil, fmt.Errorf("users service required")
	}
	if params.Auth == nil {
		return nil, fmt.Errorf("auth service required")
	}
	return &registerService{users: params.Users, auth: params.Auth}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*LoginResponse, error) {
	if req.Password == "" {
		fields := map[string]string{"password": "is required"}
		return nil, validationError(fields)
	}
	reg, err := s.users.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.auth.IssueTokens(ctx, reg.User)
}
