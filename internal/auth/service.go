package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/users"
	pkgAuth "github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/auth/session"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/security"
)

// Service signs users in and manages the session that follows.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	// AdminLogin only admits staff accounts.
	AdminLogin(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	// IssueTokens mints a session for an already authenticated user.
	IssueTokens(ctx context.Context, user *models.User) (*LoginResponse, error)
	// Refresh trades a refresh token for a new pair. The access token may
	// already be expired.
	Refresh(ctx context.Context, req RefreshRequest) (*TokenPair, error)
	Logout(ctx context.Context, accessToken string) error
}

type userRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindProfileByUserID(ctx context.Context, userID uuid.UUID) (*models.LoyaltyProfile, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, accessID, refreshToken string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

type ServiceParams struct {
	UserRepo       userRepository
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
}

type service struct {
	users    userRepository
	sessions sessionManager
	jwt      config.JWTConfig
	now      func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.UserRepo == nil:
		return nil, fmt.Errorf("user repository is required")
	case params.SessionManager == nil:
		return nil, fmt.Errorf("session manager is required")
	}
	return &service{
		users:    params.UserRepo,
		sessions: params.SessionManager,
		jwt:      params.JWTConfig,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func errInvalidCredentials() error {
	return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.authenticate(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.IssueTokens(ctx, user)
}

func (s *service) AdminLogin(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.authenticate(ctx, req)
	if err != nil {
		return nil, err
	}
	// same answer as a bad password so staff accounts cannot be probed
	if !user.Role.IsStaff() {
		return nil, errInvalidCredentials()
	}
	return s.IssueTokens(ctx, user)
}

func (s *service) IssueTokens(ctx context.Context, user *models.User) (*LoginResponse, error) {
	if user == nil {
		return nil, errInvalidCredentials()
	}
	role := user.Role
	if role == "" {
		role = enums.UserRoleCustomer
	}
	if !role.IsValid() {
		return nil, errInvalidCredentials()
	}

	now := s.now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record login")
	}
	user.LastLoginAt = &now

	pair, err := s.openSession(ctx, now, pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   role,
	})
	if err != nil {
		return nil, err
	}

	resp := &LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         users.FromModel(user),
	}
	profile, err := s.users.FindProfileByUserID(ctx, user.ID)
	switch {
	case err == nil:
		resp.Profile = users.ProfileFromModel(profile)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load profile")
	}
	return resp, nil
}

// openSession binds a fresh refresh token to a new access id and signs the
// access token carrying it.
func (s *service) openSession(ctx context.Context, now time.Time, payload pkgAuth.AccessTokenPayload) (*TokenPair, error) {
	payload.JTI = session.NewAccessID()
	access, err := pkgAuth.MintAccessToken(s.jwt, now, payload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	refresh, err := s.sessions.Generate(ctx, payload.JTI)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store session")
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *service) authenticate(ctx context.Context, req LoginRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, errInvalidCredentials()
	}

	user, err := s.users.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		// burn the same argon2 work as a real check
		_, _ = security.VerifyPassword(req.Password, decoyHash())
		return nil, errInvalidCredentials()
	case err != nil:
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	ok, err := security.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok || !user.IsActive {
		return nil, errInvalidCredentials()
	}
	return user, nil
}

var decoyHash = sync.OnceValue(func() string {
	hash, _ := security.HashPassword("decoy-password", config.PasswordConfig{})
	return hash
})
