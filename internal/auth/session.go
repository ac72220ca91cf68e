package auth

import (
	"context"
	"errors"

	pkgAuth "github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/auth/session"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

func (s *service) Refresh(ctx context.Context, req RefreshRequest) (*TokenPair, error) {
	if req.RefreshToken == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refresh_token is required")
	}
	claims, err := s.sessionClaims(req.AccessToken)
	if err != nil {
		return nil, err
	}

	accessID, refresh, err := s.sessions.Rotate(ctx, claims.ID, req.RefreshToken)
	switch {
	case errors.Is(err, session.ErrInvalidRefreshToken):
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
	case err != nil:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
	}

	access, err := pkgAuth.MintAccessToken(s.jwt, s.now(), pkgAuth.AccessTokenPayload{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   claims.Role,
		JTI:    accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *service) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.sessionClaims(accessToken)
	if err != nil {
		return err
	}
	if err := s.sessions.Revoke(ctx, claims.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

// sessionClaims checks the signature and issuer but not expiry: refresh and
// logout are the calls clients make once the access token has lapsed.
func (s *service) sessionClaims(accessToken string) (*pkgAuth.AccessTokenClaims, error) {
	if accessToken == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwt, accessToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	if claims.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}
	return claims, nil
}
