package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type contextKey string

const (
	ctxUserID contextKey = "user_id"
	ctxRole   contextKey = "actor_role"
	ctxJTI    contextKey = "access_id"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

// AccessIDFromContext returns the token id of the current session.
func AccessIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxJTI).(string); ok {
		return v
	}
	return ""
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithRole injects the actor role into the context.
func WithRole(ctx context.Context, role string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxRole, role)
}

// CallerFromContext returns the authenticated user and role. ok is false for
// anonymous requests.
func CallerFromContext(ctx context.Context) (uuid.UUID, enums.UserRole, bool) {
	raw := UserIDFromContext(ctx)
	if raw == "" {
		return uuid.Nil, "", false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, "", false
	}
	return id, enums.UserRole(RoleFromContext(ctx)), true
}

// RequireCaller is CallerFromContext for routes behind Auth.
func RequireCaller(ctx context.Context) (uuid.UUID, enums.UserRole, error) {
	id, role, ok := CallerFromContext(ctx)
	if !ok {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return id, role, nil
}
