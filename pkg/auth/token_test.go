package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

var shopJWT = config.JWTConfig{Secret: "secret", Issuer: "storefront", ExpirationMinutes: 30}

func mint(t *testing.T, cfg config.JWTConfig, issuedAt time.Time, payload AccessTokenPayload) string {
	t.Helper()
	token, err := MintAccessToken(cfg, issuedAt, payload)
	require.NoError(t, err)
	return token
}

func TestAccessTokenRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	userID := uuid.New()

	token := mint(t, shopJWT, now, AccessTokenPayload{
		UserID: userID,
		Email:  " Ana@Example.com ",
		Role:   enums.UserRoleAdmin,
		JTI:    "session-1",
	})
	claims, err := ParseAccessToken(shopJWT, token)
	require.NoError(t, err)

	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.True(t, claims.IsStaff())
	assert.Equal(t, "session-1", claims.ID)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, "storefront", claims.Issuer)
	assert.WithinDuration(t, now.Add(30*time.Minute), claims.ExpiresAt.Time, time.Second)
}

func TestMintAccessTokenDefaultsJTI(t *testing.T) {
	claims, err := ParseAccessToken(shopJWT, mint(t, shopJWT, time.Now(), AccessTokenPayload{UserID: uuid.New(), Role: enums.UserRoleCustomer}))
	require.NoError(t, err)

	_, parseErr := uuid.Parse(claims.ID)
	assert.NoError(t, parseErr, "jti %q", claims.ID)
	assert.False(t, claims.IsStaff())
	assert.False(t, (*AccessTokenClaims)(nil).IsStaff())
}

func TestMintAccessTokenRejects(t *testing.T) {
	valid := AccessTokenPayload{UserID: uuid.New(), Role: enums.UserRoleCustomer}
	tests := []struct {
		name    string
		cfg     config.JWTConfig
		payload AccessTokenPayload
	}{
		{"no secret", config.JWTConfig{Issuer: "storefront", ExpirationMinutes: 5}, valid},
		{"no issuer", config.JWTConfig{Secret: "secret", ExpirationMinutes: 5}, valid},
		{"no expiry", config.JWTConfig{Secret: "secret", Issuer: "storefront"}, valid},
		{"empty role", shopJWT, AccessTokenPayload{UserID: uuid.New()}},
		{"unknown role", shopJWT, AccessTokenPayload{UserID: uuid.New(), Role: "owner"}},
		{"missing user", shopJWT, AccessTokenPayload{Role: enums.UserRoleCustomer}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MintAccessToken(tt.cfg, time.Now(), tt.payload)
			assert.Error(t, err)
		})
	}
}

func TestParseAccessTokenRejects(t *testing.T) {
	payload := AccessTokenPayload{UserID: uuid.New(), Role: enums.UserRoleCustomer}
	fresh := mint(t, shopJWT, time.Now(), payload)
	expired := mint(t, shopJWT, time.Now().Add(-time.Hour), payload)
	foreign := mint(t, config.JWTConfig{Secret: "secret", Issuer: "other-shop", ExpirationMinutes: 5}, time.Now(), payload)

	_, err := ParseAccessToken(shopJWT, fresh+"x")
	assert.Error(t, err)

	_, err = ParseAccessToken(shopJWT, expired)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	_, err = ParseAccessToken(shopJWT, foreign)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)

	_, err = ParseAccessToken(config.JWTConfig{Issuer: "storefront"}, fresh)
	assert.ErrorIs(t, err, errNoSecret)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Issuer: "storefront"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ParseAccessToken(shopJWT, none)
	assert.Error(t, err)
}

func TestParseAccessTokenAllowExpired(t *testing.T) {
	payload := AccessTokenPayload{UserID: uuid.New(), Role: enums.UserRoleCustomer, JTI: "lapsed"}

	claims, err := ParseAccessTokenAllowExpired(shopJWT, mint(t, shopJWT, time.Now().Add(-time.Hour), payload))
	require.NoError(t, err)
	assert.Equal(t, "lapsed", claims.ID)

	foreign := mint(t, config.JWTConfig{Secret: "secret", Issuer: "other-shop", ExpirationMinutes: 5}, time.Now().Add(-time.Hour), payload)
	_, err = ParseAccessTokenAllowExpired(shopJWT, foreign)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)

	tampered := mint(t, shopJWT, time.Now(), payload) + "x"
	_, err = ParseAccessTokenAllowExpired(shopJWT, tampered)
	assert.Error(t, err)
}
