package security_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/security"
)

var cheap = config.PasswordConfig{ArgonMemoryKB: 1024, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := security.HashPassword("linen-shirt-42", cheap)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$"), hash)

	ok, err := security.VerifyPassword("linen-shirt-42", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = security.VerifyPassword("linen-shirt-43", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	_, err := security.HashPassword("", cheap)
	assert.Error(t, err)
}

func TestParamsFromConfigClamps(t *testing.T) {
	p := security.ParamsFromConfig(config.PasswordConfig{ArgonParallelism: 1000, ArgonKeyLen: 4})
	assert.Equal(t, uint8(255), p.Parallelism)
	assert.Equal(t, uint32(16), p.KeyLen)
	assert.Equal(t, uint32(8), p.Memory)
	assert.Equal(t, uint32(1), p.Time)
}

func TestVerifyPasswordMalformedHashes(t *testing.T) {
	for _, encoded := range []string{
		"not-a-hash",
		"$bcrypt$v=19$m=1024,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=16$m=1024,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=1024,t=1,p=1$!!$a2V5",
	} {
		_, err := security.VerifyPassword("irrelevant", encoded)
		assert.ErrorIs(t, err, security.ErrInvalidHash, encoded)
	}
}

func TestGenerateTempPassword(t *testing.T) {
	pw, err := security.GenerateTempPassword(14)
	require.NoError(t, err)
	assert.Len(t, pw, 14)
	assert.NotContains(t, pw, "0")
	assert.NotContains(t, pw, "O")

	_, err = security.GenerateTempPassword(0)
	assert.Error(t, err)
}
