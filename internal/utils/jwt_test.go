package utils

import (
	"testing"

	"saldo/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseTokens(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	access, refresh, err := GenerateTokens(&models.UserClaims{
		UserID:       42,
		Email:        "alice@example.com",
		Username:     "alice",
		Role:         models.RoleUser,
		TokenVersion: 3,
	})
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	assert.NotEqual(t, access, refresh, "refresh token carries its own expiry")

	claims, err := ParseToken(access)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, 3, claims.TokenVersion)
	assert.Equal(t, "saldo-api", claims.Issuer)
	assert.Equal(t, "42", claims.Subject)
}

func TestParseTokenRejectsTampering(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	access, _, err := GenerateTokens(&models.UserClaims{UserID: 1, Username: "alice"})
	require.NoError(t, err)

	_, err = ParseToken(access + "x")
	assert.Error(t, err)

	_, err = ParseToken("not-a-token")
	assert.Error(t, err)
}

func TestParseTokenRejectsForeignSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-a")
	access, _, err := GenerateTokens(&models.UserClaims{UserID: 1, Username: "alice"})
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "secret-b")
	_, err = ParseToken(access)
	assert.Error(t, err)
}

func TestGenerateTokensRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, _, err := GenerateTokens(&models.UserClaims{UserID: 1})
	assert.Error(t, err)
}

func TestGenerateSecureCode(t *testing.T) {
	first, err := GenerateSecureCode()
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := GenerateSecureCode()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
