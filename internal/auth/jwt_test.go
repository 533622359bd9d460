package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTokenValidation(t *testing.T) {
	t.Parallel()

	_, _, err := GenerateToken(Identity{}, "secret", time.Hour)
	assert.Error(t, err, "empty user id must be rejected")

	_, _, err = GenerateToken(Identity{UserID: "u1"}, "", time.Hour)
	assert.Error(t, err, "empty secret must be rejected")

	_, _, err = GenerateToken(Identity{UserID: "u1"}, "secret", 0)
	assert.Error(t, err, "non-positive expiry must be rejected")
}

func TestGenerateTokenRoundtrip(t *testing.T) {
	t.Parallel()

	id := Identity{UserID: "u1", CompanyID: "co1"}
	signed, expiresAt, err := GenerateToken(id, "secret", time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(signed, claims, func(t *jwt.Token) (any, error) {
		return []byte("secret"), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	assert.Equal(t, "u1", claims["sub"])
	assert.Equal(t, "u1", claims["user_id"])
	assert.Equal(t, "co1", claims["company_id"])
}

func TestGenerateTokenRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	signed, _, err := GenerateToken(Identity{UserID: "u1"}, "secret", time.Hour)
	require.NoError(t, err)

	_, err = jwt.Parse(signed, func(t *jwt.Token) (any, error) {
		return []byte("other"), nil
	})
	assert.Error(t, err)
}
