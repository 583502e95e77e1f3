package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", 60)

	token, err := m.GenerateAccessToken(42, "renter@test.com", []string{"admin"})
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "renter@test.com", claims.Email)
	assert.True(t, claims.HasRole("admin"))
	assert.False(t, claims.HasRole("owner"))
}

func TestTokenManager_ValidateToken(t *testing.T) {
	m := NewTokenManager("test-secret", 60)

	t.Run("Garbage", func(t *testing.T) {
		_, err := m.ValidateToken("not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		other := NewTokenManager("other-secret", 60)
		token, err := other.GenerateAccessToken(42, "renter@test.com", nil)
		require.NoError(t, err)

		_, err = m.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Expired", func(t *testing.T) {
		expired := &tokenManager{secret: []byte("test-secret"), expiry: -time.Minute}
		token, err := expired.GenerateAccessToken(42, "renter@test.com", nil)
		require.NoError(t, err)

		_, err = m.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})
}
