package jwthelper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	key := []byte("0123456789abcdef")

	token, err := GenerateToken(key, 42, "ORG_OWNER", "test-agent", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(key, token)
	require.NoError(t, err)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
	assert.Equal(t, "ORG_OWNER", claims.Role)
	assert.Equal(t, "test-agent", claims.UserAgent)
	assert.NotEmpty(t, claims.ID)
}

func TestParseToken_Invalid(t *testing.T) {
	key := []byte("0123456789abcdef")

	expired, err := GenerateToken(key, 1, "STUDENT", "", -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(key, expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other, err := GenerateToken([]byte("another-signing-key"), 1, "STUDENT", "", time.Hour)
	require.NoError(t, err)
	_, err = ParseToken(key, other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseToken(key, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
