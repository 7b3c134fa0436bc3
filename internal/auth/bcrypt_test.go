package auth_test

import (
	"testing"

	"github.com/goliatone/filmhub/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndComparePassword(t *testing.T) {
	hash, err := auth.HashPassword("correct horse battery")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "correct horse battery", hash)

	assert.NoError(t, auth.ComparePasswordAndHash("correct horse battery", hash))
	assert.ErrorIs(t, auth.ComparePasswordAndHash("wrong", hash), auth.ErrMismatchedHashAndPassword)
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	_, err := auth.HashPassword("")
	assert.ErrorIs(t, err, auth.ErrNoEmptyString)
}

func TestNewVerificationToken(t *testing.T) {
	a, err := auth.NewVerificationToken()
	require.NoError(t, err)
	assert.Len(t, a, 64)

	b, err := auth.NewVerificationToken()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
