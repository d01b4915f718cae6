package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "correct horse battery", hash)

	assert.NoError(t, VerifyPassword(hash, "correct horse battery"))
	assert.Error(t, VerifyPassword(hash, "wrong password"))
}

func TestHashPasswordSalts(t *testing.T) {
	first, err := HashPassword("repeatable-input")
	require.NoError(t, err)
	second, err := HashPassword("repeatable-input")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestIsPasswordValid(t *testing.T) {
	assert.False(t, IsPasswordValid(""))
	assert.False(t, IsPasswordValid("seven77"))
	assert.True(t, IsPasswordValid("eight888"))
}
