package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("student@123")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

	ok, err := VerifyPassword(hash, "student@123")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword(hash, "wrong-password")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	_, err := HashPassword("   ")
	assert.Error(t, err)
}

func TestHashPasswordSaltsDiffer(t *testing.T) {
	first, err := HashPassword("same-input")
	require.NoError(t, err)
	second, err := HashPassword("same-input")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	for _, hash := range []string{
		"",
		"plaintext",
		"$bcrypt$v=19$m=65536,t=2,p=2$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=2,p=2$not-base64!$aGFzaA",
	} {
		_, err := VerifyPassword(hash, "anything")
		assert.Error(t, err, "hash %q", hash)
	}
}

func TestRandomPassword(t *testing.T) {
	p, err := RandomPassword(10)
	require.NoError(t, err)
	assert.Len(t, p, 10)
	for _, r := range p {
		assert.Contains(t, passwordAlphabet, string(r))
	}

	// Non-positive lengths fall back to the default.
	p, err = RandomPassword(0)
	require.NoError(t, err)
	assert.Len(t, p, 10)
}
