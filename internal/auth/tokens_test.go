package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenManager(accessTTL time.Duration) *TokenManager {
	return NewTokenManager("0123456789abcdef0123456789abcdef", "ppp-api", accessTTL, 24*time.Hour)
}

func TestIssueAndParseAccessToken(t *testing.T) {
	m := newTestTokenManager(time.Minute)

	token, expiresAt, err := m.IssueAccessToken("account-1", RoleStaff, "session-1")
	require.NoError(t, err)
	assert.Equal(t, 3, len(strings.Split(token, ".")))
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := m.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "account-1", claims.Sub)
	assert.Equal(t, RoleStaff, claims.Role)
	assert.Equal(t, "session-1", claims.SessionID)
	assert.Equal(t, "ppp-api", claims.Iss)
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	m := newTestTokenManager(-time.Minute)

	token, _, err := m.IssueAccessToken("account-1", RoleStudent, "session-1")
	require.NoError(t, err)

	_, err = m.ParseAccessToken(token)
	assert.EqualError(t, err, "token is expired")
}

func TestParseAccessTokenRejectsTamperedSignature(t *testing.T) {
	m := newTestTokenManager(time.Minute)

	token, _, err := m.IssueAccessToken("account-1", RoleStaff, "session-1")
	require.NoError(t, err)

	other := NewTokenManager("another-secret-another-secret-xx", "ppp-api", time.Minute, time.Hour)
	_, err = other.ParseAccessToken(token)
	assert.EqualError(t, err, "invalid token signature")
}

func TestParseAccessTokenRejectsWrongIssuer(t *testing.T) {
	m := NewTokenManager("0123456789abcdef0123456789abcdef", "other-issuer", time.Minute, time.Hour)
	token, _, err := m.IssueAccessToken("account-1", RoleStaff, "session-1")
	require.NoError(t, err)

	_, err = newTestTokenManager(time.Minute).ParseAccessToken(token)
	assert.Error(t, err)
}

func TestParseAccessTokenRejectsGarbage(t *testing.T) {
	m := newTestTokenManager(time.Minute)
	for _, token := range []string{"", "not-a-token", "a.b", "a.b.c.d"} {
		_, err := m.ParseAccessToken(token)
		assert.Error(t, err, "token %q", token)
	}
}

func TestIssueRefreshToken(t *testing.T) {
	m := newTestTokenManager(time.Minute)

	token, hash, expiresAt, err := m.IssueRefreshToken()
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, m.HashRefreshToken(token), hash)
	assert.Len(t, hash, 64)
	assert.True(t, expiresAt.After(time.Now().Add(23*time.Hour)))

	_, hash2, _, err := m.IssueRefreshToken()
	require.NoError(t, err)
	assert.NotEqual(t, hash, hash2)
}
