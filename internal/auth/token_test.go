package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/deppfellow/jobly/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, secret string, ttl time.Duration) *TokenManager {
	t.Helper()

	m, err := NewTokenManager(config.AuthConfig{SecretKey: secret, TokenTTL: ttl})
	require.NoError(t, err)
	return m
}

func TestNewTokenManager_RequiresSecret(t *testing.T) {
	_, err := NewTokenManager(config.AuthConfig{})
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestTokenManager_IssueAndVerify(t *testing.T) {
	m := newTestManager(t, "secret-dev", time.Hour)

	token, err := m.Issue("u1", true)
	require.NoError(t, err)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Username)
	assert.True(t, claims.IsAdmin)
	require.NotNil(t, claims.IssuedAt)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, claims.IssuedAt.Add(time.Hour), claims.ExpiresAt.Time, time.Second)
}

func TestTokenManager_ZeroTTLHasNoExpiry(t *testing.T) {
	m := newTestManager(t, "secret-dev", 0)

	token, err := m.Issue("u2", false)
	require.NoError(t, err)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.False(t, claims.IsAdmin)
	assert.Nil(t, claims.ExpiresAt)
}

func TestTokenManager_VerifyRejects(t *testing.T) {
	m := newTestManager(t, "secret-dev", time.Hour)

	t.Run("wrong secret", func(t *testing.T) {
		other := newTestManager(t, "another-secret", time.Hour)
		token, err := other.Issue("u1", false)
		require.NoError(t, err)

		_, err = m.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		past := newTestManager(t, "secret-dev", time.Minute)
		past.now = func() time.Time { return time.Now().Add(-time.Hour) }
		token, err := past.Issue("u1", false)
		require.NoError(t, err)

		_, err = m.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
	})

	t.Run("other signing method", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS384, Claims{Username: "u1"}).
			SignedString([]byte("secret-dev"))
		require.NoError(t, err)

		_, err = m.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Verify("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
		wantOK bool
	}{
		{name: "standard", header: "Bearer abc.def.ghi", want: "abc.def.ghi", wantOK: true},
		{name: "lowercase scheme", header: "bearer abc", want: "abc", wantOK: true},
		{name: "uppercase scheme", header: "BEARER abc", want: "abc", wantOK: true},
		{name: "surrounding whitespace", header: "  Bearer   abc  ", want: "abc", wantOK: true},
		{name: "empty", header: "", wantOK: false},
		{name: "scheme only", header: "Bearer", wantOK: false},
		{name: "scheme and spaces", header: "Bearer    ", wantOK: false},
		{name: "basic scheme", header: "Basic dXNlcjpwYXNz", wantOK: false},
		{name: "bare token", header: "abc.def.ghi", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BearerToken(tt.header)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
