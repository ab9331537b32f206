package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/deppfellow/jobly/internal/auth"
	"github.com/deppfellow/jobly/internal/config"
	"github.com/deppfellow/jobly/internal/errs"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthMiddleware(t *testing.T, secret string) (*AuthMiddleware, *auth.TokenManager) {
	t.Helper()
	tokens, err := auth.NewTokenManager(config.AuthConfig{SecretKey: secret, TokenTTL: time.Hour})
	require.NoError(t, err)
	logger := zerolog.Nop()
	return newAuthMiddleware(tokens, &logger), tokens
}

// runAuthenticate passes a request with the given Authorization header
// through Authenticate and returns what the next handler saw.
func runAuthenticate(t *testing.T, m *AuthMiddleware, header string) (*auth.Claims, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	var seen *auth.Claims
	called := false
	err := m.Authenticate()(func(c echo.Context) error {
		called = true
		seen = GetUser(c)
		return nil
	})(c)
	require.NoError(t, err)
	return seen, called
}

func TestAuthenticate(t *testing.T) {
	m, tokens := newTestAuthMiddleware(t, "secret-dev")

	valid, err := tokens.Issue("test", false)
	require.NoError(t, err)

	_, other := newTestAuthMiddleware(t, "another-secret")
	foreign, err := other.Issue("test", true)
	require.NoError(t, err)

	t.Run("valid token stores claims", func(t *testing.T) {
		claims, called := runAuthenticate(t, m, "Bearer "+valid)
		assert.True(t, called)
		require.NotNil(t, claims)
		assert.Equal(t, "test", claims.Username)
		assert.False(t, claims.IsAdmin)
	})

	t.Run("scheme is case insensitive", func(t *testing.T) {
		claims, _ := runAuthenticate(t, m, "  bearer "+valid+"  ")
		require.NotNil(t, claims)
		assert.Equal(t, "test", claims.Username)
	})

	tests := []struct {
		name   string
		header string
	}{
		{name: "no header", header: ""},
		{name: "wrong scheme", header: "Basic " + valid},
		{name: "garbage token", header: "Bearer not-a-token"},
		{name: "foreign secret", header: "Bearer " + foreign},
	}
	for _, tt := range tests {
		t.Run(tt.name+" continues anonymously", func(t *testing.T) {
			claims, called := runAuthenticate(t, m, tt.header)
			assert.True(t, called)
			assert.Nil(t, claims)
		})
	}
}

func TestRequire(t *testing.T) {
	m, _ := newTestAuthMiddleware(t, "secret-dev")

	run := func(user *auth.Claims, username string, guards ...auth.Guard) (bool, error) {
		e := echo.New()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		c.SetParamNames("username")
		c.SetParamValues(username)
		if user != nil {
			c.Set(UserKey, user)
		}

		called := false
		err := m.Require(guards...)(func(echo.Context) error {
			called = true
			return nil
		})(c)
		return called, err
	}

	admin := &auth.Claims{Username: "boss", IsAdmin: true}
	owner := &auth.Claims{Username: "test"}

	tests := []struct {
		name    string
		user    *auth.Claims
		guard   auth.Guard
		allowed bool
	}{
		{name: "logged in passes", user: owner, guard: auth.RequireLoggedIn, allowed: true},
		{name: "anonymous is not logged in", user: nil, guard: auth.RequireLoggedIn},
		{name: "admin passes admin guard", user: admin, guard: auth.RequireAdmin, allowed: true},
		{name: "non-admin fails admin guard", user: owner, guard: auth.RequireAdmin},
		{name: "owner passes self guard", user: owner, guard: auth.RequireSelfOrAdmin, allowed: true},
		{name: "admin passes self guard", user: admin, guard: auth.RequireSelfOrAdmin, allowed: true},
		{name: "other user fails self guard", user: &auth.Claims{Username: "other"}, guard: auth.RequireSelfOrAdmin},
		{name: "anonymous fails self guard", user: nil, guard: auth.RequireSelfOrAdmin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called, err := run(tt.user, "test", tt.guard)
			assert.Equal(t, tt.allowed, called)
			if tt.allowed {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, http.StatusUnauthorized, errs.StatusOf(err))
		})
	}
}

func TestAuthenticateThenRequire(t *testing.T) {
	m, tokens := newTestAuthMiddleware(t, "secret-dev")
	token, err := tokens.Issue("test", false)
	require.NoError(t, err)

	e := echo.New()
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		_ = c.NoContent(errs.StatusOf(err))
	}
	e.Use(m.Authenticate())
	e.GET("/users/:username", func(c echo.Context) error {
		return c.String(http.StatusOK, GetUsername(c))
	}, m.Require(auth.RequireSelfOrAdmin))

	tests := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{name: "own account", path: "/users/test", header: "Bearer " + token, status: http.StatusOK},
		{name: "someone else", path: "/users/other", header: "Bearer " + token, status: http.StatusUnauthorized},
		{name: "anonymous", path: "/users/test", status: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestRequestID(t *testing.T) {
	e := echo.New()

	t.Run("reuses incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, RequestID()(func(c echo.Context) error { return nil })(c))
		assert.Equal(t, "abc", GetRequestID(c))
		assert.Equal(t, "abc", rec.Header().Get(RequestIDHeader))
	})

	t.Run("generates one", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

		require.NoError(t, RequestID()(func(c echo.Context) error { return nil })(c))
		assert.Len(t, GetRequestID(c), 36)
		assert.Equal(t, GetRequestID(c), rec.Header().Get(RequestIDHeader))
	})
}
