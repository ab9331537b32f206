// Package auth issues and verifies bearer tokens and decides whether an
// authenticated identity may access a resource.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/deppfellow/jobly/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

// BearerScheme is the authorization scheme tokens are presented with.
const BearerScheme = "Bearer"

var (
	ErrMissingSecret = errors.New("auth: secret key is empty")
	ErrInvalidToken  = errors.New("auth: invalid token")
)

// Claims is the payload of a token issued by this service.
type Claims struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 tokens with one shared secret.
// It holds no mutable state and is safe for concurrent use.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a TokenManager from cfg. A zero TokenTTL issues
// tokens without an expiry.
func NewTokenManager(cfg config.AuthConfig) (*TokenManager, error) {
	if cfg.SecretKey == "" {
		return nil, ErrMissingSecret
	}

	return &TokenManager{
		secret: []byte(cfg.SecretKey),
		ttl:    cfg.TokenTTL,
		now:    time.Now,
	}, nil
}

// Issue signs a token for username.
func (m *TokenManager) Issue(username string, isAdmin bool) (string, error) {
	now := m.now()

	claims := Claims{
		Username: username,
		IsAdmin:  isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if m.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of token and returns its claims.
func (m *TokenManager) Verify(token string) (*Claims, error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) {
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// BearerToken extracts the credential from an Authorization header value.
// The scheme word is matched case-insensitively and surrounding whitespace
// is ignored. ok is false when the header holds no bearer credential.
func BearerToken(header string) (token string, ok bool) {
	scheme, rest, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, BearerScheme) {
		return "", false
	}

	token = strings.TrimSpace(rest)
	if token == "" {
		return "", false
	}
	return token, true
}
