package middleware

import (
	"github.com/deppfellow/jobly/internal/auth"
	"github.com/deppfellow/jobly/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// UserKey is the Echo context key the authenticated *auth.Claims live under.
const UserKey = "user"

// TokenVerifier checks a raw bearer token; *auth.TokenManager implements it.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	tokens TokenVerifier
	logger *zerolog.Logger
}

func NewAuthMiddleware(s *server.Server) *AuthMiddleware {
	return newAuthMiddleware(s.Tokens, s.Logger)
}

func newAuthMiddleware(tokens TokenVerifier, logger *zerolog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		tokens: tokens,
		logger: logger,
	}
}

// Authenticate stores the claims of a valid bearer token under UserKey.
// Requests without a usable token pass through untouched; rejecting them
// is left to Require.
func (a *AuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return next(c)
			}

			token, ok := auth.BearerToken(header)
			if !ok {
				a.logger.Debug().
					Str("request_id", GetRequestID(c)).
					Msg("authorization header is not a bearer token")
				return next(c)
			}

			claims, err := a.tokens.Verify(token)
			if err != nil {
				a.logger.Debug().
					Err(err).
					Str("request_id", GetRequestID(c)).
					Msg("ignoring invalid bearer token")
				return next(c)
			}

			c.Set(UserKey, claims)
			return next(c)
		}
	}
}

// Require runs guards against the current user and the :username route
// parameter. The first rejection is returned to the error handler.
func (a *AuthMiddleware) Require(guards ...auth.Guard) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			subject := auth.Subject{
				User:     GetUser(c),
				Username: c.Param("username"),
			}
			if err := auth.Check(subject, guards...); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// GetUser returns the authenticated claims, or nil for anonymous requests.
func GetUser(c echo.Context) *auth.Claims {
	if claims, ok := c.Get(UserKey).(*auth.Claims); ok {
		return claims
	}
	return nil
}

// GetUsername returns the authenticated username, or "".
func GetUsername(c echo.Context) string {
	if claims := GetUser(c); claims != nil {
		return claims.Username
	}
	return ""
}
