package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/ravi5775/sri-vinayaka-tenders/internal/domain"
	"github.com/rs/zerolog/log"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

// UserKey is the context key for the authenticated admin user
const UserKey contextKey = "user"

// TokenVerifier checks a session token and resolves its admin user.
// Implemented by the auth service; kept as an interface here so the
// middleware does not depend on the service package.
type TokenVerifier interface {
	VerifyToken(token string) (*domain.User, error)
}

// AuthMiddleware validates session tokens on protected routes
type AuthMiddleware struct {
	verifier TokenVerifier
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// Authenticate returns an Echo middleware that validates session tokens.
// A token displaced by a newer login is rejected with the SESSION_REPLACED
// code so the client can tell a stale session apart from a bad token.
func (m *AuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return unauthorizedError(c, "missing authorization header", "UNAUTHORIZED")
			}

			// Check Bearer prefix
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				return unauthorizedError(c, "invalid authorization header format", "UNAUTHORIZED")
			}

			user, err := m.verifier.VerifyToken(parts[1])
			if err != nil {
				if errors.Is(err, domain.ErrSessionReplaced) {
					log.Debug().Msg("Rejected displaced session token")
					return unauthorizedError(c, "session replaced by a newer login", "SESSION_REPLACED")
				}
				log.Debug().Err(err).Msg("Token validation failed")
				return unauthorizedError(c, "invalid token", "UNAUTHORIZED")
			}

			ctx := context.WithValue(c.Request().Context(), UserKey, user)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// GetUser extracts the authenticated admin user from the context
func GetUser(c echo.Context) *domain.User {
	if user, ok := c.Request().Context().Value(UserKey).(*domain.User); ok {
		return user
	}
	return nil
}

// problemDetails represents an RFC 7807 Problem Details response
type problemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Code     string `json:"code,omitempty"`
	Instance string `json:"instance,omitempty"`
}

const errorTypeUnauthorized = "https://srivinayakatenders.app/errors/unauthorized"

func unauthorizedError(c echo.Context, detail, code string) error {
	return c.JSON(http.StatusUnauthorized, problemDetails{
		Type:     errorTypeUnauthorized,
		Title:    "Unauthorized",
		Status:   http.StatusUnauthorized,
		Detail:   detail,
		Code:     code,
		Instance: c.Request().URL.Path,
	})
}
