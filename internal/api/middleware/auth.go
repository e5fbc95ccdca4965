package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/xiaoying/sales-assistant/internal/core/domain"
	"github.com/xiaoying/sales-assistant/internal/core/ports"
)

// Context keys set by Auth.
const (
	ContextKeyUsername = "username"
	ContextKeyClaims   = "claims"
)

// Auth validates the bearer token and injects its claims into the context.
// Failures are returned as domain auth errors so the central error handler
// can report the exact reason.
func Auth(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return domain.ErrTokenMissing
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return domain.ErrTokenMissing
			}

			claims, err := verifier.Verify(c.Request().Context(), strings.TrimSpace(parts[1]))
			if err != nil {
				return err
			}

			c.Set(ContextKeyUsername, claims.Subject)
			c.Set(ContextKeyClaims, claims)

			return next(c)
		}
	}
}
