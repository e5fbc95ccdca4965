package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/xiaoying/sales-assistant/internal/api/middleware"
	"github.com/xiaoying/sales-assistant/internal/core/domain"
)

// ctxClaims extracts the claims injected by the Auth middleware. Their
// absence means the route was mounted without the middleware.
func ctxClaims(c echo.Context) (*domain.Claims, error) {
	claims, _ := c.Get(middleware.ContextKeyClaims).(*domain.Claims)
	if claims == nil {
		return nil, domain.ErrTokenMissing
	}
	return claims, nil
}
