package ports

import (
	"context"

	"github.com/xiaoying/sales-assistant/internal/core/domain"
)

// TokenVerifier checks an access token and returns its claims.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*domain.Claims, error)
}

type AuthService interface {
	TokenVerifier
	Login(ctx context.Context, username, password string) (*domain.IssuedToken, error)
	Logout(ctx context.Context, claims *domain.Claims) error
}
