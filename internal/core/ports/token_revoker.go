package ports

import (
	"context"
	"time"
)

// TokenRevoker stores the ids of logged-out tokens until they would have
// expired anyway.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
