package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// minRevocationTTL keeps a revocation alive briefly even for tokens that are
// already at or past expiry, so a clock skew between nodes cannot reopen them.
const minRevocationTTL = time.Second

// TokenRevoker stores revoked token ids in Redis.
// Key format: <prefix><jti>, "revoked:<jti>" by default.
type TokenRevoker struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

func newTokenRevoker(client *redis.Client, prefix string) *TokenRevoker {
	return &TokenRevoker{client: client, prefix: prefix, now: time.Now}
}

// Revoke records tokenID as revoked. The key expires at until.
func (r *TokenRevoker) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := until.Sub(r.now())
	if ttl < minRevocationTTL {
		ttl = minRevocationTTL
	}
	if err := r.client.Set(ctx, r.key(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenID has been revoked.
func (r *TokenRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("revocation check: %w", err)
	}
	return n > 0, nil
}

// Ping is used by the readiness probe.
func (r *TokenRevoker) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (r *TokenRevoker) Close() error {
	return r.client.Close()
}

func (r *TokenRevoker) key(tokenID string) string {
	return r.prefix + tokenID
}
