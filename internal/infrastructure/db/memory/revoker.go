// Package memory holds process-local implementations of core ports, used
// when no external store is configured.
package memory

import (
	"context"
	"sync"
	"time"
)

// pruneEvery bounds how many Revoke calls may pass between sweeps of
// expired entries.
const pruneEvery = 64

// TokenRevoker keeps revoked token ids in a map until their expiry.
// Revocations do not survive a restart.
type TokenRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	writes  int
	now     func() time.Time
}

func NewTokenRevoker() *TokenRevoker {
	return &TokenRevoker{revoked: make(map[string]time.Time), now: time.Now}
}

func (r *TokenRevoker) Revoke(_ context.Context, tokenID string, until time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.revoked[tokenID] = until
	r.writes++
	if r.writes%pruneEvery == 0 {
		r.pruneLocked()
	}
	return nil
}

func (r *TokenRevoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	until, ok := r.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if !r.now().Before(until) {
		delete(r.revoked, tokenID)
		return false, nil
	}
	return true, nil
}

// Len returns the number of tracked revocations, expired or not.
func (r *TokenRevoker) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.revoked)
}

func (r *TokenRevoker) pruneLocked() {
	now := r.now()
	for id, until := range r.revoked {
		if !now.Before(until) {
			delete(r.revoked, id)
		}
	}
}
