package ports

import (
	"context"
	"time"
)

// RevocationStore records sessions that must no longer be accepted even
// though their signature and expiry are still valid.
type RevocationStore interface {
	// RevokeToken rejects a single token id for ttl.
	RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error
	// RevokePrincipal rejects every token of userID issued before at.
	RevokePrincipal(ctx context.Context, userID string, at time.Time, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID, userID string, issuedAt time.Time) (bool, error)
}
