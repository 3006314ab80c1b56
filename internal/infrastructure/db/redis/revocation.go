package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cardioassist/cardio-api/internal/core/domain"
)

// RevocationStore keeps session revocations in Redis.
// Key formats:
//
//	session:revoked:<token_id>          single signed-out token
//	session:revoked-before:<user_id>    unix seconds; tokens issued up to and
//	                                    including that second are rejected
//
// Both expire once no token they could match is still valid.
type RevocationStore struct {
	client *redis.Client
}

func NewRevocationStore(client *redis.Client) *RevocationStore {
	return &RevocationStore{client: client}
}

func (s *RevocationStore) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, tokenKey(tokenID), "1", ttl).Err(); err != nil {
		return domain.NewPersistenceError("revoke token", err)
	}
	return nil
}

func (s *RevocationStore) RevokePrincipal(ctx context.Context, userID string, at time.Time, ttl time.Duration) error {
	if err := s.client.Set(ctx, principalKey(userID), strconv.FormatInt(at.Unix(), 10), ttl).Err(); err != nil {
		return domain.NewPersistenceError("revoke principal", err)
	}
	return nil
}

// IsRevoked checks both keys in one round trip.
func (s *RevocationStore) IsRevoked(ctx context.Context, tokenID, userID string, issuedAt time.Time) (bool, error) {
	vals, err := s.client.MGet(ctx, tokenKey(tokenID), principalKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("revocation check: %w", err)
	}
	if len(vals) > 0 && vals[0] != nil {
		return true, nil
	}
	if len(vals) > 1 && vals[1] != nil {
		raw, _ := vals[1].(string)
		before, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return false, fmt.Errorf("revocation check: malformed watermark %q", raw)
		}
		return issuedAt.Unix() <= before, nil
	}
	return false, nil
}

func tokenKey(tokenID string) string {
	return "session:revoked:" + tokenID
}

func principalKey(userID string) string {
	return "session:revoked-before:" + userID
}
