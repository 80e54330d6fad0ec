package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "auth:revoked:"

// RevocationList remembers revoked credential ids until the credential
// would have expired anyway.
type RevocationList struct {
	client *redis.Client
	now    func() time.Time
}

func NewRevocationList(client *redis.Client) *RevocationList {
	return &RevocationList{
		client: client,
		now:    time.Now,
	}
}

// Revoke marks the credential described by claims as revoked.
func (r *RevocationList) Revoke(ctx context.Context, claims *Claims) error {
	if claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}

	ttl := claims.ExpiresAt.Time.Sub(r.now())
	if ttl <= 0 {
		return nil
	}

	if err := r.client.Set(ctx, revokedKeyPrefix+claims.ID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether jti has been revoked.
func (r *RevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}

	n, err := r.client.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check revocation: %w", err)
	}
	return n > 0, nil
}
