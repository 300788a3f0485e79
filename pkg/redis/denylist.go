package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Denylist stores revoked token ids. Each entry lives exactly as long as the
// token it revokes would have, so the set never outgrows the live tokens.
type Denylist struct {
	client redis.UniversalClient
	prefix string
}

// NewDenylist creates a Denylist writing keys under prefix + "jwt:deny:".
func NewDenylist(client redis.UniversalClient, prefix string) *Denylist {
	return &Denylist{client: client, prefix: prefix + "jwt:deny:"}
}

// Revoke marks tokenID as revoked for ttl and reports whether this call
// recorded it. False means the id was already revoked, so concurrent
// callers can use it as a single-use claim. A non-positive ttl means the
// token is already expired and nothing is written.
func (d *Denylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) (bool, error) {
	if tokenID == "" {
		return false, ErrEmptyTokenID
	}
	if ttl <= 0 {
		return false, nil
	}
	return d.client.SetNX(ctx, d.prefix+tokenID, 1, ttl).Result()
}

// IsRevoked reports whether tokenID was revoked and has not yet expired.
func (d *Denylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, ErrEmptyTokenID
	}
	n, err := d.client.Exists(ctx, d.prefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
