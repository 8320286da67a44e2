package token

import (
	"context"
	"time"

	"github.com/thumbdeck/account-server-go/internal/redis"
)

// Blacklist is a bounded, self-expiring set of revoked token ids backed by
// redis. Entries live no longer than the token they revoke, so the set never
// grows into a session store.
type Blacklist struct {
	client *redis.Client
}

func NewBlacklist(client *redis.Client) *Blacklist {
	return &Blacklist{client: client}
}

// Revoke records a token id until its natural expiry. Non-positive TTLs are
// ignored: the token is already dead.
func (b *Blacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return b.client.Set(ctx, redis.RevokedTokenKey(jti), "1", ttl).Err()
}

func (b *Blacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, redis.RevokedTokenKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
