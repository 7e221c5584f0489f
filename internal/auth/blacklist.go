package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Blacklist tracks rotated-out refresh tokens in Redis until they expire on
// their own, preventing replay of an old token after rotation.
type Blacklist struct {
	client *redis.Client
}

// NewBlacklist creates a blacklist backed by the given redis client.
func NewBlacklist(client *redis.Client) *Blacklist {
	return &Blacklist{client: client}
}

func blacklistKey(token string) string {
	return "edulog:blacklist:" + token
}

// Revoke marks a refresh token unusable until expiresAt.
func (b *Blacklist) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	if b == nil || b.client == nil {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return b.client.Set(ctx, blacklistKey(token), "1", ttl).Err()
}

// Revoked reports whether the token has been blacklisted. Lookup errors are
// treated as revoked so a downed Redis never lets a replayed token through.
func (b *Blacklist) Revoked(ctx context.Context, token string) bool {
	if b == nil || b.client == nil {
		return false
	}
	_, err := b.client.Get(ctx, blacklistKey(token)).Result()
	if err == redis.Nil {
		return false
	}
	return true
}
