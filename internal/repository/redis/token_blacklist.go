package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/bert0h-dev/menvitta-backend/internal/core/port"
)

const defaultBlacklistPrefix = "token:revoked"

// TokenBlacklist caches revoked refresh token identifiers in Redis so the
// hot path can skip the database row. Cache misses and errors degrade to
// the persistent store; the cache is advisory, never authoritative.
type TokenBlacklist struct {
	client *red.Client
	prefix string
}

// NewTokenBlacklist constructs a Redis-backed revocation cache.
func NewTokenBlacklist(client *red.Client, keyPrefix string) *TokenBlacklist {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultBlacklistPrefix
	}

	return &TokenBlacklist{client: client, prefix: prefix}
}

// MarkRevoked stores the token identifier for the remaining token
// lifetime. Entries expire on their own once the token itself would have.
func (b *TokenBlacklist) MarkRevoked(ctx context.Context, jti string, ttl time.Duration) error {
	key := b.key(jti)
	if key == "" {
		return fmt.Errorf("token id is required")
	}
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive")
	}

	if err := b.client.Set(ctx, key, "revoked", ttl).Err(); err != nil {
		return fmt.Errorf("redis set token revocation: %w", err)
	}

	return nil
}

// IsRevoked reports whether the token identifier is cached as revoked.
func (b *TokenBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	key := b.key(jti)
	if key == "" {
		return false, fmt.Errorf("token id is required")
	}

	if err := b.client.Get(ctx, key).Err(); err != nil {
		if errors.Is(err, red.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis get token revocation: %w", err)
	}

	return true, nil
}

func (b *TokenBlacklist) key(jti string) string {
	trimmed := strings.TrimSpace(jti)
	if trimmed == "" {
		return ""
	}
	return b.prefix + ":" + trimmed
}

var _ port.TokenBlacklist = (*TokenBlacklist)(nil)
