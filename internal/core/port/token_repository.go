package port

import (
	"context"
	"time"

	"github.com/bert0h-dev/menvitta-backend/internal/core/domain"
)

// TokenRepository persists refresh token state.
type TokenRepository interface {
	Create(ctx context.Context, token domain.RefreshToken) error
	GetByJTI(ctx context.Context, jti string) (*domain.RefreshToken, error)
	// Revoke marks the token revoked; reports false when it was already
	// revoked or does not exist.
	Revoke(ctx context.Context, jti string, at time.Time) (bool, error)
	// DeleteExpired prunes tokens past their expiry, returning the count.
	DeleteExpired(ctx context.Context, before time.Time) (int, error)
}

// TokenBlacklist caches revoked refresh token identifiers for fast checks
// ahead of the database row. Failures here degrade to the repository.
type TokenBlacklist interface {
	MarkRevoked(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
