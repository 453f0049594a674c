package port

import (
	"context"

	"github.com/bert0h-dev/menvitta-backend/internal/core/domain"
)

// PermissionRepository reads the immutable permission catalog. Entries are
// provisioned by migrations, never by this service.
type PermissionRepository interface {
	// ListByOwners returns catalog entries whose owner label is in the
	// allow-list; an empty list returns nothing.
	ListByOwners(ctx context.Context, owners []string) ([]domain.Permission, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.Permission, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Permission, error)
}
