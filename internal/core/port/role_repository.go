package port

import (
	"context"

	"github.com/bert0h-dev/menvitta-backend/internal/core/domain"
)

// RoleRepository handles role CRUD and membership.
type RoleRepository interface {
	Create(ctx context.Context, role domain.Role, permissionIDs []string) error
	// List returns all roles with their member counts, sorted by name.
	List(ctx context.Context) ([]domain.Role, error)
	GetByID(ctx context.Context, id string) (*domain.Role, error)
	// GetByName matches the exact (already trimmed) name.
	GetByName(ctx context.Context, name string) (*domain.Role, error)
	// Update renames the role and, when permissionIDs is non-nil, replaces
	// the permission set wholesale in the same transaction.
	Update(ctx context.Context, role domain.Role, permissionIDs []string) error
	Delete(ctx context.Context, id string) error
	CountUsers(ctx context.Context, roleID string) (int, error)
	PermissionIDs(ctx context.Context, roleID string) ([]string, error)
	// AssignUser reports false when the user already holds the role.
	AssignUser(ctx context.Context, userID, roleID string) (bool, error)
	// UnassignUser reports false when the user does not hold the role.
	UnassignUser(ctx context.Context, userID, roleID string) (bool, error)
	HasUser(ctx context.Context, userID, roleID string) (bool, error)
}
