package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"

	"github.com/bert0h-dev/menvitta-backend/internal/core/domain"
	"github.com/bert0h-dev/menvitta-backend/internal/core/port"
)

// PermissionRepository implements port.PermissionRepository using
// PostgreSQL. The catalog is read-only; rows are provisioned by
// migrations.
type PermissionRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewPermissionRepository wires a permission repository backed by any
// executor that satisfies pgExecutor.
func NewPermissionRepository(exec pgExecutor) *PermissionRepository {
	return &PermissionRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ListByOwners returns catalog entries whose owner label is in the
// allow-list; an empty list returns nothing.
func (r *PermissionRepository) ListByOwners(ctx context.Context, owners []string) ([]domain.Permission, error) {
	if len(owners) == 0 {
		return []domain.Permission{}, nil
	}

	stmt, args, err := r.builder.
		Select("id", "name", "owner").
		From("menvitta.permissions").
		Where(squirrel.Eq{"owner": owners}).
		OrderBy("owner ASC", "name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list permissions sql: %w", err)
	}

	return r.queryPermissions(ctx, stmt, args)
}

// GetByIDs returns the catalog entries matching the supplied identifiers.
// Unknown identifiers are simply absent from the result.
func (r *PermissionRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.Permission, error) {
	if len(ids) == 0 {
		return []domain.Permission{}, nil
	}

	stmt, args, err := r.builder.
		Select("id", "name", "owner").
		From("menvitta.permissions").
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select permissions sql: %w", err)
	}

	return r.queryPermissions(ctx, stmt, args)
}

// ListByUser resolves the user's effective permission set through their
// role assignments.
func (r *PermissionRepository) ListByUser(ctx context.Context, userID string) ([]domain.Permission, error) {
	stmt, args, err := r.builder.
		Select("DISTINCT p.id", "p.name", "p.owner").
		From("menvitta.permissions p").
		Join("menvitta.role_permissions rp ON rp.permission_id = p.id").
		Join("menvitta.user_roles ur ON ur.role_id = rp.role_id").
		Where(squirrel.Eq{"ur.user_id": userID}).
		OrderBy("p.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list user permissions sql: %w", err)
	}

	return r.queryPermissions(ctx, stmt, args)
}

func (r *PermissionRepository) queryPermissions(ctx context.Context, stmt string, args []any) ([]domain.Permission, error) {
	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query permissions: %w", err)
	}
	defer rows.Close()

	permissions := make([]domain.Permission, 0)
	for rows.Next() {
		var permission domain.Permission
		if err := rows.Scan(&permission.ID, &permission.Name, &permission.Owner); err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		permissions = append(permissions, permission)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate permissions: %w", err)
	}

	return permissions, nil
}

var _ port.PermissionRepository = (*PermissionRepository)(nil)
