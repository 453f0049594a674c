package postgres

import (
	"context"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/bert0h-dev/menvitta-backend/internal/core/domain"
	"github.com/bert0h-dev/menvitta-backend/internal/core/port"
	"github.com/bert0h-dev/menvitta-backend/internal/repository"
)

// RoleRepository implements port.RoleRepository using PostgreSQL.
type RoleRepository struct {
	db      pgDatabase
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewRoleRepository wires a role repository. Mutations that touch the
// role and its permission links run inside a transaction started on db.
func NewRoleRepository(db pgDatabase) *RoleRepository {
	return &RoleRepository{
		db:      db,
		exec:    db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *RoleRepository) WithTx(tx pgx.Tx) *RoleRepository {
	if tx == nil {
		return r
	}
	return &RoleRepository{
		db:      r.db,
		exec:    tx,
		builder: r.builder,
	}
}

// Create inserts the role and its permission links in one transaction.
// A duplicate name surfaces as repository.ErrDuplicate.
func (r *RoleRepository) Create(ctx context.Context, role domain.Role, permissionIDs []string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create role tx: %w", err)
	}
	defer tx.Rollback(ctx)

	stmt, args, err := r.builder.Insert("menvitta.roles").
		Columns("id", "name").
		Values(role.ID, role.Name).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert role sql: %w", err)
	}

	if _, err := tx.Exec(ctx, stmt, args...); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert role: %w", err)
	}

	if err := insertRolePermissions(ctx, tx, r.builder, role.ID, permissionIDs); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create role tx: %w", err)
	}

	return nil
}

// List returns all roles with their member counts, sorted by name.
func (r *RoleRepository) List(ctx context.Context) ([]domain.Role, error) {
	stmt, args, err := r.builder.
		Select("r.id", "r.name", "COUNT(ur.user_id) AS user_count").
		From("menvitta.roles r").
		LeftJoin("menvitta.user_roles ur ON ur.role_id = r.id").
		GroupBy("r.id", "r.name").
		OrderBy("r.name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list roles sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query roles: %w", err)
	}
	defer rows.Close()

	roles := make([]domain.Role, 0)
	for rows.Next() {
		var (
			role  domain.Role
			count int64
		)
		if err := rows.Scan(&role.ID, &role.Name, &count); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		role.UserCount = int(count)
		roles = append(roles, role)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roles: %w", err)
	}

	return roles, nil
}

// GetByID retrieves a role by identifier.
func (r *RoleRepository) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	return r.getBy(ctx, squirrel.Eq{"r.id": id}, "scan role")
}

// GetByName retrieves a role by its exact name.
func (r *RoleRepository) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	return r.getBy(ctx, squirrel.Eq{"r.name": name}, "scan role by name")
}

func (r *RoleRepository) getBy(ctx context.Context, cond squirrel.Eq, scanLabel string) (*domain.Role, error) {
	stmt, args, err := r.builder.
		Select("r.id", "r.name", "COUNT(ur.user_id) AS user_count").
		From("menvitta.roles r").
		LeftJoin("menvitta.user_roles ur ON ur.role_id = r.id").
		Where(cond).
		GroupBy("r.id", "r.name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select role sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var (
		role  domain.Role
		count int64
	)
	if err := row.Scan(&role.ID, &role.Name, &count); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", scanLabel, err)
	}
	role.UserCount = int(count)

	return &role, nil
}

// Update renames the role and, when permissionIDs is non-nil, replaces
// the permission set wholesale in the same transaction.
func (r *RoleRepository) Update(ctx context.Context, role domain.Role, permissionIDs []string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin update role tx: %w", err)
	}
	defer tx.Rollback(ctx)

	stmt, args, err := r.builder.Update("menvitta.roles").
		Set("name", role.Name).
		Where(squirrel.Eq{"id": role.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update role sql: %w", err)
	}

	ct, err := tx.Exec(ctx, stmt, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("update role: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	if permissionIDs != nil {
		stmt, args, err := r.builder.Delete("menvitta.role_permissions").
			Where(squirrel.Eq{"role_id": role.ID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build clear role permissions sql: %w", err)
		}
		if _, err := tx.Exec(ctx, stmt, args...); err != nil {
			return fmt.Errorf("clear role permissions: %w", err)
		}

		if err := insertRolePermissions(ctx, tx, r.builder, role.ID, permissionIDs); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit update role tx: %w", err)
	}

	return nil
}

// Delete removes the role. Permission links cascade via the schema.
func (r *RoleRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("menvitta.roles").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete role sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// CountUsers returns how many users currently hold the role.
func (r *RoleRepository) CountUsers(ctx context.Context, roleID string) (int, error) {
	stmt, args, err := r.builder.Select("COUNT(*)").
		From("menvitta.user_roles").
		Where(squirrel.Eq{"role_id": roleID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count role users sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var count int64
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("scan role users count: %w", err)
	}

	return int(count), nil
}

// PermissionIDs returns the identifiers of the permissions linked to the role.
func (r *RoleRepository) PermissionIDs(ctx context.Context, roleID string) ([]string, error) {
	stmt, args, err := r.builder.Select("permission_id").
		From("menvitta.role_permissions").
		Where(squirrel.Eq{"role_id": roleID}).
		OrderBy("permission_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select role permissions sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query role permissions: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan role permission: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate role permissions: %w", err)
	}

	return ids, nil
}

// AssignUser links the user to the role. Reports false when the user
// already holds it.
func (r *RoleRepository) AssignUser(ctx context.Context, userID, roleID string) (bool, error) {
	stmt, args, err := r.builder.Insert("menvitta.user_roles").
		Columns("user_id", "role_id", "assigned_at").
		Values(userID, roleID, time.Now().UTC()).
		Suffix("ON CONFLICT DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build assign role sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return false, fmt.Errorf("assign role: %w", err)
	}

	return ct.RowsAffected() > 0, nil
}

// UnassignUser removes the role from the user. Reports false when the
// user does not hold it.
func (r *RoleRepository) UnassignUser(ctx context.Context, userID, roleID string) (bool, error) {
	stmt, args, err := r.builder.Delete("menvitta.user_roles").
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.Eq{"role_id": roleID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build unassign role sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return false, fmt.Errorf("unassign role: %w", err)
	}

	return ct.RowsAffected() > 0, nil
}

// HasUser reports whether the user currently holds the role.
func (r *RoleRepository) HasUser(ctx context.Context, userID, roleID string) (bool, error) {
	stmt, args, err := r.builder.Select("1").
		From("menvitta.user_roles").
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.Eq{"role_id": roleID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build has role sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var one int
	if err := row.Scan(&one); err != nil {
		if err == pgx.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("scan has role: %w", err)
	}

	return true, nil
}

func insertRolePermissions(ctx context.Context, tx pgx.Tx, builder squirrel.StatementBuilderType, roleID string, permissionIDs []string) error {
	if len(permissionIDs) == 0 {
		return nil
	}

	query := builder.Insert("menvitta.role_permissions").
		Columns("role_id", "permission_id")
	for _, permissionID := range permissionIDs {
		query = query.Values(roleID, permissionID)
	}

	stmt, args, err := query.Suffix("ON CONFLICT DO NOTHING").ToSql()
	if err != nil {
		return fmt.Errorf("build insert role permissions sql: %w", err)
	}

	if _, err := tx.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert role permissions: %w", err)
	}

	return nil
}

var _ port.RoleRepository = (*RoleRepository)(nil)
