package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/bert0h-dev/menvitta-backend/internal/core/domain"
	"github.com/bert0h-dev/menvitta-backend/internal/core/port"
	"github.com/bert0h-dev/menvitta-backend/internal/repository"
)

var userColumns = []string{
	"id",
	"email",
	"username",
	"first_name",
	"last_name",
	"user_type",
	"password_hash",
	"password_changed",
	"language",
	"timezone",
	"is_active",
	"is_staff",
	"is_superuser",
	"date_joined",
	"last_activity",
	"last_ip",
}

// UserRepository implements port.UserRepository using PostgreSQL.
type UserRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewUserRepository wires a user repository backed by any executor that
// satisfies pgExecutor.
func NewUserRepository(exec pgExecutor) *UserRepository {
	return &UserRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *UserRepository) WithTx(tx pgx.Tx) *UserRepository {
	if tx == nil {
		return r
	}
	return &UserRepository{
		exec:    tx,
		builder: r.builder,
	}
}

// Create inserts a new user row. A duplicate email surfaces as
// repository.ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, user domain.User) error {
	var usernameValue any
	if user.Username != nil && *user.Username != "" {
		usernameValue = *user.Username
	}

	query := r.builder.Insert("menvitta.users").
		Columns(userColumns...).
		Values(
			user.ID,
			user.Email,
			usernameValue,
			user.FirstName,
			user.LastName,
			user.UserType,
			user.PasswordHash,
			user.PasswordChanged,
			user.Language,
			user.Timezone,
			user.IsActive,
			user.IsStaff,
			user.IsSuperuser,
			user.DateJoined,
			user.LastActivity,
			user.LastIP,
		)

	stmt, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build insert user sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by identifier.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	stmt, args, err := r.builder.
		Select(userColumns...).
		From("menvitta.users").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	user, err := scanUser(row.Scan)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	return user, nil
}

// GetByEmail retrieves a user by email address, case-insensitively.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	stmt, args, err := r.builder.
		Select(userColumns...).
		From("menvitta.users").
		Where(squirrel.Expr("LOWER(email) = LOWER(?)", email)).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user by email sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	user, err := scanUser(row.Scan)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user by email: %w", err)
	}

	return user, nil
}

// List returns users matching the filter, newest first.
func (r *UserRepository) List(ctx context.Context, filter port.UserFilter) ([]domain.User, error) {
	query := r.builder.
		Select(userColumns...).
		From("menvitta.users").
		OrderBy("date_joined DESC")

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where(squirrel.Or{
			squirrel.ILike{"email": pattern},
			squirrel.ILike{"first_name": pattern},
			squirrel.ILike{"last_name": pattern},
		})
	}

	if filter.UserType != nil {
		query = query.Where(squirrel.Eq{"user_type": *filter.UserType})
	}

	if filter.IsActive != nil {
		query = query.Where(squirrel.Eq{"is_active": *filter.IsActive})
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list users sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

// Update modifies an existing user's profile fields.
func (r *UserRepository) Update(ctx context.Context, user domain.User) error {
	var usernameValue any
	if user.Username != nil && *user.Username != "" {
		usernameValue = *user.Username
	}

	stmt, args, err := r.builder.Update("menvitta.users").
		Set("email", user.Email).
		Set("username", usernameValue).
		Set("first_name", user.FirstName).
		Set("last_name", user.LastName).
		Set("user_type", user.UserType).
		Set("language", user.Language).
		Set("timezone", user.Timezone).
		Set("is_active", user.IsActive).
		Set("is_staff", user.IsStaff).
		Set("is_superuser", user.IsSuperuser).
		Where(squirrel.Eq{"id": user.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update user sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("update user: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// UpdatePassword stores the new hash and raises the password_changed flag.
func (r *UserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	stmt, args, err := r.builder.Update("menvitta.users").
		Set("password_hash", passwordHash).
		Set("password_changed", true).
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update password sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// UpdateLanguage changes the user's interface language.
func (r *UserRepository) UpdateLanguage(ctx context.Context, userID, language string) error {
	stmt, args, err := r.builder.Update("menvitta.users").
		Set("language", language).
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update language sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update language: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// TouchActivity records the request timestamp and, when it changed, the
// client address. Missing rows are not an error; the caller treats this
// as best-effort.
func (r *UserRepository) TouchActivity(ctx context.Context, userID string, at time.Time, ip *string) error {
	query := r.builder.Update("menvitta.users").
		Set("last_activity", at).
		Where(squirrel.Eq{"id": userID})

	if ip != nil && *ip != "" {
		query = query.Set("last_ip", *ip)
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build touch activity sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("touch activity: %w", err)
	}

	return nil
}

func scanUser(scan func(dest ...any) error) (*domain.User, error) {
	var (
		user         domain.User
		username     sql.NullString
		lastActivity *time.Time
		lastIP       sql.NullString
	)

	if err := scan(
		&user.ID,
		&user.Email,
		&username,
		&user.FirstName,
		&user.LastName,
		&user.UserType,
		&user.PasswordHash,
		&user.PasswordChanged,
		&user.Language,
		&user.Timezone,
		&user.IsActive,
		&user.IsStaff,
		&user.IsSuperuser,
		&user.DateJoined,
		&lastActivity,
		&lastIP,
	); err != nil {
		return nil, err
	}

	user.LastActivity = lastActivity
	if username.Valid {
		val := username.String
		user.Username = &val
	}
	if lastIP.Valid {
		val := lastIP.String
		user.LastIP = &val
	}

	return &user, nil
}

var _ port.UserRepository = (*UserRepository)(nil)
