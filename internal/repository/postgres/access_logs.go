package postgres

import (
	"context"
	"database/sql"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/bert0h-dev/menvitta-backend/internal/core/domain"
	"github.com/bert0h-dev/menvitta-backend/internal/core/port"
	"github.com/bert0h-dev/menvitta-backend/internal/repository"
)

var accessLogColumns = []string{
	"id",
	"user_id",
	"method",
	"path",
	"action",
	"status_code",
	"message",
	"ip_address",
	"user_agent",
	"object_id",
	"object_type",
	"created_at",
}

// AccessLogRepository implements port.AccessLogRepository using
// PostgreSQL. Rows are append-only; there is no update or delete path.
type AccessLogRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewAccessLogRepository wires an audit repository backed by any
// executor that satisfies pgExecutor.
func NewAccessLogRepository(exec pgExecutor) *AccessLogRepository {
	return &AccessLogRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create appends an audit record.
func (r *AccessLogRepository) Create(ctx context.Context, entry domain.AccessLog) error {
	stmt, args, err := r.builder.Insert("menvitta.access_logs").
		Columns(accessLogColumns...).
		Values(
			entry.ID,
			entry.UserID,
			entry.Method,
			entry.Path,
			entry.Action,
			entry.StatusCode,
			entry.Message,
			entry.IPAddress,
			entry.UserAgent,
			entry.ObjectID,
			entry.ObjectType,
			entry.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert access log sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert access log: %w", err)
	}

	return nil
}

// List returns audit records matching the filter, newest first.
func (r *AccessLogRepository) List(ctx context.Context, filter port.AccessLogFilter) ([]domain.AccessLog, error) {
	query := r.builder.
		Select(accessLogColumns...).
		From("menvitta.access_logs").
		OrderBy("created_at DESC")

	if filter.UserID != "" {
		query = query.Where(squirrel.Eq{"user_id": filter.UserID})
	}

	if filter.Action != "" {
		query = query.Where(squirrel.ILike{"action": "%" + filter.Action + "%"})
	}

	if filter.Method != "" {
		query = query.Where(squirrel.Eq{"method": filter.Method})
	}

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list access logs sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query access logs: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.AccessLog, 0)
	for rows.Next() {
		entry, err := scanAccessLog(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan access log: %w", err)
		}
		entries = append(entries, *entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate access logs: %w", err)
	}

	return entries, nil
}

// GetByID retrieves a single audit record.
func (r *AccessLogRepository) GetByID(ctx context.Context, id string) (*domain.AccessLog, error) {
	stmt, args, err := r.builder.
		Select(accessLogColumns...).
		From("menvitta.access_logs").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select access log sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	entry, err := scanAccessLog(row.Scan)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan access log: %w", err)
	}

	return entry, nil
}

func scanAccessLog(scan func(dest ...any) error) (*domain.AccessLog, error) {
	var (
		entry      domain.AccessLog
		userID     sql.NullString
		ipAddress  sql.NullString
		objectID   sql.NullString
		objectType sql.NullString
	)

	if err := scan(
		&entry.ID,
		&userID,
		&entry.Method,
		&entry.Path,
		&entry.Action,
		&entry.StatusCode,
		&entry.Message,
		&ipAddress,
		&entry.UserAgent,
		&objectID,
		&objectType,
		&entry.CreatedAt,
	); err != nil {
		return nil, err
	}

	if userID.Valid {
		val := userID.String
		entry.UserID = &val
	}
	if ipAddress.Valid {
		val := ipAddress.String
		entry.IPAddress = &val
	}
	if objectID.Valid {
		val := objectID.String
		entry.ObjectID = &val
	}
	if objectType.Valid {
		val := objectType.String
		entry.ObjectType = &val
	}

	return &entry, nil
}

var _ port.AccessLogRepository = (*AccessLogRepository)(nil)
