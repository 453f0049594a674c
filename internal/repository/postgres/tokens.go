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

// TokenRepository implements port.TokenRepository using PostgreSQL.
type TokenRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewTokenRepository wires a refresh token repository backed by any
// executor that satisfies pgExecutor.
func NewTokenRepository(exec pgExecutor) *TokenRepository {
	return &TokenRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *TokenRepository) WithTx(tx pgx.Tx) *TokenRepository {
	if tx == nil {
		return r
	}
	return &TokenRepository{
		exec:    tx,
		builder: r.builder,
	}
}

// Create inserts a new refresh token row.
func (r *TokenRepository) Create(ctx context.Context, token domain.RefreshToken) error {
	stmt, args, err := r.builder.Insert("menvitta.refresh_tokens").
		Columns(
			"jti",
			"user_id",
			"token_hash",
			"ip",
			"user_agent",
			"created_at",
			"expires_at",
			"revoked_at",
		).
		Values(
			token.JTI,
			token.UserID,
			token.TokenHash,
			token.IP,
			token.UserAgent,
			token.CreatedAt,
			token.ExpiresAt,
			token.RevokedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert refresh token sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}

	return nil
}

// GetByJTI retrieves a refresh token by its JWT identifier.
func (r *TokenRepository) GetByJTI(ctx context.Context, jti string) (*domain.RefreshToken, error) {
	stmt, args, err := r.builder.
		Select(
			"jti",
			"user_id",
			"token_hash",
			"ip",
			"user_agent",
			"created_at",
			"expires_at",
			"revoked_at",
		).
		From("menvitta.refresh_tokens").
		Where(squirrel.Eq{"jti": jti}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select refresh token sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var (
		token     domain.RefreshToken
		ip        sql.NullString
		userAgent sql.NullString
		revokedAt *time.Time
	)

	if err := row.Scan(
		&token.JTI,
		&token.UserID,
		&token.TokenHash,
		&ip,
		&userAgent,
		&token.CreatedAt,
		&token.ExpiresAt,
		&revokedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan refresh token: %w", err)
	}

	token.RevokedAt = revokedAt
	if ip.Valid {
		val := ip.String
		token.IP = &val
	}
	if userAgent.Valid {
		val := userAgent.String
		token.UserAgent = &val
	}

	return &token, nil
}

// Revoke marks the token revoked. Reports false when it was already
// revoked or does not exist, so a second revocation attempt fails.
func (r *TokenRepository) Revoke(ctx context.Context, jti string, at time.Time) (bool, error) {
	stmt, args, err := r.builder.Update("menvitta.refresh_tokens").
		Set("revoked_at", at).
		Where(squirrel.Eq{"jti": jti}).
		Where(squirrel.Expr("revoked_at IS NULL")).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build revoke refresh token sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return false, fmt.Errorf("revoke refresh token: %w", err)
	}

	return ct.RowsAffected() > 0, nil
}

// DeleteExpired prunes tokens past their expiry, returning the count.
func (r *TokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int, error) {
	stmt, args, err := r.builder.Delete("menvitta.refresh_tokens").
		Where(squirrel.Lt{"expires_at": before}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete expired tokens sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("delete expired tokens: %w", err)
	}

	return int(ct.RowsAffected()), nil
}

var _ port.TokenRepository = (*TokenRepository)(nil)
