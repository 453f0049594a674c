package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/bert0h-dev/menvitta-backend/internal/core/domain"
	"github.com/bert0h-dev/menvitta-backend/internal/repository"
)

func TestTokenRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewTokenRepository(mock)

	now := time.Now().UTC()
	ip := "203.0.113.9"
	token := domain.RefreshToken{
		JTI:       "jti-1",
		UserID:    "user-1",
		TokenHash: "deadbeef",
		IP:        &ip,
		CreatedAt: now,
		ExpiresAt: now.Add(168 * time.Hour),
	}

	mock.ExpectExec(`INSERT INTO menvitta\.refresh_tokens`).
		WithArgs("jti-1", "user-1", "deadbeef", ip, nil, now, token.ExpiresAt, nil).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), token); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTokenRepository_GetByJTI(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewTokenRepository(mock)

	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{
		"jti", "user_id", "token_hash", "ip", "user_agent", "created_at", "expires_at", "revoked_at",
	}).AddRow("jti-1", "user-1", "deadbeef", "203.0.113.9", nil, now, now.Add(time.Hour), nil)

	mock.ExpectQuery(`SELECT .* FROM menvitta\.refresh_tokens WHERE jti = \$1`).
		WithArgs("jti-1").
		WillReturnRows(rows)

	token, err := repo.GetByJTI(context.Background(), "jti-1")
	if err != nil {
		t.Fatalf("GetByJTI returned error: %v", err)
	}
	if token.IP == nil || *token.IP != "203.0.113.9" {
		t.Fatalf("ip = %v", token.IP)
	}
	if token.UserAgent != nil {
		t.Fatalf("user agent = %v, want nil", token.UserAgent)
	}
	if token.IsRevoked() {
		t.Fatal("token must not be revoked")
	}

	mock.ExpectQuery(`SELECT .* FROM menvitta\.refresh_tokens WHERE jti = \$1`).
		WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows([]string{
			"jti", "user_id", "token_hash", "ip", "user_agent", "created_at", "expires_at", "revoked_at",
		}))

	if _, err := repo.GetByJTI(context.Background(), "ghost"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("got %v, want repository.ErrNotFound", err)
	}
}

func TestTokenRepository_RevokeOnlyOnce(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewTokenRepository(mock)

	at := time.Now().UTC()

	mock.ExpectExec(`UPDATE menvitta\.refresh_tokens SET revoked_at = \$1 WHERE jti = \$2 AND revoked_at IS NULL`).
		WithArgs(at, "jti-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	revoked, err := repo.Revoke(context.Background(), "jti-1", at)
	if err != nil {
		t.Fatalf("Revoke returned error: %v", err)
	}
	if !revoked {
		t.Fatal("first revocation must report true")
	}

	// The row is already revoked so the guarded update matches nothing.
	mock.ExpectExec(`UPDATE menvitta\.refresh_tokens SET revoked_at = \$1 WHERE jti = \$2 AND revoked_at IS NULL`).
		WithArgs(at, "jti-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	revoked, err = repo.Revoke(context.Background(), "jti-1", at)
	if err != nil {
		t.Fatalf("Revoke returned error: %v", err)
	}
	if revoked {
		t.Fatal("second revocation must report false")
	}
}

func TestTokenRepository_DeleteExpired(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewTokenRepository(mock)

	before := time.Now().UTC()

	mock.ExpectExec(`DELETE FROM menvitta\.refresh_tokens WHERE expires_at < \$1`).
		WithArgs(before).
		WillReturnResult(pgxmock.NewResult("DELETE", 7))

	count, err := repo.DeleteExpired(context.Background(), before)
	if err != nil {
		t.Fatalf("DeleteExpired returned error: %v", err)
	}
	if count != 7 {
		t.Fatalf("count = %d, want 7", count)
	}
}
