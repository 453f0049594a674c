package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/bert0h-dev/menvitta-backend/internal/core/domain"
	"github.com/bert0h-dev/menvitta-backend/internal/core/port"
	"github.com/bert0h-dev/menvitta-backend/internal/repository"
)

func newUserRows() *pgxmock.Rows {
	return pgxmock.NewRows(userColumns)
}

func addUserRow(rows *pgxmock.Rows, user domain.User) *pgxmock.Rows {
	return rows.AddRow(
		user.ID, user.Email, user.Username, user.FirstName, user.LastName,
		user.UserType, user.PasswordHash, user.PasswordChanged,
		user.Language, user.Timezone, user.IsActive, user.IsStaff,
		user.IsSuperuser, user.DateJoined, user.LastActivity, user.LastIP,
	)
}

func TestUserRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	joined := time.Now().UTC()
	user := domain.User{
		ID:           "user-1",
		Email:        "ana@example.com",
		FirstName:    "Ana",
		LastName:     "Lopez",
		UserType:     domain.UserTypeStaff,
		PasswordHash: "argon2id$...",
		Language:     "es",
		Timezone:     "UTC",
		IsActive:     true,
		IsStaff:      true,
		DateJoined:   joined,
	}

	mock.ExpectExec(`INSERT INTO menvitta\.users`).
		WithArgs(
			user.ID, user.Email, nil, user.FirstName, user.LastName,
			user.UserType, user.PasswordHash, false, user.Language,
			user.Timezone, true, true, false, joined, nil, nil,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_CreateDuplicateEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	mock.ExpectExec(`INSERT INTO menvitta\.users`).
		WillReturnError(&pgconn.PgError{Code: uniqueViolationCode})

	err = repo.Create(context.Background(), domain.User{ID: "user-1", Email: "ana@example.com"})
	if !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("got %v, want repository.ErrDuplicate", err)
	}
}

func TestUserRepository_GetByEmailLowersBothSides(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	user := domain.User{
		ID:         "user-1",
		Email:      "ana@example.com",
		UserType:   domain.UserTypeUser,
		Language:   "es",
		Timezone:   "UTC",
		IsActive:   true,
		DateJoined: time.Now().UTC(),
	}

	mock.ExpectQuery(`SELECT .* FROM menvitta\.users WHERE LOWER\(email\) = LOWER\(\$1\) LIMIT 1`).
		WithArgs("ANA@example.com").
		WillReturnRows(addUserRow(newUserRows(), user))

	found, err := repo.GetByEmail(context.Background(), "ANA@example.com")
	if err != nil {
		t.Fatalf("GetByEmail returned error: %v", err)
	}
	if found.ID != user.ID {
		t.Fatalf("found user %q, want %q", found.ID, user.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_GetByIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	mock.ExpectQuery(`SELECT .* FROM menvitta\.users WHERE id = \$1`).
		WithArgs("ghost").
		WillReturnRows(newUserRows())

	if _, err := repo.GetByID(context.Background(), "ghost"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("got %v, want repository.ErrNotFound", err)
	}
}

func TestUserRepository_ListAppliesFilters(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	staff := domain.UserTypeStaff
	active := true

	user := domain.User{
		ID: "user-1", Email: "ana@example.com", UserType: staff,
		Language: "es", Timezone: "UTC", IsActive: true, IsStaff: true,
		DateJoined: time.Now().UTC(),
	}

	mock.ExpectQuery(`SELECT .* FROM menvitta\.users WHERE .*ILIKE.*user_type = \$4 AND is_active = \$5 ORDER BY date_joined DESC`).
		WithArgs("%ana%", "%ana%", "%ana%", staff, active).
		WillReturnRows(addUserRow(newUserRows(), user))

	users, err := repo.List(context.Background(), port.UserFilter{
		Search:   "ana",
		UserType: &staff,
		IsActive: &active,
	})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(users) != 1 || users[0].ID != "user-1" {
		t.Fatalf("users = %+v", users)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_UpdatePassword(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	mock.ExpectExec(`UPDATE menvitta\.users SET password_hash = \$1, password_changed = \$2 WHERE id = \$3`).
		WithArgs("new-hash", true, "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.UpdatePassword(context.Background(), "user-1", "new-hash"); err != nil {
		t.Fatalf("UpdatePassword returned error: %v", err)
	}

	mock.ExpectExec(`UPDATE menvitta\.users SET password_hash`).
		WithArgs("new-hash", true, "ghost").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := repo.UpdatePassword(context.Background(), "ghost", "new-hash"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("got %v, want repository.ErrNotFound", err)
	}
}

func TestUserRepository_TouchActivity(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	at := time.Now().UTC()
	ip := "203.0.113.9"

	mock.ExpectExec(`UPDATE menvitta\.users SET last_activity = \$1, last_ip = \$2 WHERE id = \$3`).
		WithArgs(at, ip, "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.TouchActivity(context.Background(), "user-1", at, &ip); err != nil {
		t.Fatalf("TouchActivity returned error: %v", err)
	}

	// Without an address only the timestamp is written, and a missing
	// row is not an error.
	mock.ExpectExec(`UPDATE menvitta\.users SET last_activity = \$1 WHERE id = \$2`).
		WithArgs(at, "ghost").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := repo.TouchActivity(context.Background(), "ghost", at, nil); err != nil {
		t.Fatalf("TouchActivity returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
