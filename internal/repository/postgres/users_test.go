package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/shakibbs/Event-Backend/internal/core/domain"
	"github.com/shakibbs/Event-Backend/internal/repository"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func assertExpectations(t *testing.T, mock pgxmock.PgxPoolIface) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_Create(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock, "ems")

	createdAt := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(`INSERT INTO ems\.users \(email,full_name,password_hash,status,role_id,created_at,updated_at\) VALUES .* RETURNING id`).
		WithArgs("alice@example.com", "Alice", "hash", "active", int64(3), createdAt, createdAt).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(17)))

	id, err := repo.Create(context.Background(), domain.User{
		Email:        "  Alice@Example.com ",
		FullName:     "Alice",
		PasswordHash: "hash",
		RoleID:       3,
		CreatedAt:    createdAt,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if id != 17 {
		t.Fatalf("expected id 17, got %d", id)
	}
	assertExpectations(t, mock)
}

func TestUserRepository_CreateDuplicateEmail(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock, "")

	mock.ExpectQuery(`INSERT INTO ems\.users`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key"})

	_, err := repo.Create(context.Background(), domain.User{Email: "dup@example.com"})
	if !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	assertExpectations(t, mock)
}

func TestUserRepository_GetByEmail(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock, "ems")

	createdAt := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	rows := pgxmock.NewRows(userColumns).
		AddRow(int64(5), "bob@example.com", "Bob", "$2a$12$hash", "active", int64(2), createdAt, createdAt, nil)

	mock.ExpectQuery(`SELECT id, email, full_name, password_hash, status, role_id, created_at, updated_at, last_login FROM ems\.users WHERE email = \$1 LIMIT 1`).
		WithArgs("bob@example.com").
		WillReturnRows(rows)

	user, err := repo.GetByEmail(context.Background(), "BOB@example.com")
	if err != nil {
		t.Fatalf("GetByEmail returned error: %v", err)
	}
	if user.ID != 5 || user.RoleID != 2 || user.Status != domain.UserStatusActive {
		t.Fatalf("unexpected user: %+v", user)
	}
	if user.LastLogin != nil {
		t.Fatalf("expected nil last login, got %v", user.LastLogin)
	}
	assertExpectations(t, mock)
}

func TestUserRepository_GetByIDNotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock, "ems")

	mock.ExpectQuery(`SELECT .* FROM ems\.users WHERE id = \$1`).
		WithArgs(int64(99)).
		WillReturnError(pgx.ErrNoRows)

	if _, err := repo.GetByID(context.Background(), 99); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	assertExpectations(t, mock)
}

func TestUserRepository_UpdateRole(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock, "ems")

	mock.ExpectExec(`UPDATE ems\.users SET role_id = \$1, updated_at = \$2 WHERE id = \$3`).
		WithArgs(int64(1), pgxmock.AnyArg(), int64(8)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE ems\.users SET role_id`).
		WithArgs(int64(1), pgxmock.AnyArg(), int64(404)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := repo.UpdateRole(context.Background(), 8, 1); err != nil {
		t.Fatalf("UpdateRole returned error: %v", err)
	}
	if err := repo.UpdateRole(context.Background(), 404, 1); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing user, got %v", err)
	}
	assertExpectations(t, mock)
}

func TestUserRepository_TouchLastLogin(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock, "ems")

	mock.ExpectExec(`UPDATE ems\.users SET last_login = \$1 WHERE id = \$2`).
		WithArgs(pgxmock.AnyArg(), int64(5)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.TouchLastLogin(context.Background(), 5); err != nil {
		t.Fatalf("TouchLastLogin returned error: %v", err)
	}
	assertExpectations(t, mock)
}

func TestUserRepository_SetStatus(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock, "ems")

	mock.ExpectExec(`UPDATE ems\.users SET status = \$1, updated_at = \$2 WHERE id = \$3`).
		WithArgs("inactive", pgxmock.AnyArg(), int64(6)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE ems\.users SET status`).
		WithArgs("held", pgxmock.AnyArg(), int64(404)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := repo.SetStatus(context.Background(), 6, domain.UserStatusInactive); err != nil {
		t.Fatalf("SetStatus returned error: %v", err)
	}
	if err := repo.SetStatus(context.Background(), 404, domain.UserStatusHeld); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing user, got %v", err)
	}
	assertExpectations(t, mock)
}
