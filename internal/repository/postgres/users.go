package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/shakibbs/Event-Backend/internal/core/domain"
	"github.com/shakibbs/Event-Backend/internal/core/port"
)

var userColumns = []string{
	"id",
	"email",
	"full_name",
	"password_hash",
	"status",
	"role_id",
	"created_at",
	"updated_at",
	"last_login",
}

// UserRepository implements port.UserRepository using PostgreSQL.
type UserRepository struct {
	base
}

// NewUserRepository wires a PostgreSQL-backed user repository.
func NewUserRepository(exec pgExecutor, schema string) *UserRepository {
	return &UserRepository{base: newBase(exec, schema)}
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *UserRepository) WithTx(tx pgx.Tx) *UserRepository {
	if tx == nil {
		return r
	}
	clone := *r
	clone.exec = tx
	return &clone
}

// Create inserts a user and returns the generated id.
func (r *UserRepository) Create(ctx context.Context, user domain.User) (int64, error) {
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = user.CreatedAt
	}
	if user.Status == "" {
		user.Status = domain.UserStatusActive
	}

	stmt, args, err := r.builder.Insert(r.table("users")).
		Columns("email", "full_name", "password_hash", "status", "role_id", "created_at", "updated_at").
		Values(
			strings.ToLower(strings.TrimSpace(user.Email)),
			user.FullName,
			user.PasswordHash,
			string(user.Status),
			user.RoleID,
			user.CreatedAt,
			user.UpdatedAt,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert user sql: %w", err)
	}

	var id int64
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&id); err != nil {
		return 0, translate(err, "insert user")
	}
	return id, nil
}

// GetByID retrieves a user by identifier.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id}, "select user by id")
}

// GetByEmail retrieves a user by normalized email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, squirrel.Eq{"email": strings.ToLower(strings.TrimSpace(email))}, "select user by email")
}

func (r *UserRepository) getOne(ctx context.Context, where squirrel.Eq, op string) (*domain.User, error) {
	stmt, args, err := r.builder.Select(userColumns...).
		From(r.table("users")).
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s sql: %w", op, err)
	}

	var (
		user      domain.User
		status    string
		lastLogin sql.NullTime
	)
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(
		&user.ID,
		&user.Email,
		&user.FullName,
		&user.PasswordHash,
		&status,
		&user.RoleID,
		&user.CreatedAt,
		&user.UpdatedAt,
		&lastLogin,
	); err != nil {
		return nil, translate(err, op)
	}

	user.Status = domain.UserStatus(status)
	if lastLogin.Valid {
		ts := lastLogin.Time
		user.LastLogin = &ts
	}
	return &user, nil
}

// UpdateRole replaces the single role a user holds.
func (r *UserRepository) UpdateRole(ctx context.Context, id int64, roleID int64) error {
	stmt, args, err := r.builder.Update(r.table("users")).
		Set("role_id", roleID).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update user role sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return translate(err, "update user role")
	}
	return affectedOrNotFound(tag)
}

// TouchLastLogin records a successful login.
func (r *UserRepository) TouchLastLogin(ctx context.Context, id int64) error {
	stmt, args, err := r.builder.Update(r.table("users")).
		Set("last_login", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build touch last login sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return translate(err, "touch last login")
	}
	return affectedOrNotFound(tag)
}

// SetStatus changes the account status.
func (r *UserRepository) SetStatus(ctx context.Context, id int64, status domain.UserStatus) error {
	stmt, args, err := r.builder.Update(r.table("users")).
		Set("status", string(status)).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set user status sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return translate(err, "set user status")
	}
	return affectedOrNotFound(tag)
}

var _ port.UserRepository = (*UserRepository)(nil)
