package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/shakibbs/Event-Backend/internal/core/domain"
	"github.com/shakibbs/Event-Backend/internal/core/port"
)

var roleColumns = []string{"id", "name", "description", "deleted", "created_at"}

// RoleRepository implements role persistence and role-permission links.
type RoleRepository struct {
	base
}

// NewRoleRepository constructs a PostgreSQL-backed role repository.
func NewRoleRepository(exec pgExecutor, schema string) *RoleRepository {
	return &RoleRepository{base: newBase(exec, schema)}
}

// WithTx returns a repository configured to execute within the provided transaction.
func (r *RoleRepository) WithTx(tx pgx.Tx) *RoleRepository {
	if tx == nil {
		return r
	}
	clone := *r
	clone.exec = tx
	return &clone
}

// Create inserts a new role and returns its id.
func (r *RoleRepository) Create(ctx context.Context, role domain.Role) (int64, error) {
	if role.CreatedAt.IsZero() {
		role.CreatedAt = time.Now().UTC()
	}

	stmt, args, err := r.builder.Insert(r.table("roles")).
		Columns("name", "description", "deleted", "created_at").
		Values(role.Name, role.Description, false, role.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert role sql: %w", err)
	}

	var id int64
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&id); err != nil {
		return 0, translate(err, "insert role")
	}
	return id, nil
}

// GetByID retrieves a role, including soft-deleted ones.
func (r *RoleRepository) GetByID(ctx context.Context, id int64) (*domain.Role, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id}, "select role by id")
}

// GetByName retrieves a live role by its unique name.
func (r *RoleRepository) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	return r.getOne(ctx, squirrel.Eq{"name": name, "deleted": false}, "select role by name")
}

func (r *RoleRepository) getOne(ctx context.Context, where squirrel.Eq, op string) (*domain.Role, error) {
	stmt, args, err := r.builder.Select(roleColumns...).
		From(r.table("roles")).
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s sql: %w", op, err)
	}

	role, err := scanRole(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		return nil, translate(err, op)
	}
	return role, nil
}

// List retrieves live roles sorted by name.
func (r *RoleRepository) List(ctx context.Context) ([]domain.Role, error) {
	stmt, args, err := r.builder.Select(roleColumns...).
		From(r.table("roles")).
		Where(squirrel.Eq{"deleted": false}).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list roles sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, translate(err, "query roles")
	}
	defer rows.Close()

	roles := make([]domain.Role, 0)
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, *role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roles: %w", err)
	}
	return roles, nil
}

// Update renames a live role and replaces its description. A name already
// taken by another live role surfaces as repository.ErrConflict.
func (r *RoleRepository) Update(ctx context.Context, role domain.Role) error {
	stmt, args, err := r.builder.Update(r.table("roles")).
		Set("name", role.Name).
		Set("description", role.Description).
		Where(squirrel.Eq{"id": role.ID, "deleted": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update role sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return translate(err, "update role")
	}
	return affectedOrNotFound(tag)
}

// SoftDelete flags the role as deleted.
func (r *RoleRepository) SoftDelete(ctx context.Context, id int64) error {
	stmt, args, err := r.builder.Update(r.table("roles")).
		Set("deleted", true).
		Where(squirrel.Eq{"id": id, "deleted": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build soft delete role sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return translate(err, "soft delete role")
	}
	return affectedOrNotFound(tag)
}

// AttachPermission grants a permission to a role. Existing pairs are left untouched.
func (r *RoleRepository) AttachPermission(ctx context.Context, roleID, permissionID int64) error {
	stmt, args, err := r.builder.Insert(r.table("role_permissions")).
		Columns("role_id", "permission_id").
		Values(roleID, permissionID).
		Suffix("ON CONFLICT DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build attach permission sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return translate(err, "attach permission")
	}
	return nil
}

// DetachPermission removes a permission from a role.
func (r *RoleRepository) DetachPermission(ctx context.Context, roleID, permissionID int64) error {
	stmt, args, err := r.builder.Delete(r.table("role_permissions")).
		Where(squirrel.Eq{"role_id": roleID, "permission_id": permissionID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build detach permission sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return translate(err, "detach permission")
	}
	return affectedOrNotFound(tag)
}

func scanRole(row pgx.Row) (*domain.Role, error) {
	var (
		role        domain.Role
		description sql.NullString
	)
	if err := row.Scan(&role.ID, &role.Name, &description, &role.Deleted, &role.CreatedAt); err != nil {
		return nil, err
	}
	if description.Valid {
		role.Description = &description.String
	}
	return &role, nil
}

var _ port.RoleRepository = (*RoleRepository)(nil)
