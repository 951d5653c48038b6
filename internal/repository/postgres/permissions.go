package postgres

import (
	"context"
	"database/sql"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/shakibbs/Event-Backend/internal/core/domain"
	"github.com/shakibbs/Event-Backend/internal/core/port"
)

// PermissionRepository implements port.PermissionRepository over PostgreSQL.
type PermissionRepository struct {
	base
}

// NewPermissionRepository constructs a permission repository instance.
func NewPermissionRepository(exec pgExecutor, schema string) *PermissionRepository {
	return &PermissionRepository{base: newBase(exec, schema)}
}

// Create inserts a permission and returns its id.
func (r *PermissionRepository) Create(ctx context.Context, permission domain.Permission) (int64, error) {
	stmt, args, err := r.builder.Insert(r.table("permissions")).
		Columns("name", "description").
		Values(permission.Name, permission.Description).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert permission sql: %w", err)
	}

	var id int64
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&id); err != nil {
		return 0, translate(err, "insert permission")
	}
	return id, nil
}

func (r *PermissionRepository) GetByID(ctx context.Context, id int64) (*domain.Permission, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id}, "select permission by id")
}

func (r *PermissionRepository) GetByName(ctx context.Context, name string) (*domain.Permission, error) {
	return r.getOne(ctx, squirrel.Eq{"name": name}, "select permission by name")
}

func (r *PermissionRepository) getOne(ctx context.Context, where squirrel.Eq, op string) (*domain.Permission, error) {
	stmt, args, err := r.builder.Select("id", "name", "description").
		From(r.table("permissions")).
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s sql: %w", op, err)
	}

	permission, err := scanPermission(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		return nil, translate(err, op)
	}
	return permission, nil
}

// List returns every permission ordered by name.
func (r *PermissionRepository) List(ctx context.Context) ([]domain.Permission, error) {
	stmt, args, err := r.builder.Select("id", "name", "description").
		From(r.table("permissions")).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list permissions sql: %w", err)
	}
	return r.query(ctx, stmt, args)
}

// ListByRole returns the permissions granted to a role via role_permissions.
func (r *PermissionRepository) ListByRole(ctx context.Context, roleID int64) ([]domain.Permission, error) {
	stmt, args, err := r.builder.Select("p.id", "p.name", "p.description").
		From(r.table("permissions") + " p").
		Join(r.table("role_permissions") + " rp ON rp.permission_id = p.id").
		Where(squirrel.Eq{"rp.role_id": roleID}).
		OrderBy("p.name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list role permissions sql: %w", err)
	}
	return r.query(ctx, stmt, args)
}

func (r *PermissionRepository) query(ctx context.Context, stmt string, args []any) ([]domain.Permission, error) {
	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, translate(err, "query permissions")
	}
	defer rows.Close()

	permissions := make([]domain.Permission, 0)
	for rows.Next() {
		permission, err := scanPermission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		permissions = append(permissions, *permission)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate permissions: %w", err)
	}
	return permissions, nil
}

func scanPermission(row pgx.Row) (*domain.Permission, error) {
	var (
		permission  domain.Permission
		description sql.NullString
	)
	if err := row.Scan(&permission.ID, &permission.Name, &description); err != nil {
		return nil, err
	}
	permission.Description = description.String
	return &permission, nil
}

var _ port.PermissionRepository = (*PermissionRepository)(nil)
