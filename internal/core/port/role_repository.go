package port

import (
	"context"

	"github.com/shakibbs/Event-Backend/internal/core/domain"
)

// RoleRepository handles role persistence and role-permission associations.
type RoleRepository interface {
	Create(ctx context.Context, role domain.Role) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Role, error)
	GetByName(ctx context.Context, name string) (*domain.Role, error)
	List(ctx context.Context) ([]domain.Role, error)
	Update(ctx context.Context, role domain.Role) error
	SoftDelete(ctx context.Context, id int64) error
	AttachPermission(ctx context.Context, roleID, permissionID int64) error
	DetachPermission(ctx context.Context, roleID, permissionID int64) error
}
