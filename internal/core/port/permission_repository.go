package port

import (
	"context"

	"github.com/shakibbs/Event-Backend/internal/core/domain"
)

// PermissionRepository manages permission storage.
type PermissionRepository interface {
	Create(ctx context.Context, permission domain.Permission) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Permission, error)
	GetByName(ctx context.Context, name string) (*domain.Permission, error)
	List(ctx context.Context) ([]domain.Permission, error)
	ListByRole(ctx context.Context, roleID int64) ([]domain.Permission, error)
}
