package port

import (
	"context"

	"github.com/shakibbs/Event-Backend/internal/core/domain"
)

// UserRepository exposes persistence behavior for users.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateRole(ctx context.Context, id int64, roleID int64) error
	TouchLastLogin(ctx context.Context, id int64) error
	SetStatus(ctx context.Context, id int64, status domain.UserStatus) error
}
