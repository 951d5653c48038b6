package memory

import (
	"context"
	"strings"

	"github.com/shakibbs/Event-Backend/internal/core/domain"
	"github.com/shakibbs/Event-Backend/internal/repository"
)

// UserRepository stores users keyed by id. Emails are unique, case-insensitively.
type UserRepository struct{ s *store }

func (r *UserRepository) Create(_ context.Context, user domain.User) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return 0, repository.ErrConflict
		}
	}
	if user.Status == "" {
		user.Status = domain.UserStatusActive
	}
	user.ID = r.s.id()
	user.CreatedAt = r.s.now()
	user.UpdatedAt = user.CreatedAt
	r.s.users[user.ID] = user
	return user.ID, nil
}

func (r *UserRepository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) UpdateRole(_ context.Context, id, roleID int64) error {
	return r.update(id, func(u *domain.User) {
		u.RoleID = roleID
	})
}

func (r *UserRepository) TouchLastLogin(_ context.Context, id int64) error {
	now := r.s.now()
	return r.update(id, func(u *domain.User) {
		u.LastLogin = &now
	})
}

// SetStatus changes the account state, e.g. to suspend a user.
func (r *UserRepository) SetStatus(_ context.Context, id int64, status domain.UserStatus) error {
	return r.update(id, func(u *domain.User) {
		u.Status = status
	})
}

func (r *UserRepository) update(id int64, mutate func(*domain.User)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	mutate(&u)
	u.UpdatedAt = r.s.now()
	r.s.users[id] = u
	return nil
}
