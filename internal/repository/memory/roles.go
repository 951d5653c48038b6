package memory

import (
	"context"
	"sort"

	"github.com/shakibbs/Event-Backend/internal/core/domain"
	"github.com/shakibbs/Event-Backend/internal/repository"
)

// RoleRepository stores roles and their permission grants.
type RoleRepository struct{ s *store }

func (r *RoleRepository) Create(_ context.Context, role domain.Role) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.roles {
		if !existing.Deleted && existing.Name == role.Name {
			return 0, repository.ErrConflict
		}
	}
	role.ID = r.s.id()
	role.Deleted = false
	role.CreatedAt = r.s.now()
	r.s.roles[role.ID] = role
	return role.ID, nil
}

// GetByID returns the role even when soft-deleted.
func (r *RoleRepository) GetByID(_ context.Context, id int64) (*domain.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	role, ok := r.s.roles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &role, nil
}

func (r *RoleRepository) GetByName(_ context.Context, name string) (*domain.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, role := range r.s.roles {
		if !role.Deleted && role.Name == name {
			found := role
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *RoleRepository) List(_ context.Context) ([]domain.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.Role, 0, len(r.s.roles))
	for _, role := range r.s.roles {
		if !role.Deleted {
			out = append(out, role)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Update rejects names held by another live role.
func (r *RoleRepository) Update(_ context.Context, role domain.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.roles[role.ID]
	if !ok || current.Deleted {
		return repository.ErrNotFound
	}
	for id, existing := range r.s.roles {
		if id != role.ID && !existing.Deleted && existing.Name == role.Name {
			return repository.ErrConflict
		}
	}
	current.Name = role.Name
	current.Description = role.Description
	r.s.roles[role.ID] = current
	return nil
}

func (r *RoleRepository) SoftDelete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	role, ok := r.s.roles[id]
	if !ok || role.Deleted {
		return repository.ErrNotFound
	}
	role.Deleted = true
	r.s.roles[id] = role
	return nil
}

// AttachPermission is idempotent.
func (r *RoleRepository) AttachPermission(_ context.Context, roleID, permissionID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.roles[roleID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := r.s.permissions[permissionID]; !ok {
		return repository.ErrNotFound
	}
	if r.s.grants[roleID] == nil {
		r.s.grants[roleID] = map[int64]struct{}{}
	}
	r.s.grants[roleID][permissionID] = struct{}{}
	return nil
}

func (r *RoleRepository) DetachPermission(_ context.Context, roleID, permissionID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.grants[roleID][permissionID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.grants[roleID], permissionID)
	return nil
}
