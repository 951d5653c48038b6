package memory

import (
	"context"
	"sort"

	"github.com/shakibbs/Event-Backend/internal/core/domain"
	"github.com/shakibbs/Event-Backend/internal/repository"
)

// PermissionRepository stores permissions. Names are unique.
type PermissionRepository struct{ s *store }

func (r *PermissionRepository) Create(_ context.Context, perm domain.Permission) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.permissions {
		if p.Name == perm.Name {
			return 0, repository.ErrConflict
		}
	}
	perm.ID = r.s.id()
	r.s.permissions[perm.ID] = perm
	return perm.ID, nil
}

func (r *PermissionRepository) GetByID(_ context.Context, id int64) (*domain.Permission, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.permissions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *PermissionRepository) GetByName(_ context.Context, name string) (*domain.Permission, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.permissions {
		if p.Name == name {
			found := p
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *PermissionRepository) List(_ context.Context) ([]domain.Permission, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.Permission, 0, len(r.s.permissions))
	for _, p := range r.s.permissions {
		out = append(out, p)
	}
	sortPermissions(out)
	return out, nil
}

// ListByRole returns the role's grants ordered by name.
func (r *PermissionRepository) ListByRole(_ context.Context, roleID int64) ([]domain.Permission, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.Permission, 0, len(r.s.grants[roleID]))
	for id := range r.s.grants[roleID] {
		out = append(out, r.s.permissions[id])
	}
	sortPermissions(out)
	return out, nil
}

func sortPermissions(perms []domain.Permission) {
	sort.Slice(perms, func(i, j int) bool { return perms[i].Name < perms[j].Name })
}
