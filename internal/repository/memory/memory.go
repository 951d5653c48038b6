// Package memory holds map-backed repositories for local development and tests.
// Every repository of one Repositories value shares a single store, so role
// grants, users and events stay consistent with one another.
package memory

import (
	"sync"
	"time"

	"github.com/shakibbs/Event-Backend/internal/core/domain"
	"github.com/shakibbs/Event-Backend/internal/core/port"
)

type store struct {
	mu          sync.RWMutex
	nextID      int64
	now         func() time.Time
	users       map[int64]domain.User
	roles       map[int64]domain.Role
	permissions map[int64]domain.Permission
	grants      map[int64]map[int64]struct{}
	events      map[int64]domain.Event
}

func (s *store) id() int64 {
	s.nextID++
	return s.nextID
}

// Repositories groups the in-memory repository implementations.
type Repositories struct {
	Users       *UserRepository
	Roles       *RoleRepository
	Permissions *PermissionRepository
	Events      *EventRepository
}

var (
	_ port.UserRepository       = (*UserRepository)(nil)
	_ port.RoleRepository       = (*RoleRepository)(nil)
	_ port.PermissionRepository = (*PermissionRepository)(nil)
	_ port.EventRepository      = (*EventRepository)(nil)
)

// NewRepositories creates an empty store and the repositories over it.
func NewRepositories() *Repositories {
	s := &store{
		now:         func() time.Time { return time.Now().UTC() },
		users:       map[int64]domain.User{},
		roles:       map[int64]domain.Role{},
		permissions: map[int64]domain.Permission{},
		grants:      map[int64]map[int64]struct{}{},
		events:      map[int64]domain.Event{},
	}
	return &Repositories{
		Users:       &UserRepository{s},
		Roles:       &RoleRepository{s},
		Permissions: &PermissionRepository{s},
		Events:      &EventRepository{s},
	}
}
