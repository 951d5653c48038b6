package postgres

// Repositories groups the PostgreSQL repository implementations.
type Repositories struct {
	Users       *UserRepository
	Roles       *RoleRepository
	Permissions *PermissionRepository
	Events      *EventRepository
}

// NewRepositories wires all repositories against the executor and schema.
func NewRepositories(exec pgExecutor, schema string) *Repositories {
	return &Repositories{
		Users:       NewUserRepository(exec, schema),
		Roles:       NewRoleRepository(exec, schema),
		Permissions: NewPermissionRepository(exec, schema),
		Events:      NewEventRepository(exec, schema),
	}
}
