package models

import "time"

// Role represents a role in the role-based access control (RBAC) system.
// Roles are named bundles of permissions that can be assigned to users.
// Examples include "admin", "manager", and "user" roles.
type Role struct {
	// ID is the unique identifier for the role.
	ID uint `gorm:"primaryKey"`
	// Name is the unique name of the role (e.g., "admin", "manager").
	Name string `gorm:"unique;size:100;not null"`
	// Description provides a human-readable description of the role's purpose.
	Description string `gorm:"size:255"`
	// IsSystem indicates if this is a system role that cannot be deleted or renamed.
	IsSystem bool `gorm:"default:false"`
	// Permissions are the permissions bundled into this role.
	Permissions []Permission `gorm:"many2many:role_permissions"`
	// CreatedAt is the timestamp when the role was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the role was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Role model.
// This overrides GORM's default pluralized table naming.
func (Role) TableName() string {
	return "roles"
}

// PermissionNames returns the names of the role's permissions.
// The Permissions association must be preloaded.
func (r *Role) PermissionNames() []string {
	names := make([]string, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		names = append(names, p.Name)
	}

	return names
}
