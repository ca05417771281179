package models

import "time"

// Permission represents a specific permission in the authorization system.
// Permission names follow the "<verb> <resource>" convention (e.g., "view users",
// "delete invitations") and form a closed vocabulary seeded at startup.
// They are assigned to roles, or granted directly to individual users.
type Permission struct {
	// ID is the unique identifier for the permission.
	ID uint `gorm:"primaryKey"`
	// Name is the unique permission identifier (e.g., "create invitations").
	Name string `gorm:"unique;size:100;not null"`
	// Description provides a human-readable explanation of what this permission grants.
	Description string `gorm:"size:255"`
	// CreatedAt is the timestamp when the permission was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the permission was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Permission model.
// This overrides GORM's default pluralized table naming.
func (Permission) TableName() string {
	return "permissions"
}
