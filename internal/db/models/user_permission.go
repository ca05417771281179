package models

// UserPermission represents a direct permission grant to a user, outside of any role.
// Direct grants are layered on top of the permissions derived from the user's roles.
type UserPermission struct {
	// UserID is the ID of the user in this grant.
	UserID uint64 `gorm:"primaryKey;column:user_id"`
	// PermissionID is the ID of the permission in this grant.
	PermissionID uint `gorm:"primaryKey;column:permission_id"`
	// User is the associated user (loaded via foreign key).
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	// Permission is the associated permission (loaded via foreign key).
	Permission Permission `gorm:"foreignKey:PermissionID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the database table name for the UserPermission model.
// This overrides GORM's default pluralized table naming.
func (UserPermission) TableName() string {
	return "user_permissions"
}
