package rbac

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/GoAccess-Admin/GoAccess-Admin/internal/db/models"
)

// Service provides authorization functionality on top of the permission store.
// A user's effective permission set is the union of the permissions of all
// assigned roles and the user's direct permission grants.
type Service struct {
	db *gorm.DB
}

// NewService creates a new rbac service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// HasPermission checks if a user has a specific permission.
// This works by checking the permissions of the user's assigned roles,
// and falling back to the user's direct permission grants.
func (s *Service) HasPermission(userID uint64, permission string) (bool, error) {
	var count int64

	// Check permissions derived from assigned roles
	err := s.db.Table("permissions").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN user_roles ON user_roles.role_id = role_permissions.role_id").
		Where("user_roles.user_id = ? AND permissions.name = ?", userID, permission).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check role permission: %w", err)
	}

	if count > 0 {
		return true, nil
	}

	// Check direct permission grants
	err = s.db.Table("permissions").
		Joins("JOIN user_permissions ON user_permissions.permission_id = permissions.id").
		Where("user_permissions.user_id = ? AND permissions.name = ?", userID, permission).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check direct permission: %w", err)
	}

	return count > 0, nil
}

// HasRole checks if a user has the named role assigned.
func (s *Service) HasRole(userID uint64, roleName string) (bool, error) {
	var count int64

	err := s.db.Table("roles").
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ? AND roles.name = ?", userID, roleName).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check role: %w", err)
	}

	return count > 0, nil
}

// HasAnyPermission checks if a user has at least one of the given permissions.
func (s *Service) HasAnyPermission(userID uint64, permissions []string) (bool, error) {
	if len(permissions) == 0 {
		return false, nil
	}

	for _, perm := range permissions {
		has, err := s.HasPermission(userID, perm)
		if err != nil {
			return false, err
		}

		if has {
			return true, nil
		}
	}

	return false, nil
}

// GetUserPermissions retrieves a user's effective permission set
// (role-derived and direct grants, deduplicated).
func (s *Service) GetUserPermissions(userID uint64) ([]string, error) {
	var rolePermissions []string

	err := s.db.Table("permissions").
		Select("DISTINCT permissions.name").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN user_roles ON user_roles.role_id = role_permissions.role_id").
		Where("user_roles.user_id = ?", userID).
		Pluck("permissions.name", &rolePermissions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get role permissions: %w", err)
	}

	var directPermissions []string

	err = s.db.Table("permissions").
		Select("DISTINCT permissions.name").
		Joins("JOIN user_permissions ON user_permissions.permission_id = permissions.id").
		Where("user_permissions.user_id = ?", userID).
		Pluck("permissions.name", &directPermissions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get direct permissions: %w", err)
	}

	// Merge and deduplicate
	permMap := make(map[string]bool)
	for _, perm := range rolePermissions {
		permMap[perm] = true
	}

	for _, perm := range directPermissions {
		permMap[perm] = true
	}

	result := make([]string, 0, len(permMap))
	for perm := range permMap {
		result = append(result, perm)
	}

	return result, nil
}

// ValidateRoleNames checks that every named role exists.
func (s *Service) ValidateRoleNames(names []string) error {
	_, err := resolveRoleIDs(s.db, names)

	return err
}

// resolveRoleIDs maps role names to role IDs, rejecting unknown names.
func resolveRoleIDs(tx *gorm.DB, names []string) ([]uint, error) {
	if len(names) == 0 {
		return nil, nil
	}

	var roles []models.Role
	if err := tx.Where("name IN ?", names).Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve roles: %w", err)
	}

	if len(roles) != len(names) {
		return nil, ErrUnknownRole
	}

	ids := make([]uint, 0, len(roles))
	for _, r := range roles {
		ids = append(ids, r.ID)
	}

	return ids, nil
}

// resolvePermissionIDs maps permission names to IDs, rejecting names outside
// the vocabulary before touching storage.
func resolvePermissionIDs(tx *gorm.DB, names []string) ([]uint, error) {
	if err := ValidatePermissionNames(names); err != nil {
		return nil, err
	}

	if len(names) == 0 {
		return nil, nil
	}

	var perms []models.Permission
	if err := tx.Where("name IN ?", names).Find(&perms).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve permissions: %w", err)
	}

	if len(perms) != len(names) {
		return nil, ErrUnknownPermission
	}

	ids := make([]uint, 0, len(perms))
	for _, p := range perms {
		ids = append(ids, p.ID)
	}

	return ids, nil
}

// SyncRolePermissions replaces a role's permission set with exactly the named
// permissions. Sync semantics: anything not listed is removed, anything newly
// listed is added. Runs in a single transaction.
func (s *Service) SyncRolePermissions(roleID uint, permissionNames []string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		permIDs, err := resolvePermissionIDs(tx, permissionNames)
		if err != nil {
			return err
		}

		if err := tx.Where("role_id = ?", roleID).
			Delete(&models.RolePermission{}).Error; err != nil {
			return fmt.Errorf("failed to clear role permissions: %w", err)
		}

		for _, permID := range permIDs {
			if err := tx.Create(&models.RolePermission{
				RoleID:       roleID,
				PermissionID: permID,
			}).Error; err != nil {
				return fmt.Errorf("failed to add role permission: %w", err)
			}
		}

		return nil
	})
}

// SyncUserRoles replaces a user's role set with exactly the named roles.
func (s *Service) SyncUserRoles(userID uint64, roleNames []string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		roleIDs, err := resolveRoleIDs(tx, roleNames)
		if err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", userID).
			Delete(&models.UserRole{}).Error; err != nil {
			return fmt.Errorf("failed to clear user roles: %w", err)
		}

		for _, roleID := range roleIDs {
			if err := tx.Create(&models.UserRole{
				UserID: userID,
				RoleID: roleID,
			}).Error; err != nil {
				return fmt.Errorf("failed to add user role: %w", err)
			}
		}

		return nil
	})
}

// SyncUserPermissions replaces a user's direct permission grants with exactly
// the named permissions.
func (s *Service) SyncUserPermissions(userID uint64, permissionNames []string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		permIDs, err := resolvePermissionIDs(tx, permissionNames)
		if err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", userID).
			Delete(&models.UserPermission{}).Error; err != nil {
			return fmt.Errorf("failed to clear user permissions: %w", err)
		}

		for _, permID := range permIDs {
			if err := tx.Create(&models.UserPermission{
				UserID:       userID,
				PermissionID: permID,
			}).Error; err != nil {
				return fmt.Errorf("failed to add user permission: %w", err)
			}
		}

		return nil
	})
}
