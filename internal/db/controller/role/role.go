// Package role provides role administration: creation, rename and
// permission sync, duplication, and (bulk) deletion with safety checks.
package role

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/GoAccess-Admin/GoAccess-Admin/internal/db/models"
	"github.com/GoAccess-Admin/GoAccess-Admin/internal/rbac"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrNameEmpty is returned when a role name is empty.
	ErrNameEmpty = errors.New("role name cannot be empty")
	// ErrNameTaken is returned when a role with the same name already exists.
	ErrNameTaken = errors.New("a role with this name already exists")
	// ErrRoleAssigned is returned when deleting a role that users still hold.
	ErrRoleAssigned = errors.New("role is assigned to one or more users")
)

// BulkResult reports the outcome of a bulk role deletion. Mixed batches are
// expected: eligible roles are deleted, the rest are skipped with a reason,
// and the batch as a whole never hard-fails.
type BulkResult struct {
	Deleted int
	Skipped int
	Reasons []string
}

// Create creates a role holding exactly the named permissions.
// The name must be unique and every permission name must be part of the
// closed vocabulary.
func Create(db *gorm.DB, name, description string, permissionNames []string) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if name == "" {
		return nil, ErrNameEmpty
	}

	if err := rbac.ValidatePermissionNames(permissionNames); err != nil {
		return nil, err
	}

	role := &models.Role{Name: name, Description: description}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(role).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrNameTaken
			}

			return err
		}

		return syncPermissions(tx, role.ID, permissionNames)
	})
	if err != nil {
		return nil, err
	}

	return GetByID(db, role.ID)
}

// Update renames the role if the name changed and replaces its permission set
// with exactly the named permissions. Sync, not merge: omitting a currently
// held permission revokes it. System roles keep their name; renaming one is
// refused regardless of the caller's permissions.
func Update(db *gorm.DB, id uint, newName, description string, permissionNames []string) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if newName == "" {
		return nil, ErrNameEmpty
	}

	if err := rbac.ValidatePermissionNames(permissionNames); err != nil {
		return nil, err
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var role models.Role
		if err := tx.First(&role, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return rbac.ErrRoleNotFound
			}

			return err
		}

		if role.Name != newName {
			if role.IsSystem {
				return rbac.ErrSystemRole
			}

			role.Name = newName
		}

		role.Description = description

		if err := tx.Save(&role).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrNameTaken
			}

			return err
		}

		return syncPermissions(tx, role.ID, permissionNames)
	})
	if err != nil {
		return nil, err
	}

	return GetByID(db, id)
}

// Duplicate creates a copy of the role named "<original> (copy)", carrying the
// full permission set but none of the user assignments. On a name collision
// the suffix counts up: "(copy 2)", "(copy 3)", and so on.
func Duplicate(db *gorm.DB, id uint) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var copied *models.Role

	err := db.Transaction(func(tx *gorm.DB) error {
		source, err := getByID(tx, id)
		if err != nil {
			return err
		}

		name, err := copyName(tx, source.Name)
		if err != nil {
			return err
		}

		copied = &models.Role{Name: name, Description: source.Description}
		if err := tx.Create(copied).Error; err != nil {
			return err
		}

		for _, p := range source.Permissions {
			if err := tx.Create(&models.RolePermission{
				RoleID:       copied.ID,
				PermissionID: p.ID,
			}).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return GetByID(db, copied.ID)
}

// Delete removes a role. System roles and roles still assigned to users are
// refused.
func Delete(db *gorm.DB, id uint) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		return deleteOne(tx, id)
	})
}

// BulkDelete removes every eligible role in the batch and reports counts.
// Skip reasons: the role is a system role, the role still has users assigned,
// or the id does not exist. A mixed batch is partial success, not an error.
func BulkDelete(db *gorm.DB, ids []uint) (BulkResult, error) {
	var result BulkResult

	if db == nil {
		return result, ErrDBNil
	}

	for _, id := range ids {
		err := db.Transaction(func(tx *gorm.DB) error {
			return deleteOne(tx, id)
		})

		switch {
		case err == nil:
			result.Deleted++
		case errors.Is(err, rbac.ErrRoleNotFound):
			result.Skipped++
		case errors.Is(err, rbac.ErrSystemRole), errors.Is(err, ErrRoleAssigned):
			result.Skipped++
			result.Reasons = append(result.Reasons, fmt.Sprintf("role %d: %v", id, err))
		default:
			return result, err
		}
	}

	return result, nil
}

// GetByID retrieves a role with its permissions preloaded.
func GetByID(db *gorm.DB, id uint) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	return getByID(db, id)
}

// GetByName retrieves a role by its unique name.
func GetByName(db *gorm.DB, name string) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var role models.Role
	err := db.Preload("Permissions").Where(models.WhereNameIs, name).First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, rbac.ErrRoleNotFound
		}

		return nil, err
	}

	return &role, nil
}

// GetAll retrieves all roles ordered by name, permissions preloaded.
func GetAll(db *gorm.DB) ([]models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var roles []models.Role
	if err := db.Preload("Permissions").Order("name ASC").Find(&roles).Error; err != nil {
		return nil, err
	}

	return roles, nil
}

// AssignedUserCount returns how many users currently hold the role.
func AssignedUserCount(db *gorm.DB, id uint) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	var count int64
	err := db.Model(&models.UserRole{}).Where("role_id = ?", id).Count(&count).Error

	return count, err
}

func getByID(tx *gorm.DB, id uint) (*models.Role, error) {
	var role models.Role
	if err := tx.Preload("Permissions").First(&role, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, rbac.ErrRoleNotFound
		}

		return nil, err
	}

	return &role, nil
}

// deleteOne enforces the deletion guards and removes a single role.
func deleteOne(tx *gorm.DB, id uint) error {
	var role models.Role
	if err := tx.First(&role, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return rbac.ErrRoleNotFound
		}

		return err
	}

	if role.IsSystem {
		return rbac.ErrSystemRole
	}

	var assigned int64
	if err := tx.Model(&models.UserRole{}).
		Where("role_id = ?", id).
		Count(&assigned).Error; err != nil {
		return err
	}

	if assigned > 0 {
		return ErrRoleAssigned
	}

	if err := tx.Where("role_id = ?", id).
		Delete(&models.RolePermission{}).Error; err != nil {
		return err
	}

	return tx.Delete(&models.Role{}, id).Error
}

// copyName finds the first free "<name> (copy)" variant.
func copyName(tx *gorm.DB, base string) (string, error) {
	name := base + " (copy)"

	for n := 2; ; n++ {
		var count int64
		if err := tx.Model(&models.Role{}).
			Where(models.WhereNameIs, name).
			Count(&count).Error; err != nil {
			return "", err
		}

		if count == 0 {
			return name, nil
		}

		name = fmt.Sprintf("%s (copy %d)", base, n)
	}
}

// syncPermissions replaces the role's permission set inside the caller's
// transaction. Names were validated against the vocabulary upstream; here
// they are resolved against the seeded rows.
func syncPermissions(tx *gorm.DB, roleID uint, names []string) error {
	if err := tx.Where("role_id = ?", roleID).
		Delete(&models.RolePermission{}).Error; err != nil {
		return err
	}

	if len(names) == 0 {
		return nil
	}

	var perms []models.Permission
	if err := tx.Where("name IN ?", names).Find(&perms).Error; err != nil {
		return err
	}

	if len(perms) != len(names) {
		return rbac.ErrUnknownPermission
	}

	for _, p := range perms {
		if err := tx.Create(&models.RolePermission{
			RoleID:       roleID,
			PermissionID: p.ID,
		}).Error; err != nil {
			return err
		}
	}

	return nil
}
