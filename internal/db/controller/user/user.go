// Package user provides user administration: role/permission sync onto a
// user, and (bulk) deletion with self-protection.
package user

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
	// ErrSelfDelete is returned when a user attempts to delete their own account.
	ErrSelfDelete = errors.New("cannot delete the account you are signed in as")
)

// BulkResult reports the outcome of a bulk user deletion.
type BulkResult struct {
	Deleted int
	Skipped int
	Reasons []string
}

// SyncRolesAndPermissions replaces the target user's role set and direct
// permission set with exactly the named ones. Sync, not merge. Personal
// details (name, email) are untouched. The self-edit guard lives in the
// policy layer, not here.
func SyncRolesAndPermissions(db *gorm.DB, targetID uint64, roleNames, permissionNames []string) error {
	if db == nil {
		return ErrDBNil
	}

	if err := rbac.ValidatePermissionNames(permissionNames); err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var target models.User
		if err := tx.First(&target, targetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return rbac.ErrUserNotFound
			}

			return err
		}

		if err := syncRoles(tx, targetID, roleNames); err != nil {
			return err
		}

		return syncPermissions(tx, targetID, permissionNames)
	})
}

// Delete removes a user account. Deleting the account the actor is
// authenticated as is refused.
func Delete(db *gorm.DB, actorID, targetID uint64) error {
	if db == nil {
		return ErrDBNil
	}

	if actorID == targetID {
		return ErrSelfDelete
	}

	return db.Transaction(func(tx *gorm.DB) error {
		return deleteOne(tx, targetID)
	})
}

// BulkDelete removes every eligible user in the batch and reports counts.
// Skip reasons: the id is the acting user's own account, or the id does not
// exist. A mixed batch is partial success, not an error.
func BulkDelete(db *gorm.DB, actorID uint64, ids []uint64) (BulkResult, error) {
	var result BulkResult

	if db == nil {
		return result, ErrDBNil
	}

	for _, id := range ids {
		if id == actorID {
			result.Skipped++
			result.Reasons = append(result.Reasons, fmt.Sprintf("user %d: %v", id, ErrSelfDelete))

			continue
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			return deleteOne(tx, id)
		})

		switch {
		case err == nil:
			result.Deleted++
		case errors.Is(err, rbac.ErrUserNotFound):
			result.Skipped++
		default:
			return result, err
		}
	}

	return result, nil
}

// GetByID retrieves a user with roles and direct permissions preloaded.
func GetByID(db *gorm.DB, id uint64) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var user models.User
	err := db.Preload("Roles").Preload("Permissions").First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, rbac.ErrUserNotFound
		}

		return nil, err
	}

	return &user, nil
}

// ExistsByEmail reports whether a user account holds the given email.
func ExistsByEmail(db *gorm.DB, email string) (bool, error) {
	if db == nil {
		return false, ErrDBNil
	}

	var count int64
	err := db.Model(&models.User{}).Where(models.WhereEmailIs, email).Count(&count).Error

	return count > 0, err
}

// List retrieves a page of users ordered newest first, optionally filtered by
// a search term over username, email, and names, with the total match count.
func List(db *gorm.DB, page, pageSize int, search string) ([]models.User, int64, error) {
	if db == nil {
		return nil, 0, ErrDBNil
	}

	tx := db.Model(&models.User{})
	if search != "" {
		like := "%" + search + "%"
		tx = tx.Where(
			"username LIKE ? OR email LIKE ? OR first_name LIKE ? OR last_name LIKE ?",
			like, like, like, like,
		)
	}

	var totalCount int64
	if err := tx.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := tx.Preload("Roles").Preload("Permissions").
		Order("id DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}

	return users, totalCount, nil
}

func deleteOne(tx *gorm.DB, id uint64) error {
	var target models.User
	if err := tx.First(&target, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return rbac.ErrUserNotFound
		}

		return err
	}

	if err := tx.Where("user_id = ?", id).Delete(&models.UserRole{}).Error; err != nil {
		return err
	}

	if err := tx.Where("user_id = ?", id).Delete(&models.UserPermission{}).Error; err != nil {
		return err
	}

	return tx.Delete(&models.User{}, id).Error
}

func syncRoles(tx *gorm.DB, userID uint64, names []string) error {
	if err := tx.Where("user_id = ?", userID).Delete(&models.UserRole{}).Error; err != nil {
		return err
	}

	if len(names) == 0 {
		return nil
	}

	var roles []models.Role
	if err := tx.Where("name IN ?", names).Find(&roles).Error; err != nil {
		return err
	}

	if len(roles) != len(names) {
		return rbac.ErrUnknownRole
	}

	for _, r := range roles {
		if err := tx.Create(&models.UserRole{UserID: userID, RoleID: r.ID}).Error; err != nil {
			return err
		}
	}

	return nil
}

func syncPermissions(tx *gorm.DB, userID uint64, names []string) error {
	if err := tx.Where("user_id = ?", userID).Delete(&models.UserPermission{}).Error; err != nil {
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
		if err := tx.Create(&models.UserPermission{UserID: userID, PermissionID: p.ID}).Error; err != nil {
			return err
		}
	}

	return nil
}
