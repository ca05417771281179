package role

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/GoAccess-Admin/GoAccess-Admin/internal/db/models"
	"github.com/GoAccess-Admin/GoAccess-Admin/internal/rbac"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "failed to create test database")

	// Migrate the schema
	err = db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
		&models.UserRole{},
	)
	require.NoError(t, err, "failed to migrate test database")

	return db
}

// seedPermissions creates the named permissions.
func seedPermissions(t *testing.T, db *gorm.DB, names ...string) {
	t.Helper()

	for _, name := range names {
		require.NoError(t, db.Create(&models.Permission{Name: name}).Error)
	}
}

// assignUser gives a user the role, making the role undeletable.
func assignUser(t *testing.T, db *gorm.DB, roleID uint) {
	t.Helper()

	user := &models.User{Username: "holder", Email: "holder@example.com"}
	require.NoError(t, db.Create(user).Error)
	require.NoError(t, db.Create(&models.UserRole{UserID: user.ID, RoleID: roleID}).Error)
}

func TestCreate(t *testing.T) {
	t.Run("nil database", func(t *testing.T) {
		_, err := Create(nil, "editor", "", nil)
		require.ErrorIs(t, err, ErrDBNil)
	})

	t.Run("empty name", func(t *testing.T) {
		db := setupTestDB(t)

		_, err := Create(db, "", "", nil)
		require.ErrorIs(t, err, ErrNameEmpty)
	})

	t.Run("successful create with permissions", func(t *testing.T) {
		db := setupTestDB(t)
		seedPermissions(t, db, rbac.PermUsersView, rbac.PermUsersEdit)

		role, err := Create(db, "editor", "Edits users", []string{rbac.PermUsersView, rbac.PermUsersEdit})
		require.NoError(t, err)

		assert.Equal(t, "editor", role.Name)
		assert.False(t, role.IsSystem)
		assert.ElementsMatch(t, []string{rbac.PermUsersView, rbac.PermUsersEdit}, role.PermissionNames())
	})

	t.Run("unknown permission is rejected", func(t *testing.T) {
		db := setupTestDB(t)

		_, err := Create(db, "editor", "", []string{"no such permission"})
		require.ErrorIs(t, err, rbac.ErrUnknownPermission)

		var count int64
		db.Model(&models.Role{}).Count(&count)
		assert.Zero(t, count)
	})

	t.Run("duplicate name", func(t *testing.T) {
		db := setupTestDB(t)

		_, err := Create(db, "editor", "", nil)
		require.NoError(t, err)

		_, err = Create(db, "editor", "", nil)
		require.ErrorIs(t, err, ErrNameTaken)
	})
}

func TestUpdate(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		db := setupTestDB(t)

		_, err := Update(db, 42, "editor", "", nil)
		require.ErrorIs(t, err, rbac.ErrRoleNotFound)
	})

	t.Run("rename and replace permissions", func(t *testing.T) {
		db := setupTestDB(t)
		seedPermissions(t, db, rbac.PermUsersView, rbac.PermUsersEdit)

		role, err := Create(db, "editor", "", []string{rbac.PermUsersView})
		require.NoError(t, err)

		updated, err := Update(db, role.ID, "reviewer", "Reviews users", []string{rbac.PermUsersEdit})
		require.NoError(t, err)

		assert.Equal(t, "reviewer", updated.Name)
		// Replacement, not merge.
		assert.ElementsMatch(t, []string{rbac.PermUsersEdit}, updated.PermissionNames())
	})

	t.Run("system role rename is refused", func(t *testing.T) {
		db := setupTestDB(t)

		system := &models.Role{Name: "super-admin", IsSystem: true}
		require.NoError(t, db.Create(system).Error)

		_, err := Update(db, system.ID, "renamed", "", nil)
		require.ErrorIs(t, err, rbac.ErrSystemRole)
	})

	t.Run("system role permissions may change", func(t *testing.T) {
		db := setupTestDB(t)
		seedPermissions(t, db, rbac.PermUsersView)

		system := &models.Role{Name: "admin", IsSystem: true}
		require.NoError(t, db.Create(system).Error)

		updated, err := Update(db, system.ID, "admin", "", []string{rbac.PermUsersView})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{rbac.PermUsersView}, updated.PermissionNames())
	})

	t.Run("rename collision", func(t *testing.T) {
		db := setupTestDB(t)

		_, err := Create(db, "editor", "", nil)
		require.NoError(t, err)

		other, err := Create(db, "reviewer", "", nil)
		require.NoError(t, err)

		_, err = Update(db, other.ID, "editor", "", nil)
		require.ErrorIs(t, err, ErrNameTaken)
	})
}

func TestDuplicate(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		db := setupTestDB(t)

		_, err := Duplicate(db, 42)
		require.ErrorIs(t, err, rbac.ErrRoleNotFound)
	})

	t.Run("copies permissions but not assignments", func(t *testing.T) {
		db := setupTestDB(t)
		seedPermissions(t, db, rbac.PermUsersView)

		source, err := Create(db, "editor", "Edits users", []string{rbac.PermUsersView})
		require.NoError(t, err)

		assignUser(t, db, source.ID)

		copied, err := Duplicate(db, source.ID)
		require.NoError(t, err)

		assert.Equal(t, "editor (copy)", copied.Name)
		assert.Equal(t, source.Description, copied.Description)
		assert.ElementsMatch(t, source.PermissionNames(), copied.PermissionNames())

		count, err := AssignedUserCount(db, copied.ID)
		require.NoError(t, err)
		assert.Zero(t, count, "assignments must not be copied")
	})

	t.Run("name collision counts up", func(t *testing.T) {
		db := setupTestDB(t)

		source, err := Create(db, "editor", "", nil)
		require.NoError(t, err)

		first, err := Duplicate(db, source.ID)
		require.NoError(t, err)
		assert.Equal(t, "editor (copy)", first.Name)

		second, err := Duplicate(db, source.ID)
		require.NoError(t, err)
		assert.Equal(t, "editor (copy 2)", second.Name)
	})

	t.Run("duplicate of a system role is not system", func(t *testing.T) {
		db := setupTestDB(t)

		system := &models.Role{Name: "super-admin", IsSystem: true}
		require.NoError(t, db.Create(system).Error)

		copied, err := Duplicate(db, system.ID)
		require.NoError(t, err)
		assert.False(t, copied.IsSystem)
	})
}

func TestDelete(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		db := setupTestDB(t)
		require.ErrorIs(t, Delete(db, 42), rbac.ErrRoleNotFound)
	})

	t.Run("successful delete removes permission mappings", func(t *testing.T) {
		db := setupTestDB(t)
		seedPermissions(t, db, rbac.PermUsersView)

		role, err := Create(db, "editor", "", []string{rbac.PermUsersView})
		require.NoError(t, err)

		require.NoError(t, Delete(db, role.ID))

		var count int64
		db.Model(&models.RolePermission{}).Where("role_id = ?", role.ID).Count(&count)
		assert.Zero(t, count)
	})

	t.Run("system role is refused", func(t *testing.T) {
		db := setupTestDB(t)

		system := &models.Role{Name: "super-admin", IsSystem: true}
		require.NoError(t, db.Create(system).Error)

		require.ErrorIs(t, Delete(db, system.ID), rbac.ErrSystemRole)
	})

	t.Run("assigned role is refused", func(t *testing.T) {
		db := setupTestDB(t)

		role, err := Create(db, "editor", "", nil)
		require.NoError(t, err)

		assignUser(t, db, role.ID)

		require.ErrorIs(t, Delete(db, role.ID), ErrRoleAssigned)
	})
}

func TestBulkDelete(t *testing.T) {
	db := setupTestDB(t)

	deletable1, err := Create(db, "temp-a", "", nil)
	require.NoError(t, err)

	deletable2, err := Create(db, "temp-b", "", nil)
	require.NoError(t, err)

	system := &models.Role{Name: "admin", IsSystem: true}
	require.NoError(t, db.Create(system).Error)

	assigned, err := Create(db, "assigned", "", nil)
	require.NoError(t, err)
	assignUser(t, db, assigned.ID)

	result, err := BulkDelete(db, []uint{
		deletable1.ID,
		deletable2.ID,
		system.ID,
		assigned.ID,
		9999, // missing
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Deleted)
	assert.Equal(t, 3, result.Skipped)
	// Missing ids are skipped silently; guard violations carry a reason.
	assert.Len(t, result.Reasons, 2)

	_, err = GetByID(db, deletable1.ID)
	require.ErrorIs(t, err, rbac.ErrRoleNotFound)

	_, err = GetByID(db, system.ID)
	require.NoError(t, err)

	_, err = GetByID(db, assigned.ID)
	require.NoError(t, err)
}

func TestGetByName(t *testing.T) {
	db := setupTestDB(t)

	_, err := Create(db, "editor", "", nil)
	require.NoError(t, err)

	role, err := GetByName(db, "editor")
	require.NoError(t, err)
	assert.Equal(t, "editor", role.Name)

	_, err = GetByName(db, "missing")
	require.ErrorIs(t, err, rbac.ErrRoleNotFound)
}
