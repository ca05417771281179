package daemon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/GoAccess-Admin/GoAccess-Admin/internal/db/models"
	"github.com/GoAccess-Admin/GoAccess-Admin/internal/rbac"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
		&models.UserRole{},
		&models.UserPermission{},
		&models.Invitation{},
	))

	return db
}

func TestSeed_BootstrapAdminCanLogIn(t *testing.T) {
	db := setupTestDB(t)

	seed(nil, db)

	var admin models.User
	require.NoError(t, db.Where("username = ?", "admin").First(&admin).Error)

	// an inactive bootstrap account would lock everyone out of a fresh install
	assert.True(t, admin.Active)
	assert.True(t, admin.VerifyPassword("changeme"))

	service := rbac.NewService(db)

	hasRole, err := service.HasRole(admin.ID, "super-admin")
	require.NoError(t, err)
	assert.True(t, hasRole)

	for _, perm := range rbac.AllPermissions() {
		granted, err := service.HasPermission(admin.ID, perm)
		require.NoError(t, err)
		assert.True(t, granted, "admin should hold %q", perm)
	}
}

func TestSeed_Idempotent(t *testing.T) {
	db := setupTestDB(t)

	seed(nil, db)
	seed(nil, db)

	var userCount int64
	db.Model(&models.User{}).Count(&userCount)
	assert.EqualValues(t, 1, userCount)

	var permCount int64
	db.Model(&models.Permission{}).Count(&permCount)
	assert.EqualValues(t, len(rbac.AllPermissions()), permCount)

	var superAdmin models.Role
	require.NoError(t, db.Where(models.WhereNameIs, "super-admin").First(&superAdmin).Error)

	var grantCount int64
	db.Model(&models.RolePermission{}).Where("role_id = ?", superAdmin.ID).Count(&grantCount)
	assert.EqualValues(t, len(rbac.AllPermissions()), grantCount)
}

func TestSeed_SkipsAdminWhenUsersExist(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.Create(&models.User{
		Active:   true,
		Username: "existing",
		Email:    "existing@example.com",
	}).Error)

	seed(nil, db)

	var count int64
	db.Model(&models.User{}).Where("username = ?", "admin").Count(&count)
	assert.EqualValues(t, 0, count)
}
