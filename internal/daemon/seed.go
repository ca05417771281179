package daemon

import (
	"errors"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoAccess-Admin/GoAccess-Admin/internal/config"
	"github.com/GoAccess-Admin/GoAccess-Admin/internal/db/models"
	"github.com/GoAccess-Admin/GoAccess-Admin/internal/rbac"
)

// seedRole describes a role created on first start.
type seedRole struct {
	name        string
	description string
	system      bool
	permissions []string
}

func seedRoles() []seedRole {
	return []seedRole{
		{
			name:        "super-admin",
			description: "Full access to every permission",
			system:      true,
			permissions: rbac.AllPermissions(),
		},
		{
			name:        "admin",
			description: "Manage users and invitations",
			system:      true,
			permissions: []string{
				rbac.PermInvitationsView,
				rbac.PermInvitationsCreate,
				rbac.PermInvitationsResend,
				rbac.PermInvitationsDelete,
				rbac.PermUsersView,
				rbac.PermUsersCreate,
				rbac.PermUsersEdit,
				rbac.PermUsersDelete,
				rbac.PermUserRolesEdit,
				rbac.PermRolesView,
			},
		},
		{
			name:        "manager",
			description: "Invite users and view accounts",
			permissions: []string{
				rbac.PermInvitationsView,
				rbac.PermInvitationsCreate,
				rbac.PermInvitationsResend,
				rbac.PermUsersView,
			},
		},
		{
			name:        "user",
			description: "Regular account without management access",
		},
	}
}

// seed creates the permission vocabulary, the default roles, and the initial
// admin account. It is idempotent: existing rows are left alone, missing
// permissions are added, and the super-admin role is re-synced to cover the
// full vocabulary.
func seed(_ *config.Config, db *gorm.DB) {
	permIDs := seedPermissions(db)

	for _, sr := range seedRoles() {
		ensureRole(db, sr, permIDs)
	}

	seedAdminUser(db)
}

func seedPermissions(db *gorm.DB) map[string]uint {
	permIDs := make(map[string]uint)

	for _, name := range rbac.AllPermissions() {
		var perm models.Permission
		err := db.Where(models.WhereNameIs, name).First(&perm).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			perm = models.Permission{Name: name}
			err = db.Create(&perm).Error
		}

		if err != nil {
			log.Error().Err(err).Str("permission", name).Msg("seed permission failed")
			continue
		}

		permIDs[name] = perm.ID
	}

	return permIDs
}

func ensureRole(db *gorm.DB, sr seedRole, permIDs map[string]uint) {
	var role models.Role

	err := db.Where(models.WhereNameIs, sr.name).First(&role).Error

	created := false
	if errors.Is(err, gorm.ErrRecordNotFound) {
		role = models.Role{Name: sr.name, Description: sr.description, IsSystem: sr.system}
		err = db.Create(&role).Error
		created = true
	}

	if err != nil {
		log.Error().Err(err).Str("role", sr.name).Msg("seed role failed")
		return
	}

	// The super-admin role always covers the full vocabulary, so new
	// permissions added in later versions are granted on restart. Other
	// roles get their grants on creation only.
	if !created && sr.name != "super-admin" {
		return
	}

	for _, permName := range sr.permissions {
		permID, ok := permIDs[permName]
		if !ok {
			continue
		}

		var count int64
		db.Model(&models.RolePermission{}).
			Where("role_id = ? AND permission_id = ?", role.ID, permID).
			Count(&count)

		if count == 0 {
			if err := db.Create(&models.RolePermission{RoleID: role.ID, PermissionID: permID}).Error; err != nil {
				log.Error().Err(err).Str("role", sr.name).Str("permission", permName).
					Msg("seed role permission failed")
			}
		}
	}
}

func seedAdminUser(db *gorm.DB) {
	var count int64
	db.Model(&models.User{}).Count(&count)

	if count > 0 {
		return
	}

	admin := models.User{
		Active:   true,
		Username: "admin",
		Email:    "admin@localhost",
		Password: models.HashPassword("changeme"),
	}

	if err := db.Create(&admin).Error; err != nil {
		log.Error().Err(err).Msg("seed admin user failed")
		return
	}

	var superAdmin models.Role
	if err := db.Where(models.WhereNameIs, "super-admin").First(&superAdmin).Error; err != nil {
		log.Error().Err(err).Msg("seed admin role lookup failed")
		return
	}

	if err := db.Create(&models.UserRole{UserID: admin.ID, RoleID: superAdmin.ID}).Error; err != nil {
		log.Error().Err(err).Msg("seed admin role assignment failed")
		return
	}

	log.Warn().Msg("created default admin user 'admin' with password 'changeme', change it immediately")
}
