package rbac

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/GoAccess-Admin/GoAccess-Admin/internal/db/models"
)

// seedActor creates a user holding the given permissions directly.
func seedActor(t *testing.T, db *gorm.DB, username string, perms ...string) *models.User {
	t.Helper()

	actor := seedUser(t, db, username)
	for _, p := range perms {
		grantDirect(t, db, actor.ID, p)
	}

	return actor
}

func pendingInvitation() *models.Invitation {
	return &models.Invitation{
		Email:     "invitee@example.com",
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func registeredInvitation() *models.Invitation {
	now := time.Now()

	return &models.Invitation{
		Email:        "invitee@example.com",
		ExpiresAt:    now.Add(time.Hour),
		RegisteredAt: &now,
	}
}

func expiredInvitation() *models.Invitation {
	return &models.Invitation{
		Email:     "invitee@example.com",
		ExpiresAt: time.Now().Add(-time.Hour),
	}
}

func TestCanResendInvitation(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)

	actor := seedActor(t, db, "actor", PermInvitationsResend)
	bystander := seedUser(t, db, "bystander")

	t.Run("pending with permission", func(t *testing.T) {
		ok, err := service.CanResendInvitation(actor.ID, pendingInvitation())
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("expired with permission", func(t *testing.T) {
		// Resending an expired invitation revives it.
		ok, err := service.CanResendInvitation(actor.ID, expiredInvitation())
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("registered is never resendable", func(t *testing.T) {
		ok, err := service.CanResendInvitation(actor.ID, registeredInvitation())
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("without permission", func(t *testing.T) {
		ok, err := service.CanResendInvitation(bystander.ID, pendingInvitation())
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestCanDeleteInvitation(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)

	actor := seedActor(t, db, "actor", PermInvitationsDelete)

	ok, err := service.CanDeleteInvitation(actor.ID, pendingInvitation())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = service.CanDeleteInvitation(actor.ID, expiredInvitation())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = service.CanDeleteInvitation(actor.ID, registeredInvitation())
	require.NoError(t, err)
	assert.False(t, ok, "redeemed invitations are immutable history")
}

func TestCanEditRolesAndPermissions(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)

	actor := seedActor(t, db, "actor", PermUserRolesEdit)
	target := seedUser(t, db, "target")

	t.Run("other user with permission", func(t *testing.T) {
		ok, err := service.CanEditRolesAndPermissions(actor.ID, target.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("self edit is always refused", func(t *testing.T) {
		ok, err := service.CanEditRolesAndPermissions(actor.ID, actor.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("without permission", func(t *testing.T) {
		ok, err := service.CanEditRolesAndPermissions(target.ID, actor.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestCanDeleteUser(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)

	actor := seedActor(t, db, "actor", PermUsersDelete)
	target := seedUser(t, db, "target")

	ok, err := service.CanDeleteUser(actor.ID, target.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = service.CanDeleteUser(actor.ID, actor.ID)
	require.NoError(t, err)
	assert.False(t, ok, "self deletion is always refused")
}

func TestCanViewAndCreateInvitations(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)

	actor := seedActor(t, db, "actor", PermInvitationsView)

	ok, err := service.CanViewInvitations(actor.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = service.CanCreateInvitation(actor.ID)
	require.NoError(t, err)
	assert.False(t, ok, "viewing does not imply creating")
}
