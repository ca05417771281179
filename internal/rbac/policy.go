package rbac

import (
	"github.com/GoAccess-Admin/GoAccess-Admin/internal/db/models"
)

// Access policy predicates. Each predicate is a pure check over the acting
// user and an optional target entity; the only I/O is reading the actor's
// permissions from the store. The acting user is always passed explicitly,
// never read from ambient request state.

// CanViewInvitations reports whether the actor may list invitations.
func (s *Service) CanViewInvitations(actorID uint64) (bool, error) {
	return s.HasPermission(actorID, PermInvitationsView)
}

// CanCreateInvitation reports whether the actor may send new invitations.
func (s *Service) CanCreateInvitation(actorID uint64) (bool, error) {
	return s.HasPermission(actorID, PermInvitationsCreate)
}

// CanResendInvitation reports whether the actor may re-dispatch the given
// invitation. Redeemed invitations are immutable history and can never be
// resent. Expired invitations CAN be resent: resending revives them by
// resetting the expiry window (the "invitation nudge" flow).
func (s *Service) CanResendInvitation(actorID uint64, inv *models.Invitation) (bool, error) {
	if inv.IsRegistered() {
		return false, nil
	}

	return s.HasPermission(actorID, PermInvitationsResend)
}

// CanDeleteInvitation reports whether the actor may delete the given
// invitation. Redeemed invitations must be preserved.
func (s *Service) CanDeleteInvitation(actorID uint64, inv *models.Invitation) (bool, error) {
	if inv.IsRegistered() {
		return false, nil
	}

	return s.HasPermission(actorID, PermInvitationsDelete)
}

// CanEditRolesAndPermissions reports whether the actor may change the target
// user's roles and direct permissions. Users can never edit their own access
// level, regardless of permissions held.
func (s *Service) CanEditRolesAndPermissions(actorID, targetID uint64) (bool, error) {
	if actorID == targetID {
		return false, nil
	}

	return s.HasPermission(actorID, PermUserRolesEdit)
}

// CanDeleteUser reports whether the actor may delete the target user.
// Users can never delete the account they are authenticated as.
func (s *Service) CanDeleteUser(actorID, targetID uint64) (bool, error) {
	if actorID == targetID {
		return false, nil
	}

	return s.HasPermission(actorID, PermUsersDelete)
}
