package rbac

// Permission constants define the closed permission vocabulary of the system.
// Names follow the "<verb> <resource>" convention. The vocabulary is seeded
// at startup and every role/permission sync is validated against it; unknown
// names are rejected at the boundary.
const (
	// PermInvitationsView allows viewing the invitation list.
	PermInvitationsView = "view invitations"
	// PermInvitationsCreate allows sending new invitations.
	PermInvitationsCreate = "create invitations"
	// PermInvitationsResend allows re-dispatching an invitation email.
	PermInvitationsResend = "resend invitations"
	// PermInvitationsDelete allows deleting pending or expired invitations.
	PermInvitationsDelete = "delete invitations"

	// PermUsersView allows viewing the user list.
	PermUsersView = "view users"
	// PermUsersCreate allows creating user accounts directly.
	PermUsersCreate = "create users"
	// PermUsersEdit allows editing user account details.
	PermUsersEdit = "edit users"
	// PermUsersDelete allows deleting user accounts.
	PermUsersDelete = "delete users"
	// PermUserRolesEdit allows changing another user's roles and direct permissions.
	PermUserRolesEdit = "edit user roles"

	// PermRolesView allows viewing the role list.
	PermRolesView = "view roles"
	// PermRolesCreate allows creating new roles.
	PermRolesCreate = "create roles"
	// PermRolesEdit allows renaming roles and syncing their permissions.
	PermRolesEdit = "edit roles"
	// PermRolesDelete allows deleting roles.
	PermRolesDelete = "delete roles"
)

// AllPermissions returns the full permission vocabulary in seeding order.
func AllPermissions() []string {
	return []string{
		PermInvitationsView,
		PermInvitationsCreate,
		PermInvitationsResend,
		PermInvitationsDelete,
		PermUsersView,
		PermUsersCreate,
		PermUsersEdit,
		PermUsersDelete,
		PermUserRolesEdit,
		PermRolesView,
		PermRolesCreate,
		PermRolesEdit,
		PermRolesDelete,
	}
}

// known is the permission vocabulary as a set, built once at package init.
var known = func() map[string]struct{} {
	m := make(map[string]struct{})
	for _, p := range AllPermissions() {
		m[p] = struct{}{}
	}

	return m
}()

// Known reports whether the given name is part of the permission vocabulary.
func Known(name string) bool {
	_, ok := known[name]
	return ok
}

// ValidatePermissionNames checks every name against the vocabulary.
// It returns ErrUnknownPermission on the first unknown name.
func ValidatePermissionNames(names []string) error {
	for _, name := range names {
		if !Known(name) {
			return ErrUnknownPermission
		}
	}

	return nil
}
