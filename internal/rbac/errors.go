package rbac

import "errors"

var (
	// ErrForbidden is returned when a policy predicate denies an operation.
	// No mutation is ever attempted after a Forbidden result.
	ErrForbidden = errors.New("forbidden")

	// ErrUnknownPermission is returned when a permission name is not part of
	// the closed vocabulary seeded at startup.
	ErrUnknownPermission = errors.New("unknown permission name")

	// ErrUnknownRole is returned when a role name does not exist.
	ErrUnknownRole = errors.New("unknown role name")

	// ErrSelfEdit is returned when a user attempts to change their own roles
	// or direct permissions. Blocking self-edit prevents both accidental
	// self-lockout and deliberate self-escalation.
	ErrSelfEdit = errors.New("cannot modify your own roles and permissions")

	// ErrSystemRole is returned when attempting to delete or rename a system role.
	ErrSystemRole = errors.New("cannot delete or rename a system role")

	// ErrUserNotFound is returned when a referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrRoleNotFound is returned when a referenced role does not exist.
	ErrRoleNotFound = errors.New("role not found")
)
