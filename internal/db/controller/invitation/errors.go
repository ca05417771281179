package invitation

import "errors"

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")

	// ErrInvitationNotFound is returned when an invitation does not exist.
	ErrInvitationNotFound = errors.New("invitation not found")

	// ErrEmailConflict is returned when the email already belongs to a
	// registered user or already has a pending invitation. One sentinel for
	// both cases: the caller-facing message must not reveal which one holds.
	ErrEmailConflict = errors.New("an active invitation for this email already exists or the user is already registered")

	// ErrInvitationRegistered is returned when attempting to resend or delete
	// a redeemed invitation. Redeemed invitations are immutable history.
	ErrInvitationRegistered = errors.New("invitation has already been redeemed")

	// ErrInvitationInvalid is returned at redemption time when the token is
	// unknown, expired, or already used. Deliberately indistinguishable
	// between the three causes to prevent token/email enumeration.
	ErrInvitationInvalid = errors.New("invitation link is invalid or has expired")

	// ErrUsernameTaken is returned at redemption time when the chosen
	// username already exists.
	ErrUsernameTaken = errors.New("username is already taken")
)
