package models

import "time"

// InvitationState represents the lifecycle state of an invitation.
// The state is derived from the stored timestamps, never stored itself.
type InvitationState string

const (
	// InvitationPending means the invitation can still be redeemed.
	InvitationPending InvitationState = "pending"
	// InvitationExpired means the expiry window has passed without redemption.
	InvitationExpired InvitationState = "expired"
	// InvitationRegistered means the invitation was redeemed (terminal).
	InvitationRegistered InvitationState = "registered"
)

// Invitation represents an email invitation to create a user account.
// The token is an opaque random string carried in the registration link.
// Roles holds the role names granted to the account created on redemption;
// it is always an array of strings, possibly empty or a singleton.
type Invitation struct {
	// ID is the unique identifier for the invitation.
	ID uint64 `gorm:"primaryKey"`
	// Email is the recipient address. At most one pending invitation
	// may exist per email at any time (enforced by the controller).
	Email string `gorm:"size:255;not null;index"`
	// Token is the unique, unguessable redemption token.
	Token string `gorm:"unique;size:64;not null"`
	// Roles are the role names granted to the new account on redemption.
	Roles []string `gorm:"serializer:json"`
	// InvitedByID is the ID of the user who sent the invitation.
	InvitedByID uint64 `gorm:"column:invited_by;not null"`
	// InvitedBy is the inviting user (loaded via foreign key).
	InvitedBy User `gorm:"foreignKey:InvitedByID;constraint:OnDelete:CASCADE"`
	// ExpiresAt is the end of the redemption window.
	ExpiresAt time.Time `gorm:"not null;index"`
	// RegisteredAt is the redemption timestamp (nil while not redeemed).
	RegisteredAt *time.Time
	// CreatedAt is the timestamp when the invitation was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the invitation was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Invitation model.
// This overrides GORM's default pluralized table naming.
func (Invitation) TableName() string {
	return "invitations"
}

// IsRegistered reports whether the invitation was redeemed.
func (i *Invitation) IsRegistered() bool {
	return i.RegisteredAt != nil
}

// IsExpired reports whether the redemption window has passed at the given time.
// A registered invitation is never considered expired.
func (i *Invitation) IsExpired(now time.Time) bool {
	return !i.IsRegistered() && !now.Before(i.ExpiresAt)
}

// State derives the lifecycle state at the given time.
// Exactly one of the three states holds at any instant.
func (i *Invitation) State(now time.Time) InvitationState {
	switch {
	case i.IsRegistered():
		return InvitationRegistered
	case i.IsExpired(now):
		return InvitationExpired
	default:
		return InvitationPending
	}
}
