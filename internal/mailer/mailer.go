// Package mailer dispatches invitation emails. Delivery is fire-and-forget
// relative to the transaction that created or updated the invitation: a
// failed send is logged and the invitation stays valid, resend remains
// available. At-least-once delivery is the smarthost's concern.
package mailer

import (
	"context"
	"errors"

	"github.com/GoAccess-Admin/GoAccess-Admin/internal/db/models"
)

var (
	// ErrNoFromAddress is returned when the mail config has no sender address.
	ErrNoFromAddress = errors.New("no 'from' address configured")
	// ErrNoSmarthost is returned when the mail config has no smarthost.
	ErrNoSmarthost = errors.New("no smarthost configured")
)

// Mailer sends invitation emails.
type Mailer interface {
	// SendInvitation renders and delivers the invitation email carrying the
	// registration link for the invitation's token.
	SendInvitation(ctx context.Context, inv *models.Invitation) error
}

// Noop is a Mailer that does nothing. Used in tests and when mail delivery
// is not configured.
type Noop struct{}

// SendInvitation implements Mailer.
func (Noop) SendInvitation(_ context.Context, _ *models.Invitation) error {
	return nil
}
