package mailer

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GoAccess-Admin/GoAccess-Admin/internal/db/models"
)

// SMTP delivers invitation emails through a plain SMTP smarthost.
// No auth or TLS: the expected deployment relays through a local or
// network-internal smarthost.
type SMTP struct {
	// Smarthost is the relay address in host:port form.
	Smarthost string
	// From is the envelope and header sender address.
	From string
	// Hello is the hostname sent in the HELO/EHLO command.
	Hello string
	// BaseURL is the public base URL used to build registration links.
	BaseURL string
	// Timeout bounds the whole SMTP conversation.
	Timeout time.Duration
}

const defaultTimeout = 30 * time.Second

// SendInvitation implements Mailer. It renders the canonical invitation
// email and relays it through the smarthost.
func (s *SMTP) SendInvitation(ctx context.Context, inv *models.Invitation) error {
	if s.From == "" {
		return ErrNoFromAddress
	}

	if s.Smarthost == "" {
		return ErrNoSmarthost
	}

	subject, body, err := RenderInvitationEmail(s.BaseURL, inv)
	if err != nil {
		return fmt.Errorf("failed to render invitation email: %w", err)
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	var d net.Dialer

	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := d.DialContext(dialCtx, "tcp", s.Smarthost)
	if err != nil {
		return fmt.Errorf("failed to dial smarthost: %w", err)
	}

	_ = conn.SetDeadline(time.Now().Add(timeout))

	host, _, err := net.SplitHostPort(s.Smarthost)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("invalid smarthost %q: %w", s.Smarthost, err)
	}

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to create smtp client: %w", err)
	}

	defer func() {
		if err := client.Quit(); err != nil {
			log.Debug().Err(err).Msg("smtp quit failed")
		}
	}()

	if s.Hello != "" {
		if err := client.Hello(s.Hello); err != nil {
			return fmt.Errorf("helo failed: %w", err)
		}
	}

	if err := client.Mail(s.From); err != nil {
		return fmt.Errorf("mail from failed: %w", err)
	}

	if err := client.Rcpt(inv.Email); err != nil {
		return fmt.Errorf("rcpt to failed: %w", err)
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("data failed: %w", err)
	}

	msg := strings.Join([]string{
		"From: " + s.From,
		"To: " + inv.Email,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="utf-8"`,
		"",
		body,
	}, "\r\n")

	if _, err := wc.Write([]byte(msg)); err != nil {
		_ = wc.Close()
		return fmt.Errorf("failed to write message: %w", err)
	}

	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to finish message: %w", err)
	}

	return nil
}

// Dispatch sends the invitation email on a separate goroutine. Failures are
// logged and never propagate: the invitation record already exists and the
// admin can resend.
func Dispatch(m Mailer, inv *models.Invitation) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
		defer cancel()

		if err := m.SendInvitation(ctx, inv); err != nil {
			log.Error().Err(err).Str("email", inv.Email).Uint64("invitation_id", inv.ID).
				Msg("failed to dispatch invitation email")

			return
		}

		log.Info().Str("email", inv.Email).Uint64("invitation_id", inv.ID).
			Msg("invitation email dispatched")
	}()
}
