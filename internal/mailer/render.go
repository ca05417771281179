package mailer

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"text/template"

	"github.com/GoAccess-Admin/GoAccess-Admin/internal/db/models"
)

// Subject is the subject line of every invitation email.
const Subject = "You are invited to join!"

// bodyTemplate is the canonical invitation email body. There is exactly one
// template; it handles the no-role, single-role, and multi-role cases itself.
var bodyTemplate = template.Must(template.New("invitation").Parse(
	`Hello,

You have been invited to create an account.
{{- if .Roles }}

Your account will be set up with the following role{{ if .Plural }}s{{ end }}: {{ .RoleList }}.
{{- end }}

Create your account here:

    {{ .Link }}

This invitation link will expire on {{ .ExpiresAt }}.

If you did not expect this invitation, you can ignore this email.
`))

// RegistrationLink builds the redemption URL for an invitation: the
// registration form address with the token as a query parameter.
func RegistrationLink(baseURL string, inv *models.Invitation) string {
	return fmt.Sprintf("%s/register?token=%s",
		strings.TrimRight(baseURL, "/"),
		url.QueryEscape(inv.Token),
	)
}

// RenderInvitationEmail renders the canonical invitation email. It returns
// the subject and plain-text body.
func RenderInvitationEmail(baseURL string, inv *models.Invitation) (subject, body string, err error) {
	data := struct {
		Roles     []string
		RoleList  string
		Plural    bool
		Link      string
		ExpiresAt string
	}{
		Roles:     inv.Roles,
		RoleList:  strings.Join(inv.Roles, ", "),
		Plural:    len(inv.Roles) > 1,
		Link:      RegistrationLink(baseURL, inv),
		ExpiresAt: inv.ExpiresAt.UTC().Format("Jan 2, 2006 15:04 MST"),
	}

	var buf bytes.Buffer
	if err := bodyTemplate.Execute(&buf, data); err != nil {
		return "", "", err
	}

	return Subject, buf.String(), nil
}
