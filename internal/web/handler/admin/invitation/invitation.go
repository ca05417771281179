// Package invitation provides handlers for managing invitations in the admin area.
package invitation

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoAccess-Admin/GoAccess-Admin/internal/config"
	invctrl "github.com/GoAccess-Admin/GoAccess-Admin/internal/db/controller/invitation"
	rolectrl "github.com/GoAccess-Admin/GoAccess-Admin/internal/db/controller/role"
	"github.com/GoAccess-Admin/GoAccess-Admin/internal/mailer"
	"github.com/GoAccess-Admin/GoAccess-Admin/internal/rbac"
	"github.com/GoAccess-Admin/GoAccess-Admin/internal/web/handler"
	"github.com/GoAccess-Admin/GoAccess-Admin/internal/web/handler/dashboard"
	"github.com/GoAccess-Admin/GoAccess-Admin/internal/web/navigation"
)

const (
	// Path is the base path for invitation management.
	Path = handler.RootPath + "admin/invitation"

	// TemplateList is the template for listing invitations.
	TemplateList = "admin/invitation/list"
	// TemplateForm is the template for sending a new invitation.
	TemplateForm = "admin/invitation/form"
	// TemplateSweep is the template for the expired-invitation sweep confirmation.
	TemplateSweep = "admin/invitation/sweep"

	// DefaultPageSize for pagination.
	DefaultPageSize = 25
)

// Service provides invitation management in the admin area.
type Service struct {
	handler.Service
	cfg         *config.Config
	db          *gorm.DB
	rbacService *rbac.Service
	mail        mailer.Mailer
	validator   *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, rbacService *rbac.Service, mail mailer.Mailer) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.rbacService = rbacService
	s.mail = mail
	s.validator = validator.New()

	// Routes
	app.Get(Path,
		rbac.RequirePermission(rbacService, rbac.PermInvitationsView),
		s.List,
	)
	app.Get(Path+"/new",
		rbac.RequirePermission(rbacService, rbac.PermInvitationsCreate),
		s.New,
	)
	app.Post(Path,
		rbac.RequirePermission(rbacService, rbac.PermInvitationsCreate),
		s.Create,
	)
	app.Post(Path+"/:id/resend",
		rbac.RequirePermission(rbacService, rbac.PermInvitationsResend),
		s.Resend,
	)
	app.Post(Path+"/:id/delete",
		rbac.RequirePermission(rbacService, rbac.PermInvitationsDelete),
		s.Delete,
	)
	app.Get(Path+"/sweep",
		rbac.RequirePermission(rbacService, rbac.PermInvitationsDelete),
		s.SweepConfirm,
	)
	app.Post(Path+"/sweep",
		rbac.RequirePermission(rbacService, rbac.PermInvitationsDelete),
		s.Sweep,
	)
}

func listNav() *navigation.Context {
	return navigation.NewContext("Invitations", "admin", "invitation").
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Admin", "#", false).
		AddBreadcrumb("Invitations", Path, true)
}

// row pairs an invitation with its derived state for rendering.
type row struct {
	ID        uint64
	Email     string
	Roles     []string
	InvitedBy string
	ExpiresAt time.Time
	State     string
	CanResend bool
	CanDelete bool
}

// List shows invitations with state badges, pagination, and search.
func (s *Service) List(c *fiber.Ctx) error {
	nav := listNav()

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	pageSize := c.QueryInt("pageSize", DefaultPageSize)
	if pageSize < 1 || pageSize > 100 {
		pageSize = DefaultPageSize
	}

	search := c.Query("search", "")

	invitations, totalCount, err := invctrl.List(s.db, page, pageSize, search)
	if err != nil {
		log.Error().Err(err).Msg("query invitations failed")

		return c.Status(fiber.StatusInternalServerError).Render(TemplateList, fiber.Map{
			"Navigation": nav,
			"Error":      "Failed to load invitations",
			"Search":     search,
		}, handler.BaseLayout)
	}

	now := time.Now()

	rows := make([]row, 0, len(invitations))
	for i := range invitations {
		inv := &invitations[i]
		rows = append(rows, row{
			ID:        inv.ID,
			Email:     inv.Email,
			Roles:     inv.Roles,
			InvitedBy: inv.InvitedBy.Username,
			ExpiresAt: inv.ExpiresAt,
			State:     string(inv.State(now)),
			CanResend: !inv.IsRegistered(),
			CanDelete: !inv.IsRegistered(),
		})
	}

	totalPages := int((totalCount + int64(pageSize) - 1) / int64(pageSize))
	if totalPages == 0 {
		totalPages = 1
	}

	return c.Render(TemplateList, fiber.Map{
		"Navigation": nav,
		"Rows":       rows,
		"Notice":     c.Query("notice", ""),
		"Search":     search,
		"Page":       page,
		"PageSize":   pageSize,
		"TotalItems": totalCount,
		"TotalPages": totalPages,
		"HasPrev":    page > 1,
		"HasNext":    page < totalPages,
		"PrevPage":   page - 1,
		"NextPage":   page + 1,
	}, handler.BaseLayout)
}

// New shows the invitation form.
func (s *Service) New(c *fiber.Ctx) error {
	nav := navigation.NewContext("Invite User", "admin", "invitation").
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Admin", "#", false).
		AddBreadcrumb("Invitations", Path, false).
		AddBreadcrumb("New", Path+"/new", true)

	roles, err := rolectrl.GetAll(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to load roles")

		return c.Status(fiber.StatusInternalServerError).Render(TemplateForm, fiber.Map{
			"Navigation": nav,
			"Error":      "Failed to load roles",
		}, handler.BaseLayout)
	}

	return c.Render(TemplateForm, fiber.Map{
		"Navigation": nav,
		"Roles":      roles,
	}, handler.BaseLayout)
}

// Create sends a new invitation and dispatches the invitation email.
func (s *Service) Create(c *fiber.Ctx) error {
	actor, ok := rbac.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
	}

	allowed, err := s.rbacService.CanCreateInvitation(actor.ID)
	if err != nil || !allowed {
		return c.Status(fiber.StatusForbidden).SendString("Forbidden")
	}

	var in struct {
		Email string   `form:"email" validate:"required,email,max=255"`
		Roles []string `form:"roles"`
	}

	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).Render(TemplateForm, fiber.Map{
			"Navigation": listNav(),
			"Error":      "Invalid form data",
		}, handler.BaseLayout)
	}

	if err := s.validator.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).Render(TemplateForm, fiber.Map{
			"Navigation": listNav(),
			"Error":      "Please provide a valid email address",
		}, handler.BaseLayout)
	}

	inv, err := invctrl.Create(s.db, in.Email, in.Roles, actor.ID, s.cfg.Invitation.Window(), s.cfg.Invitation.TokenLength)
	if err != nil {
		status := fiber.StatusBadRequest
		msg := "Failed to create invitation"

		switch {
		case errors.Is(err, invctrl.ErrEmailConflict):
			msg = err.Error()
		case errors.Is(err, rbac.ErrUnknownRole):
			msg = err.Error()
		default:
			log.Error().Err(err).Msg("create invitation failed")

			status = fiber.StatusInternalServerError
		}

		return c.Status(status).Render(TemplateForm, fiber.Map{
			"Navigation": listNav(),
			"Error":      msg,
		}, handler.BaseLayout)
	}

	// fire-and-forget: delivery failure never rolls back the invitation
	mailer.Dispatch(s.mail, inv)

	return c.Redirect(Path + "?notice=" + "Invitation sent to " + inv.Email)
}

// Resend rotates the invitation token, resets the expiry window, and
// re-dispatches the email. Expired invitations are revived.
func (s *Service) Resend(c *fiber.Ctx) error {
	actor, ok := rbac.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return c.Redirect(Path)
	}

	inv, err := invctrl.GetByID(s.db, id)
	if err != nil {
		if errors.Is(err, invctrl.ErrInvitationNotFound) {
			return c.Redirect(Path)
		}

		log.Error().Err(err).Msg("load invitation failed")

		return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
	}

	allowed, err := s.rbacService.CanResendInvitation(actor.ID, inv)
	if err != nil || !allowed {
		return c.Status(fiber.StatusForbidden).SendString("Forbidden")
	}

	inv, err = invctrl.Resend(s.db, id, s.cfg.Invitation.Window(), s.cfg.Invitation.TokenLength)
	if err != nil {
		log.Error().Err(err).Uint64("invitation_id", id).Msg("resend invitation failed")

		return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
	}

	mailer.Dispatch(s.mail, inv)

	return c.Redirect(Path + "?notice=" + "Invitation resent to " + inv.Email)
}

// Delete removes a pending or expired invitation.
func (s *Service) Delete(c *fiber.Ctx) error {
	actor, ok := rbac.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return c.Redirect(Path)
	}

	inv, err := invctrl.GetByID(s.db, id)
	if err != nil {
		if errors.Is(err, invctrl.ErrInvitationNotFound) {
			return c.Redirect(Path)
		}

		log.Error().Err(err).Msg("load invitation failed")

		return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
	}

	allowed, err := s.rbacService.CanDeleteInvitation(actor.ID, inv)
	if err != nil || !allowed {
		return c.Status(fiber.StatusForbidden).SendString("Forbidden")
	}

	if err := invctrl.Delete(s.db, id); err != nil {
		log.Error().Err(err).Uint64("invitation_id", id).Msg("delete invitation failed")

		return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
	}

	return c.Redirect(Path + "?notice=" + "Invitation deleted")
}

// SweepConfirm shows how many invitations the sweep would remove. This is
// the dry-run step before the destructive action.
func (s *Service) SweepConfirm(c *fiber.Ctx) error {
	nav := navigation.NewContext("Sweep Expired", "admin", "invitation").
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Admin", "#", false).
		AddBreadcrumb("Invitations", Path, false).
		AddBreadcrumb("Sweep", Path+"/sweep", true)

	count, err := invctrl.CountExpired(s.db)
	if err != nil {
		log.Error().Err(err).Msg("count expired invitations failed")

		return c.Status(fiber.StatusInternalServerError).Render(TemplateSweep, fiber.Map{
			"Navigation": nav,
			"Error":      "Failed to count expired invitations",
		}, handler.BaseLayout)
	}

	return c.Render(TemplateSweep, fiber.Map{
		"Navigation": nav,
		"Count":      count,
	}, handler.BaseLayout)
}

// Sweep deletes all expired invitations after confirmation.
func (s *Service) Sweep(c *fiber.Ctx) error {
	deleted, err := invctrl.SweepExpired(s.db)
	if err != nil {
		log.Error().Err(err).Msg("sweep expired invitations failed")

		return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
	}

	log.Info().Int64("deleted", deleted).Msg("expired invitations swept")

	return c.Redirect(Path + "?notice=" + fmt.Sprintf("%d expired invitation(s) removed", deleted))
}
