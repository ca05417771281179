// Package register provides the public registration form backing the
// invitation redemption flow. The form is reached through the emailed link
// carrying the invitation token; the email address always comes from the
// stored invitation and is never taken from the client.
package register

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoAccess-Admin/GoAccess-Admin/internal/config"
	"github.com/GoAccess-Admin/GoAccess-Admin/internal/db/controller/invitation"
	"github.com/GoAccess-Admin/GoAccess-Admin/internal/web/handler"
	"github.com/GoAccess-Admin/GoAccess-Admin/internal/web/handler/login"
)

const (
	// Path is the path to the registration page.
	Path = "/register"

	// TemplateName is the registration page template.
	TemplateName = "register"
)

// Service is the registration handler service.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the registration handler.
var Handler = Service{}

// Init initializes the registration handler. The routes are public: the
// token in the link is the credential.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New("app or db is nil")
	}

	s.db = db
	s.cfg = cfg
	s.validator = validator.New()

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, s.Get)
		router.Post(handler.RouterRootPath, s.Post)
	})

	return nil
}

// Get renders the registration form for a pending invitation token.
// The email field is pre-filled from the invitation and locked.
func (s *Service) Get(c *fiber.Ctx) error {
	tok := c.Query("token")
	if tok == "" {
		return c.Status(fiber.StatusNotFound).Render(TemplateName, fiber.Map{
			"Title": s.cfg.Title,
			"Error": invitation.ErrInvitationInvalid.Error(),
		})
	}

	inv, err := invitation.GetPendingByToken(s.db, tok)
	if err != nil {
		if errors.Is(err, invitation.ErrInvitationInvalid) {
			return c.Status(fiber.StatusNotFound).Render(TemplateName, fiber.Map{
				"Title": s.cfg.Title,
				"Error": invitation.ErrInvitationInvalid.Error(),
			})
		}

		log.Error().Err(err).Msg("failed to load invitation")

		return c.Status(fiber.StatusInternalServerError).Render(TemplateName, fiber.Map{
			"Title": s.cfg.Title,
			"Error": "Something went wrong, please try again later",
		})
	}

	return c.Render(TemplateName, fiber.Map{
		"Title": s.cfg.Title,
		"Email": inv.Email,
		"Token": inv.Token,
		"Roles": inv.Roles,
	})
}

// Post redeems the invitation: creates the account with the invitation's
// email and roles and marks the invitation registered, atomically.
func (s *Service) Post(c *fiber.Ctx) error {
	var in struct {
		Token    string `form:"token"    validate:"required"`
		Username string `form:"username" validate:"required,min=3,max=100"`
		Password string `form:"password" validate:"required,min=10,max=128"`
	}

	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).Render(TemplateName, fiber.Map{
			"Title": s.cfg.Title,
			"Error": "Invalid form data",
		})
	}

	if err := s.validator.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).Render(TemplateName, fiber.Map{
			"Title": s.cfg.Title,
			"Token": in.Token,
			"Error": "Please provide a username and a password of at least 10 characters",
		})
	}

	user, err := invitation.Redeem(s.db, in.Token, in.Username, in.Password)
	if err != nil {
		switch {
		case errors.Is(err, invitation.ErrInvitationInvalid):
			return c.Status(fiber.StatusNotFound).Render(TemplateName, fiber.Map{
				"Title": s.cfg.Title,
				"Error": invitation.ErrInvitationInvalid.Error(),
			})
		case errors.Is(err, invitation.ErrUsernameTaken):
			return c.Status(fiber.StatusBadRequest).Render(TemplateName, fiber.Map{
				"Title": s.cfg.Title,
				"Token": in.Token,
				"Error": invitation.ErrUsernameTaken.Error(),
			})
		default:
			log.Error().Err(err).Msg("failed to redeem invitation")

			return c.Status(fiber.StatusInternalServerError).Render(TemplateName, fiber.Map{
				"Title": s.cfg.Title,
				"Error": "Something went wrong, please try again later",
			})
		}
	}

	log.Info().Uint64("user_id", user.ID).Str("email", user.Email).
		Msg("invitation redeemed, account created")

	return c.Redirect(login.Path)
}
