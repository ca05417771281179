// Package dashboard provides the dashboard handler showing account,
// role, and invitation counts.
package dashboard

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoAccess-Admin/GoAccess-Admin/internal/config"
	"github.com/GoAccess-Admin/GoAccess-Admin/internal/db/models"
	"github.com/GoAccess-Admin/GoAccess-Admin/internal/rbac"
	"github.com/GoAccess-Admin/GoAccess-Admin/internal/web/handler"
	"github.com/GoAccess-Admin/GoAccess-Admin/internal/web/navigation"
)

const (
	// Path is the path to the dashboard page.
	Path = handler.RootPath + "dashboard"

	// TemplateName is the name of the dashboard template.
	TemplateName = "dashboard/dashboard"
)

// Counts holds the dashboard summary figures.
type Counts struct {
	Users              int64
	Roles              int64
	PendingInvitations int64
	ExpiredInvitations int64
}

// Service is the dashboard handler service.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the dashboard handler.
var Handler = Service{}

// Init initializes the dashboard handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, rbacService *rbac.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db

	app.Get(Path, s.Get)
}

// Get renders the dashboard.
func (s *Service) Get(c *fiber.Ctx) error {
	nav := navigation.NewContext("Dashboard", "dashboard", "dashboard").
		AddBreadcrumb("Home", Path, true)

	var counts Counts

	now := time.Now()

	if err := s.db.Model(&models.User{}).Count(&counts.Users).Error; err != nil {
		log.Error().Err(err).Msg("count users failed")
	}

	if err := s.db.Model(&models.Role{}).Count(&counts.Roles).Error; err != nil {
		log.Error().Err(err).Msg("count roles failed")
	}

	if err := s.db.Model(&models.Invitation{}).
		Where("registered_at IS NULL AND expires_at > ?", now).
		Count(&counts.PendingInvitations).Error; err != nil {
		log.Error().Err(err).Msg("count pending invitations failed")
	}

	if err := s.db.Model(&models.Invitation{}).
		Where("registered_at IS NULL AND expires_at <= ?", now).
		Count(&counts.ExpiredInvitations).Error; err != nil {
		log.Error().Err(err).Msg("count expired invitations failed")
	}

	return c.Render(TemplateName, fiber.Map{
		"Navigation": nav,
		"Counts":     counts,
		"Title":      s.cfg.Title,
	}, handler.BaseLayout)
}
