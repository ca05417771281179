package daemon

import (
	"fmt"

	sessionmysql "github.com/gofiber/storage/mysql"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/GoAccess-Admin/GoAccess-Admin/internal/config"
	invctrl "github.com/GoAccess-Admin/GoAccess-Admin/internal/db/controller/invitation"
	"github.com/GoAccess-Admin/GoAccess-Admin/internal/db/dsn"
	"github.com/GoAccess-Admin/GoAccess-Admin/internal/db/models"
	"github.com/GoAccess-Admin/GoAccess-Admin/internal/logger/adapter/stdlogger"
	"github.com/GoAccess-Admin/GoAccess-Admin/internal/mailer"
	"github.com/GoAccess-Admin/GoAccess-Admin/internal/web"
	"github.com/GoAccess-Admin/GoAccess-Admin/internal/web/session"
)

// Daemon represents the main application daemon.
type Daemon struct {
	webService web.Service
	cfg        *config.Config
	sweeper    *cron.Cron
}

// Start starts the Daemon's web service and the background sweep schedule.
func (d *Daemon) Start() error {
	if d.sweeper != nil {
		d.sweeper.Start()
	}

	port := d.cfg.Webserver.Port
	if port == 0 {
		port = 8080
	}

	return d.webService.Start(fmt.Sprintf(":%d", port))
}

// WaitShutdown waits for graceful shutdown of the web service and stops the
// background sweep schedule.
func (d *Daemon) WaitShutdown() {
	d.webService.WaitShutdown()

	if d.sweeper != nil {
		<-d.sweeper.Stop().Done()
	}
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	dbDriver := gormmysql.Open(dsn.Create(cfg)) // open db with gorm mysql driver

	// TranslateError maps driver duplicate-key errors onto
	// gorm.ErrDuplicatedKey, which the controllers classify.
	db, err := gorm.Open(dbDriver, &gorm.Config{TranslateError: true})
	if err != nil {
		panic("failed to connect database")
	}

	if err = db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
		&models.UserRole{},
		&models.UserPermission{},
		&models.Invitation{},
	); err != nil {
		panic("failed to migrate database")
	}

	seed(cfg, db)

	// Initialize fiber session store
	sessionStorage := sessionmysql.New(sessionmysql.Config{
		ConnectionURI: dsn.Create(cfg),
		Table:         "sessions",
	})

	session.Init(sessionStorage)

	mail := newMailer(cfg)

	d := &Daemon{
		webService: *web.New(cfg, db, mail),
		cfg:        cfg,
	}

	if cfg.Invitation.SweepSchedule != "" {
		d.sweeper = newSweeper(cfg.Invitation.SweepSchedule, db)
	}

	return d
}

// newMailer builds the invitation mailer from the mail config. Delivery is
// a no-op until mail is enabled.
func newMailer(cfg *config.Config) mailer.Mailer {
	if !cfg.Mail.Enabled {
		log.Info().Msg("outgoing mail disabled, invitation emails will not be sent")

		return mailer.Noop{}
	}

	return &mailer.SMTP{
		Smarthost: cfg.Mail.Smarthost,
		From:      cfg.Mail.From,
		Hello:     cfg.Mail.Hello,
		BaseURL:   cfg.Webserver.URL,
	}
}

// newSweeper schedules the expired-invitation sweep.
func newSweeper(schedule string, db *gorm.DB) *cron.Cron {
	c := cron.New(cron.WithLogger(cron.PrintfLogger(stdlogger.New())))

	_, err := c.AddFunc(schedule, func() {
		deleted, err := invctrl.SweepExpired(db)
		if err != nil {
			log.Error().Err(err).Msg("scheduled invitation sweep failed")
			return
		}

		if deleted > 0 {
			log.Info().Int64("deleted", deleted).Msg("scheduled invitation sweep done")
		}
	})
	if err != nil {
		log.Fatal().Err(err).Str("schedule", schedule).Msg("invalid sweep schedule")
		return nil
	}

	log.Info().Str("schedule", schedule).Msg("expired-invitation sweep scheduled")

	return c
}
