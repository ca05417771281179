package config

import (
	"time"

	"github.com/GoAccess-Admin/GoAccess-Admin/internal/logger"
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration
}

// Config overall data structure.
type Config struct {
	DevMode    bool // enable dev mode for development
	DB         DB
	Log        logger.Log
	Title      string
	Webserver  Webserver
	Mail       Mail
	Invitation Invitation
}

// Webserver implement webserver settings.
type Webserver struct {
	BrowseStatic        bool    // enable static file browsing (for development purposes only)
	CacheEnabled        bool    // true = enable cache, false = disable cache
	CleanPath           bool    // use clean path middleware to allow multi slash requests
	DisableRecover      bool    // disable recover middleware
	Domain              string  // domain name for the webserver
	Port                int     // listening port for the webserver
	ShutDownTime        int     // wait time for shutdown
	URL                 string  // base url for the webserver
	CookieEncryptionKey string  // encryption key for cookies
	Session             Session // session settings
}

// Mail implements SMTP delivery settings for invitation emails.
type Mail struct {
	Enabled   bool   // enable outgoing mail; disabled means no-op dispatch
	Smarthost string // smtp relay in host:port form
	From      string // sender address
	Hello     string // hostname for the HELO/EHLO command
}

// Invitation implements invitation lifecycle settings.
type Invitation struct {
	ExpiryDays    int    // redemption window in days (default 7)
	TokenLength   int    // redemption token length (default 48)
	SweepSchedule string // cron expression for the expired-invitation sweep; empty disables it
}

// Window returns the invitation expiry window as a duration.
func (i Invitation) Window() time.Duration {
	return time.Duration(i.ExpiryDays) * 24 * time.Hour
}
