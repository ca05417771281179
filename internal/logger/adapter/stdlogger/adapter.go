// Package stdlogger adapts the zerolog global logger to the printf-style
// logging interfaces expected by libraries that know nothing about zerolog
// (e.g. the cron scheduler).
package stdlogger

import (
	"github.com/rs/zerolog/log"
)

// StdLogger exposes printf-style logging methods backed by zerolog.
type StdLogger struct{}

// New creates a new StdLogger. Call logger.Init before use so output goes to
// the configured writers.
func New() StdLogger {
	return StdLogger{}
}

// Printf logs at info level. Satisfies the common Printf logging contract.
func (StdLogger) Printf(format string, v ...interface{}) {
	log.Info().Msgf(format, v...)
}

// Infof logs at info level.
func (StdLogger) Infof(format string, v ...interface{}) {
	log.Info().Msgf(format, v...)
}

// Warningf logs at warn level.
func (StdLogger) Warningf(format string, v ...interface{}) {
	log.Warn().Msgf(format, v...)
}

// Errorf logs at error level.
func (StdLogger) Errorf(format string, v ...interface{}) {
	log.Error().Msgf(format, v...)
}

// Debugf logs at debug level.
func (StdLogger) Debugf(format string, v ...interface{}) {
	log.Debug().Msgf(format, v...)
}
