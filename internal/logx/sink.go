package logx

import (
	"github.com/rs/zerolog"
)

// Sink receives failures that background work swallowed. It never
// surfaces anything to the user.
type Sink struct {
	log zerolog.Logger
}

// NewSink wraps a logger as an error sink.
func NewSink(log zerolog.Logger) *Sink {
	return &Sink{log: log.With().Str("component", "notify").Logger()}
}

// Report logs err under the operation name op.
func (s *Sink) Report(op string, err error) {
	if err == nil {
		return
	}
	s.log.Warn().Str("op", op).Err(err).Msg("background operation failed")
}

// CronLogger adapts a zerolog logger to cron.Logger.
type CronLogger struct {
	log zerolog.Logger
}

// NewCronLogger wraps log for use with robfig/cron.
func NewCronLogger(log zerolog.Logger) CronLogger {
	return CronLogger{log: log.With().Str("component", "cron").Logger()}
}

// Info logs routine scheduler messages at debug level.
func (l CronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

// Error logs scheduler failures.
func (l CronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
