package logger

import (
	"log/slog"

	"github.com/go-co-op/gocron/v2"
)

// GocronLogger implements gocron.Logger on top of slog.
type GocronLogger struct {
	log *slog.Logger
}

// NewGocronLogger wraps log for gocron's internal messages.
//
//nolint:ireturn // gocron.WithLogger takes the interface
func NewGocronLogger(log *slog.Logger) gocron.Logger {
	return &GocronLogger{log: log.With("component", "gocron")}
}

func (l *GocronLogger) Debug(msg string, args ...any) {
	l.log.Debug(msg, args...)
}

func (l *GocronLogger) Error(msg string, args ...any) {
	l.log.Error(msg, args...)
}

func (l *GocronLogger) Info(msg string, args ...any) {
	l.log.Info(msg, args...)
}

func (l *GocronLogger) Warn(msg string, args ...any) {
	l.log.Warn(msg, args...)
}
