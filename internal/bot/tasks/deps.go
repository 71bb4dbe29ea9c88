// Package tasks implements the cron jobs of the bot: database maintenance and
// task due-date reminders.
package tasks

import (
	"context"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/edgard/dailybot/internal/config"
	"github.com/edgard/dailybot/internal/database"
)

// Notifier sends a text to a user.
type Notifier interface {
	Deliver(ctx context.Context, userID int64, text string) error
}

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger   *slog.Logger
	Store    database.Store
	Notifier Notifier
	Config   *config.Config
	Clock    clockwork.Clock
}
