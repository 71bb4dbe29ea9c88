package handlers

import (
	"log/slog"

	"github.com/edgard/dailybot/internal/config"
	"github.com/edgard/dailybot/internal/content"
	"github.com/edgard/dailybot/internal/database"
	"github.com/edgard/dailybot/internal/llm"
)

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger  *slog.Logger
	Config  *config.Config
	Store   database.Store
	Content content.Provider
	// LLM is nil when no backend is configured.
	LLM llm.Client
}

// roleFor returns the role a new user gets: admin when listed in telegram.admin_ids.
func (d HandlerDeps) roleFor(userID int64) string {
	if d.Config.Telegram.IsAdmin(userID) {
		return database.RoleAdmin
	}
	return database.RoleUser
}
