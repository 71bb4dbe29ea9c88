package handlers

import (
	"context"
	"errors"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/dailybot/internal/database"
	"github.com/edgard/dailybot/internal/i18n"
)

// NewStartHandler returns a handler for the /start command.
func NewStartHandler(deps HandlerDeps) bot.HandlerFunc {
	return startHandler{deps}.Handle
}

// startHandler registers the caller and replies with the localized welcome.
type startHandler struct {
	deps HandlerDeps
}

func (h startHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "start")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Start handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	from := update.Message.From
	chatID := update.Message.Chat.ID
	log.InfoContext(ctx, "Handling /start command", "chat_id", chatID, "user_id", from.ID)

	_, err := h.deps.Store.GetUser(ctx, from.ID)
	isNew := errors.Is(err, database.ErrUserNotFound)
	if err != nil && !isNew {
		log.ErrorContext(ctx, "Failed to load user", "error", err, "user_id", from.ID)
		reply(ctx, b, log, chatID, h.deps.Config.Messages.GeneralError)
		return
	}

	if err := h.deps.Store.UpsertUser(ctx, from.ID, h.deps.roleFor(from.ID)); err != nil {
		log.ErrorContext(ctx, "Failed to register user", "error", err, "user_id", from.ID)
		reply(ctx, b, log, chatID, h.deps.Config.Messages.GeneralError)
		return
	}

	// The client language is only adopted once; /lang overrides it later.
	if isNew {
		if locale, ok := i18n.Normalize(from.LanguageCode); ok {
			if err := h.deps.Store.SetLocale(ctx, from.ID, locale); err != nil {
				log.WarnContext(ctx, "Failed to adopt client language", "error", err, "language_code", from.LanguageCode)
			}
		}
	}

	locale, err := h.deps.Store.GetLocale(ctx, from.ID)
	if err != nil {
		log.WarnContext(ctx, "Failed to read locale, using default", "error", err)
	}
	reply(ctx, b, log, chatID, i18n.Text(locale, i18n.KeyWelcome))
}
