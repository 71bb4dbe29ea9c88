package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/dailybot/internal/i18n"
)

// NewLangHandler returns a handler for the /lang command.
func NewLangHandler(deps HandlerDeps) bot.HandlerFunc {
	return langHandler{deps}.Handle
}

type langHandler struct {
	deps HandlerDeps
}

func (h langHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "lang")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Lang handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	msgs := h.deps.Config.Messages

	args := commandArgs(update.Message.Text)
	if len(args) != 1 {
		reply(ctx, b, log, chatID, msgs.LangUsage)
		return
	}

	locale, ok := i18n.Normalize(args[0])
	if !ok {
		reply(ctx, b, log, chatID, fmt.Sprintf(msgs.LangUnsupported, strings.Join(i18n.Supported(), ", ")))
		return
	}

	if err := h.deps.Store.UpsertUser(ctx, userID, h.deps.roleFor(userID)); err != nil {
		log.ErrorContext(ctx, "Failed to register user", "error", err, "user_id", userID)
		reply(ctx, b, log, chatID, msgs.GeneralError)
		return
	}
	if err := h.deps.Store.SetLocale(ctx, userID, locale); err != nil {
		log.ErrorContext(ctx, "Failed to set locale", "error", err, "user_id", userID)
		reply(ctx, b, log, chatID, msgs.GeneralError)
		return
	}

	log.InfoContext(ctx, "Locale changed", "user_id", userID, "locale", locale)
	reply(ctx, b, log, chatID, fmt.Sprintf(msgs.LangSet, locale))
}
