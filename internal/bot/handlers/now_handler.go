package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/dailybot/internal/content"
	"github.com/edgard/dailybot/internal/database"
	apperrors "github.com/edgard/dailybot/internal/errors"
)

// NewNowHandler returns a handler for /now [topic...]. Without a topic the
// saved subscription topic is used.
func NewNowHandler(deps HandlerDeps) bot.HandlerFunc {
	return nowHandler{deps}.Handle
}

type nowHandler struct {
	deps HandlerDeps
}

func (h nowHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "now")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Now handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	msgs := h.deps.Config.Messages

	topic := strings.Join(commandArgs(update.Message.Text), " ")
	if topic == "" {
		user, err := h.deps.Store.GetUser(ctx, userID)
		if err != nil && !errors.Is(err, database.ErrUserNotFound) {
			log.ErrorContext(ctx, "Failed to load user", "error", err, "user_id", userID)
		}
		if user != nil && user.Topic.Valid {
			topic = user.Topic.String
		}
	}
	if topic == "" {
		reply(ctx, b, log, chatID, msgs.NowUsage)
		return
	}

	locale, err := h.deps.Store.GetLocale(ctx, userID)
	if err != nil {
		log.WarnContext(ctx, "Failed to read locale, using default", "error", err)
	}

	sendTyping(ctx, b, log, chatID)

	fetchCtx := ctx
	if timeout := h.deps.Config.Notify.FetchTimeout; timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	text, err := h.deps.Content.Fetch(fetchCtx, topic, locale)
	switch {
	case errors.Is(err, content.ErrNotFound):
		reply(ctx, b, log, chatID, msgs.NotFound)
	case apperrors.IsValidation(err):
		reply(ctx, b, log, chatID, msgs.NowUsage)
	case apperrors.IsProvider(err):
		log.WarnContext(ctx, "Content fetch failed", "error", err, "topic", topic, "provider", h.deps.Content.Name())
		reply(ctx, b, log, chatID, msgs.ProviderError)
	case err != nil:
		log.ErrorContext(ctx, "Unexpected content fetch error", "error", err, "error_code", apperrors.Code(err), "topic", topic)
		reply(ctx, b, log, chatID, msgs.ProviderError)
	default:
		reply(ctx, b, log, chatID, text)
	}
}
