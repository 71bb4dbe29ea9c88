// Package handlers contains Telegram bot command and callback handlers,
// along with their registration logic and middleware.
package handlers

import (
	"context"
	"fmt"
	"log/slog"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	apperrors "github.com/edgard/dailybot/internal/errors"
)

// senderID returns the id of the user behind a message or callback update.
func senderID(update *models.Update) (int64, bool) {
	switch {
	case update.Message != nil && update.Message.From != nil:
		return update.Message.From.ID, true
	case update.CallbackQuery != nil:
		return update.CallbackQuery.From.ID, true
	default:
		return 0, false
	}
}

// AdminOnly creates a middleware that lets only users with the admin role through.
// Everyone else gets the not-authorized reply and the handler is skipped.
func AdminOnly(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
			log := deps.Logger.With("middleware", "AdminOnly")

			userID, ok := senderID(update)
			if !ok {
				log.WarnContext(ctx, "Update without sender reached admin-only handler", "update_id", update.ID)
				return
			}

			isAdmin, err := deps.Store.IsAdmin(ctx, userID)
			if err != nil {
				log.ErrorContext(ctx, "Failed to check admin role", "error", err, "user_id", userID)
			}
			if isAdmin {
				next(ctx, bot, update)
				return
			}

			denied := apperrors.NewUnauthorizedError(fmt.Sprintf("user %d is not an admin", userID))
			log.WarnContext(ctx, "Unauthorized access attempt",
				"user_id", userID, "error", denied, "error_code", apperrors.Code(denied))
			if update.CallbackQuery != nil {
				answerCallback(ctx, bot, log, update.CallbackQuery.ID, deps.Config.Messages.NotAuthorized)
				return
			}
			reply(ctx, bot, log, update.Message.Chat.ID, deps.Config.Messages.NotAuthorized)
		}
	}
}

// reply sends text to chatID and logs failures.
func reply(ctx context.Context, b *tgbot.Bot, log *slog.Logger, chatID int64, text string) {
	if _, err := b.SendMessage(ctx, &tgbot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		log.ErrorContext(ctx, "Failed to send reply", "error", err, "chat_id", chatID)
	}
}

func answerCallback(ctx context.Context, b *tgbot.Bot, log *slog.Logger, callbackID, text string) {
	_, err := b.AnswerCallbackQuery(ctx, &tgbot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to answer callback query", "error", err)
	}
}
