package telegram

import (
	"context"
	"errors"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	apperrors "github.com/edgard/dailybot/internal/errors"
)

// MessageSender is the part of *bot.Bot used for outbound messages.
type MessageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// Notifier delivers scheduled content to private chats. In a private chat the
// chat id equals the user id.
type Notifier struct {
	sender MessageSender
	logger *slog.Logger
}

// NewNotifier wraps sender.
func NewNotifier(sender MessageSender, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{sender: sender, logger: logger.With("component", "notifier")}
}

// Deliver sends text to userID. Every failure is returned as a DeliveryError.
func (n *Notifier) Deliver(ctx context.Context, userID int64, text string) error {
	_, err := n.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: userID,
		Text:   text,
	})
	if err == nil {
		return nil
	}

	if errors.Is(err, bot.ErrorForbidden) {
		n.logger.WarnContext(ctx, "User blocked the bot", "user_id", userID)
	}
	return apperrors.NewDeliveryError(userID, err)
}
