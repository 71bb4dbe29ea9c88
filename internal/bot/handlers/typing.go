package handlers

import (
	"context"
	"log/slog"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// typingInterval is below the five seconds Telegram shows a chat action for.
const typingInterval = 4 * time.Second

func sendTyping(ctx context.Context, b *tgbot.Bot, log *slog.Logger, chatID int64) {
	_, err := b.SendChatAction(ctx, &tgbot.SendChatActionParams{
		ChatID: chatID,
		Action: models.ChatActionTyping,
	})
	if err != nil && ctx.Err() == nil {
		log.DebugContext(ctx, "Typing action failed", "error", err, "chat_id", chatID)
	}
}

// startTyping keeps the typing indicator alive until the returned stop
// function is called. stop waits for the background loop to exit.
func startTyping(ctx context.Context, b *tgbot.Bot, log *slog.Logger, chatID int64) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)

		ticker := time.NewTicker(typingInterval)
		defer ticker.Stop()

		sendTyping(ctx, b, log, chatID)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sendTyping(ctx, b, log, chatID)
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}
