package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/dailybot/internal/llm"
)

// NewAskHandler returns a handler for /ask <text>, a single-turn question to
// the configured language model.
func NewAskHandler(deps HandlerDeps) bot.HandlerFunc {
	return askHandler{deps}.Handle
}

type askHandler struct {
	deps HandlerDeps
}

func (h askHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "ask")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Ask handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	msgs := h.deps.Config.Messages

	if h.deps.LLM == nil {
		reply(ctx, b, log, chatID, msgs.AskUnavailable)
		return
	}

	question := strings.Join(commandArgs(update.Message.Text), " ")
	if question == "" {
		reply(ctx, b, log, chatID, msgs.AskUsage)
		return
	}

	stopTyping := startTyping(ctx, b, log, chatID)
	answer, err := h.deps.LLM.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: question}})
	stopTyping()

	if err != nil {
		log.ErrorContext(ctx, "LLM request failed", "error", err, "user_id", update.Message.From.ID)
		reply(ctx, b, log, chatID, msgs.GeneralError)
		return
	}

	reply(ctx, b, log, chatID, answer)
}
