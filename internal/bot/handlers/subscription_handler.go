package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/dailybot/internal/database"
)

// NewSubscribeHandler returns a handler for /subscribe <topic...> <HH:MM>.
func NewSubscribeHandler(deps HandlerDeps) bot.HandlerFunc {
	return subscribeHandler{deps}.Handle
}

type subscribeHandler struct {
	deps HandlerDeps
}

func (h subscribeHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "subscribe")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Subscribe handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	msgs := h.deps.Config.Messages

	topic, deliveryTime, err := parseSubscribeArgs(commandArgs(update.Message.Text))
	if err != nil {
		log.DebugContext(ctx, "Rejected subscription arguments", "user_id", userID, "error", err)
		reply(ctx, b, log, chatID, msgs.SubscribeUsage)
		return
	}

	if err := h.deps.Store.UpsertUser(ctx, userID, h.deps.roleFor(userID)); err != nil {
		log.ErrorContext(ctx, "Failed to register user", "error", err, "user_id", userID)
		reply(ctx, b, log, chatID, msgs.GeneralError)
		return
	}
	if err := h.deps.Store.SetSubscription(ctx, userID, topic, deliveryTime); err != nil {
		log.ErrorContext(ctx, "Failed to save subscription", "error", err, "user_id", userID)
		reply(ctx, b, log, chatID, msgs.GeneralError)
		return
	}

	log.InfoContext(ctx, "Subscription saved", "user_id", userID, "topic", topic, "delivery_time", deliveryTime)
	reply(ctx, b, log, chatID, fmt.Sprintf(msgs.SubscribeSaved, topic, deliveryTime))
}

// NewStopHandler returns a handler for /stop.
func NewStopHandler(deps HandlerDeps) bot.HandlerFunc {
	return stopHandler{deps}.Handle
}

type stopHandler struct {
	deps HandlerDeps
}

func (h stopHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "stop")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Stop handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	err := h.deps.Store.ClearSubscription(ctx, userID)
	switch {
	case errors.Is(err, database.ErrUserNotFound):
		reply(ctx, b, log, chatID, h.deps.Config.Messages.NoSubscription)
	case err != nil:
		log.ErrorContext(ctx, "Failed to clear subscription", "error", err, "user_id", userID)
		reply(ctx, b, log, chatID, h.deps.Config.Messages.GeneralError)
	default:
		log.InfoContext(ctx, "Subscription cleared", "user_id", userID)
		reply(ctx, b, log, chatID, h.deps.Config.Messages.Unsubscribed)
	}
}

// NewMeHandler returns a handler for /me.
func NewMeHandler(deps HandlerDeps) bot.HandlerFunc {
	return meHandler{deps}.Handle
}

type meHandler struct {
	deps HandlerDeps
}

func (h meHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "me")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Me handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	msgs := h.deps.Config.Messages

	user, err := h.deps.Store.GetUser(ctx, update.Message.From.ID)
	switch {
	case errors.Is(err, database.ErrUserNotFound):
		reply(ctx, b, log, chatID, msgs.NoSubscription)
	case err != nil:
		log.ErrorContext(ctx, "Failed to load user", "error", err)
		reply(ctx, b, log, chatID, msgs.GeneralError)
	case !user.Active():
		reply(ctx, b, log, chatID, msgs.NoSubscription)
	default:
		reply(ctx, b, log, chatID, fmt.Sprintf(msgs.SubscriptionStatus, user.Topic.String, user.DeliveryTime.String, user.Locale))
	}
}
