package telegram

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/dailybot/internal/bot/handlers"
	apperrors "github.com/edgard/dailybot/internal/errors"
	"github.com/edgard/dailybot/internal/telegram/telegramtest"
)

func TestNotifierDeliver(t *testing.T) {
	t.Parallel()

	api := telegramtest.NewServer(t)
	n := NewNotifier(api.Bot(t), nil)

	require.NoError(t, n.Deliver(context.Background(), 42, "☀️ Paris"))

	calls := api.Calls("sendMessage")
	require.Len(t, calls, 1)
	assert.Equal(t, "42", calls[0].Params["chat_id"])
	assert.Equal(t, "☀️ Paris", calls[0].Params["text"])
}

func TestNotifierDeliverBlocked(t *testing.T) {
	t.Parallel()

	api := telegramtest.NewServer(t)
	api.Fail("sendMessage", http.StatusForbidden, "Forbidden: bot was blocked by the user")
	n := NewNotifier(api.Bot(t), nil)

	err := n.Deliver(context.Background(), 42, "hello")
	require.Error(t, err)
	assert.True(t, apperrors.IsDelivery(err))
	assert.ErrorIs(t, err, bot.ErrorForbidden)
}

type senderFunc func(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)

func (f senderFunc) SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	return f(ctx, params)
}

func TestNotifierWrapsTransportErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset")
	n := NewNotifier(senderFunc(func(context.Context, *bot.SendMessageParams) (*models.Message, error) {
		return nil, boom
	}), nil)

	err := n.Deliver(context.Background(), 7, "x")
	assert.True(t, apperrors.IsDelivery(err))
	assert.ErrorIs(t, err, boom)
}

func TestCommandsAndSetCommands(t *testing.T) {
	t.Parallel()

	noop := func(context.Context, *bot.Bot, *models.Update) {}
	registry := map[string]handlers.RegisteredHandler{
		"/subscribe": {HandlerType: bot.HandlerTypeMessageText, Pattern: "subscribe", Handler: noop, Description: "daily digest"},
		"/help":      {HandlerType: bot.HandlerTypeMessageText, Pattern: "help", Handler: noop, Description: "commands"},
		"/time":      {HandlerType: bot.HandlerTypeMessageText, Pattern: "time", Handler: noop},
		"done":       {HandlerType: bot.HandlerTypeCallbackQueryData, Pattern: "done_", Handler: noop, Description: "ignored"},
	}

	commands := Commands(registry)
	assert.Equal(t, []models.BotCommand{
		{Command: "help", Description: "commands"},
		{Command: "subscribe", Description: "daily digest"},
	}, commands)

	api := telegramtest.NewServer(t)
	b := api.Bot(t)
	require.NoError(t, RegisterHandlers(b, nil, registry))
	require.NoError(t, SetCommands(context.Background(), b, commands))

	calls := api.Calls("setMyCommands")
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Params["commands"], `"subscribe"`)
}

func TestNewTelegramBotRequiresToken(t *testing.T) {
	t.Parallel()

	_, err := NewTelegramBot("", nil)
	assert.Error(t, err)
}
