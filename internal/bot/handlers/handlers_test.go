package handlers

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/dailybot/internal/config"
	"github.com/edgard/dailybot/internal/content"
	"github.com/edgard/dailybot/internal/database"
	apperrors "github.com/edgard/dailybot/internal/errors"
	"github.com/edgard/dailybot/internal/llm"
	"github.com/edgard/dailybot/internal/logger"
	"github.com/edgard/dailybot/internal/telegram/telegramtest"
)

const adminID = 1

type fakeContent struct {
	texts map[string]string
	err   error
	asked []string
}

func (f *fakeContent) Name() string { return "fake" }

func (f *fakeContent) Fetch(_ context.Context, topic, locale string) (string, error) {
	f.asked = append(f.asked, topic+"/"+locale)
	if f.err != nil {
		return "", f.err
	}
	text, ok := f.texts[topic]
	if !ok {
		return "", apperrors.NewProviderError("fake", "not found", content.ErrNotFound)
	}
	return text, nil
}

type fakeLLM struct {
	answer string
	got    []llm.Message
}

func (f *fakeLLM) Chat(_ context.Context, messages []llm.Message) (string, error) {
	f.got = messages
	return f.answer, nil
}

type harness struct {
	api      *telegramtest.Server
	bot      *tgbot.Bot
	store    database.Store
	content  *fakeContent
	llm      *fakeLLM
	registry map[string]RegisteredHandler
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "handlers.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseDB(db) })

	h := &harness{
		api:     telegramtest.NewServer(t),
		store:   database.NewStore(db, nil),
		content: &fakeContent{texts: map[string]string{"Paris": "☀️ Paris forecast"}},
		llm:     &fakeLLM{answer: "4"},
	}
	h.bot = h.api.Bot(t)

	cfg := &config.Config{
		Telegram: config.TelegramConfig{AdminIDs: []int64{adminID}},
		Notify:   config.NotifyConfig{FetchTimeout: time.Second},
		Messages: config.DefaultMessages,
	}
	h.registry = RegisterAllCommands(HandlerDeps{
		Logger:  logger.Discard(),
		Config:  cfg,
		Store:   h.store,
		Content: h.content,
		LLM:     h.llm,
	})
	return h
}

// send runs the registered handler for the command in text as user id.
func (h *harness) send(t *testing.T, userID int64, text string) {
	t.Helper()

	name := strings.SplitN(strings.Fields(text)[0], "@", 2)[0]
	reg, ok := h.registry[name]
	require.True(t, ok, "no handler for %s", name)

	h.run(reg, &models.Update{Message: &models.Message{
		Chat: models.Chat{ID: userID},
		From: &models.User{ID: userID, LanguageCode: "fr"},
		Text: text,
	}})
}

func (h *harness) run(reg RegisteredHandler, update *models.Update) {
	handler := reg.Handler
	for i := len(reg.Middleware) - 1; i >= 0; i-- {
		handler = reg.Middleware[i](handler)
	}
	handler(context.Background(), h.bot, update)
}

func (h *harness) lastText(t *testing.T) string {
	t.Helper()
	texts := h.api.Texts()
	require.NotEmpty(t, texts)
	return texts[len(texts)-1]
}

func TestStartRegistersUserAndAdoptsLanguage(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()

	h.send(t, 42, "/start")

	user, err := h.store.GetUser(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, database.RoleUser, user.Role)
	assert.Equal(t, "fr", user.Locale)
	assert.Equal(t, "Bienvenue ! Utilisez /subscribe <ville> <HH:MM>", h.lastText(t))

	// a later /lang choice survives another /start
	h.send(t, 42, "/lang de")
	h.send(t, 42, "/start")
	locale, err := h.store.GetLocale(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "de", locale)

	h.send(t, adminID, "/start")
	isAdmin, err := h.store.IsAdmin(ctx, adminID)
	require.NoError(t, err)
	assert.True(t, isAdmin)
}

func TestSubscribeScenario(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()

	h.send(t, 42, "/subscribe Paris 08:00")
	assert.Equal(t, "📍 Paris\n⏰ Daily at: 08:00", h.lastText(t))

	subs, err := h.store.ListActiveSubscriptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []database.Subscription{{UserID: 42, Topic: "Paris", DeliveryTime: "08:00", Locale: "en"}}, subs)

	// multi-word topic and the /time alias, time canonicalized
	h.send(t, 42, "/time New York 7:05")
	user, err := h.store.GetUser(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "New York", user.Topic.String)
	assert.Equal(t, "07:05", user.DeliveryTime.String)

	h.send(t, 42, "/me")
	assert.Equal(t, "📍 New York\n⏰ Daily at: 07:05\n🌐 Language: en", h.lastText(t))
}

func TestSubscribeRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	for _, text := range []string{
		"/subscribe",
		"/subscribe Paris",
		"/subscribe Paris 25:00",
		"/subscribe Paris 25:99",
		"/subscribe Paris 8am",
	} {
		t.Run(text, func(t *testing.T) {
			t.Parallel()
			h := newHarness(t)

			h.send(t, 42, text)

			assert.Equal(t, config.DefaultMessages.SubscribeUsage, h.lastText(t))
			_, err := h.store.GetUser(context.Background(), 42)
			assert.ErrorIs(t, err, database.ErrUserNotFound, "nothing may be persisted")
		})
	}
}

func TestInvalidSubscribeKeepsExistingSubscription(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()

	h.send(t, 42, "/subscribe Paris 08:00")

	for _, text := range []string{"/subscribe Berlin 25:99", "/subscribe Berlin", "/subscribe"} {
		h.send(t, 42, text)
		assert.Equal(t, config.DefaultMessages.SubscribeUsage, h.lastText(t), text)
	}

	subs, err := h.store.ListActiveSubscriptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []database.Subscription{{UserID: 42, Topic: "Paris", DeliveryTime: "08:00", Locale: "en"}}, subs)
}

func TestAdminOnlyLogsUnauthorizedCode(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	var logs bytes.Buffer
	deps := HandlerDeps{
		Logger: logger.New(&logs, "debug", false),
		Config: &config.Config{Messages: config.DefaultMessages},
		Store:  h.store,
	}
	called := false
	guarded := RegisteredHandler{
		Handler:    func(context.Context, *tgbot.Bot, *models.Update) { called = true },
		Middleware: []tgbot.Middleware{AdminOnly(deps)},
	}

	h.run(guarded, &models.Update{Message: &models.Message{
		Chat: models.Chat{ID: 42},
		From: &models.User{ID: 42},
		Text: "/addtask x 2026-01-01",
	}})

	assert.False(t, called)
	assert.Equal(t, config.DefaultMessages.NotAuthorized, h.lastText(t))
	assert.Contains(t, logs.String(), "error_code=UNAUTHORIZED")
	assert.Contains(t, logs.String(), `error="user 42 is not an admin"`)
}

func TestStopAndMe(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	h.send(t, 42, "/stop")
	assert.Equal(t, config.DefaultMessages.NoSubscription, h.lastText(t))

	h.send(t, 42, "/subscribe Paris 08:00")
	h.send(t, 42, "/stop")
	assert.Equal(t, config.DefaultMessages.Unsubscribed, h.lastText(t))

	subs, err := h.store.ListActiveSubscriptions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, subs)

	h.send(t, 42, "/me")
	assert.Equal(t, config.DefaultMessages.NoSubscription, h.lastText(t))
}

func TestLang(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	h.send(t, 42, "/lang")
	assert.Equal(t, config.DefaultMessages.LangUsage, h.lastText(t))

	h.send(t, 42, "/lang xx")
	assert.Equal(t, "Available: de, en, es, fr, it, pt, ru, ua", h.lastText(t))

	h.send(t, 42, "/lang uk")
	assert.Equal(t, "Language set to ua", h.lastText(t))
}

func TestNow(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	h.send(t, 42, "/now")
	assert.Equal(t, config.DefaultMessages.NowUsage, h.lastText(t))

	h.send(t, 42, "/weather Paris")
	assert.Equal(t, "☀️ Paris forecast", h.lastText(t))
	assert.NotEmpty(t, h.api.Calls("sendChatAction"))

	h.send(t, 42, "/now Atlantis")
	assert.Equal(t, config.DefaultMessages.NotFound, h.lastText(t))

	// saved topic and locale are used without arguments
	h.send(t, 42, "/subscribe Paris 08:00")
	h.send(t, 42, "/lang es")
	h.send(t, 42, "/now")
	assert.Equal(t, "☀️ Paris forecast", h.lastText(t))
	assert.Equal(t, "Paris/es", h.content.asked[len(h.content.asked)-1])

	h.content.err = apperrors.NewProviderError("fake", "HTTP 500 error", nil)
	h.send(t, 42, "/news Paris")
	assert.Equal(t, config.DefaultMessages.ProviderError, h.lastText(t))
}

func TestAsk(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	h.send(t, 42, "/ask")
	assert.Equal(t, config.DefaultMessages.AskUsage, h.lastText(t))

	h.send(t, 42, "/ask what is 2+2?")
	assert.Equal(t, "4", h.lastText(t))
	assert.Equal(t, []llm.Message{{Role: llm.RoleUser, Content: "what is 2+2?"}}, h.llm.got)
}

func TestAskWithoutBackend(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	deps := HandlerDeps{Logger: logger.Discard(), Config: &config.Config{Messages: config.DefaultMessages}, Store: h.store}
	h.run(RegisteredHandler{Handler: NewAskHandler(deps)}, &models.Update{Message: &models.Message{
		Chat: models.Chat{ID: 42},
		From: &models.User{ID: 42},
		Text: "/ask hello",
	}})
	assert.Equal(t, config.DefaultMessages.AskUnavailable, h.lastText(t))
}

func TestTaskCommands(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()

	h.send(t, adminID, "/start")
	h.send(t, 42, "/start")

	h.send(t, 42, "/addtask Sneaky 2026-02-02")
	assert.Equal(t, config.DefaultMessages.NotAuthorized, h.lastText(t))

	h.send(t, adminID, "/addtask Prepare report")
	assert.Equal(t, config.DefaultMessages.TaskInvalidDate, h.lastText(t))

	h.send(t, adminID, "/addtask")
	assert.Equal(t, config.DefaultMessages.TaskUsage, h.lastText(t))

	h.send(t, adminID, "/addtask Prepare report 2026-02-02")
	assert.Equal(t, "✅ Task added:\nPrepare report\nDue: 2026-02-02", h.lastText(t))

	tasks, err := h.store.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	id := tasks[0].TaskID

	before := len(h.api.Calls("sendMessage"))
	h.send(t, 42, "/tasks")
	calls := h.api.Calls("sendMessage")[before:]
	require.Len(t, calls, 1)
	assert.Equal(t, FormatTask(tasks[0]), calls[0].Params["text"])
	assert.Empty(t, calls[0].Params["reply_markup"], "non-admins get no button")

	before = len(h.api.Calls("sendMessage"))
	h.send(t, adminID, "/tasks")
	calls = h.api.Calls("sendMessage")[before:]
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Params["reply_markup"], fmt.Sprintf(`"callback_data":"done_%d"`, id))

	h.send(t, adminID, "/deltask abc")
	assert.Equal(t, config.DefaultMessages.TaskDeleteUsage, h.lastText(t))

	h.send(t, adminID, "/deltask 999")
	assert.Equal(t, "Task 999 not found.", h.lastText(t))

	h.send(t, adminID, fmt.Sprintf("/deltask %d", id))
	assert.Equal(t, fmt.Sprintf("🗑 Task %d deleted.", id), h.lastText(t))

	h.send(t, adminID, "/tasks")
	assert.Equal(t, config.DefaultMessages.NoTasks, h.lastText(t))
}

func TestDoneCallback(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.store.UpsertUser(ctx, adminID, database.RoleAdmin))
	require.NoError(t, h.store.UpsertUser(ctx, 42, database.RoleUser))
	task, err := h.store.AddTask(ctx, "Ship release", "2026-03-01", adminID)
	require.NoError(t, err)

	callback := func(from int64, data string) *models.Update {
		return &models.Update{CallbackQuery: &models.CallbackQuery{
			ID:   "cb",
			From: models.User{ID: from},
			Data: data,
			Message: models.MaybeInaccessibleMessage{
				Message: &models.Message{ID: 10, Chat: models.Chat{ID: from}, Text: FormatTask(*task)},
			},
		}}
	}
	done := h.registry["done"]

	h.run(done, callback(42, fmt.Sprintf("done_%d", task.TaskID)))
	answers := h.api.Calls("answerCallbackQuery")
	require.Len(t, answers, 1)
	assert.Equal(t, config.DefaultMessages.NotAuthorized, answers[0].Params["text"])

	h.run(done, callback(adminID, fmt.Sprintf("done_%d", task.TaskID)))
	answers = h.api.Calls("answerCallbackQuery")
	require.Len(t, answers, 2)
	assert.Equal(t, config.DefaultMessages.TaskCompleted, answers[1].Params["text"])

	edits := h.api.Calls("editMessageText")
	require.Len(t, edits, 1)
	assert.True(t, strings.HasSuffix(edits[0].Params["text"], "\n"+config.DefaultMessages.TaskCompleted))

	tasks, err := h.store.ListTasks(ctx)
	require.NoError(t, err)
	assert.True(t, tasks[0].Completed)
}

func TestParseHelpers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"New", "York", "08:00"}, commandArgs("/subscribe@daily_bot New York 08:00"))
	assert.Nil(t, commandArgs(""))

	topic, at, err := parseSubscribeArgs([]string{"Rio", "de", "Janeiro", "9:30"})
	require.NoError(t, err)
	assert.Equal(t, "Rio de Janeiro", topic)
	assert.Equal(t, "09:30", at)

	_, _, err = parseSubscribeArgs([]string{"Paris", "24:00"})
	assert.True(t, apperrors.IsValidation(err))

	desc, due, err := parseAddTaskArgs([]string{"Pay", "rent", "2026-11-01"})
	require.NoError(t, err)
	assert.Equal(t, "Pay rent", desc)
	assert.Equal(t, "2026-11-01", due)

	_, _, err = parseAddTaskArgs([]string{"Pay", "2026-13-01"})
	assert.ErrorIs(t, err, errInvalidDate)

	id, err := parseTaskID([]string{"12"})
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	for _, bad := range [][]string{nil, {"0"}, {"-3"}, {"x"}, {"1", "2"}} {
		_, err := parseTaskID(bad)
		assert.ErrorIs(t, err, errUsage)
	}
}
