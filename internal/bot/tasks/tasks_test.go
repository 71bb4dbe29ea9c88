package tasks

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/dailybot/internal/config"
	"github.com/edgard/dailybot/internal/database"
	apperrors "github.com/edgard/dailybot/internal/errors"
	"github.com/edgard/dailybot/internal/logger"
)

type sent struct {
	userID int64
	text   string
}

type fakeNotifier struct {
	mu      sync.Mutex
	sent    []sent
	calls   int
	failFor map[int64]bool
	broken  error
}

func (f *fakeNotifier) Deliver(_ context.Context, userID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.broken != nil {
		return f.broken
	}
	if f.failFor[userID] {
		return apperrors.NewDeliveryError(userID, errors.New("Forbidden: bot was blocked by the user"))
	}
	f.sent = append(f.sent, sent{userID: userID, text: text})
	return nil
}

func newDeps(t *testing.T, notifier Notifier) (TaskDeps, database.Store) {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "tasks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseDB(db) })
	store := database.NewStore(db, nil)

	return TaskDeps{
		Logger:   logger.Discard(),
		Store:    store,
		Notifier: notifier,
		Config:   &config.Config{Messages: config.DefaultMessages},
		Clock:    clockwork.NewFakeClockAt(time.Date(2026, 2, 1, 9, 0, 0, 0, time.Local)),
	}, store
}

func TestRegisterAllTasks(t *testing.T) {
	t.Parallel()

	deps, _ := newDeps(t, &fakeNotifier{})
	registered := RegisterAllTasks(deps)

	names := make([]string, 0, len(registered))
	for name := range registered {
		names = append(names, name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{NameSQLMaintenance, NameTaskReminders}, names)

	for name := range config.DefaultTasks {
		assert.Contains(t, registered, name)
	}
}

func TestSQLMaintenanceTask(t *testing.T) {
	t.Parallel()

	deps, _ := newDeps(t, &fakeNotifier{})
	require.NoError(t, newSQLMaintenanceTask(deps)(context.Background()))
}

func TestTaskReminders(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	notifier := &fakeNotifier{}
	deps, store := newDeps(t, notifier)

	require.NoError(t, store.UpsertUser(ctx, 1, database.RoleAdmin))
	require.NoError(t, store.UpsertUser(ctx, 2, database.RoleAdmin))
	require.NoError(t, store.UpsertUser(ctx, 3, database.RoleUser))

	_, err := store.AddTask(ctx, "Prepare report", "2026-02-02", 1)
	require.NoError(t, err)
	_, err = store.AddTask(ctx, "Later", "2026-02-10", 1)
	require.NoError(t, err)
	done, err := store.AddTask(ctx, "Already done", "2026-02-02", 1)
	require.NoError(t, err)
	require.NoError(t, store.CompleteTask(ctx, done.TaskID))

	require.NoError(t, newTaskRemindersTask(deps)(ctx))

	want := "⏰ Reminder: 'Prepare report' is due tomorrow!"
	assert.Equal(t, []sent{{userID: 1, text: want}, {userID: 2, text: want}}, notifier.sent)
}

func TestTaskRemindersContinuesAfterFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	notifier := &fakeNotifier{failFor: map[int64]bool{1: true}}
	deps, store := newDeps(t, notifier)

	require.NoError(t, store.UpsertUser(ctx, 1, database.RoleAdmin))
	require.NoError(t, store.UpsertUser(ctx, 2, database.RoleAdmin))
	_, err := store.AddTask(ctx, "Prepare report", "2026-02-02", 1)
	require.NoError(t, err)

	err = newTaskRemindersTask(deps)(ctx)
	require.Error(t, err)
	assert.True(t, apperrors.IsDelivery(err))
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, int64(2), notifier.sent[0].userID)
}

func TestTaskRemindersAbortsOnNotifierFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	notifier := &fakeNotifier{broken: context.DeadlineExceeded}
	deps, store := newDeps(t, notifier)

	require.NoError(t, store.UpsertUser(ctx, 1, database.RoleAdmin))
	require.NoError(t, store.UpsertUser(ctx, 2, database.RoleAdmin))
	_, err := store.AddTask(ctx, "Prepare report", "2026-02-02", 1)
	require.NoError(t, err)
	_, err = store.AddTask(ctx, "Book venue", "2026-02-02", 1)
	require.NoError(t, err)

	err = newTaskRemindersTask(deps)(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, apperrors.IsDelivery(err))
	assert.Equal(t, 1, notifier.calls, "the first failure stops the run")
	assert.Empty(t, notifier.sent)
}

func TestTaskRemindersNothingDue(t *testing.T) {
	t.Parallel()

	notifier := &fakeNotifier{}
	deps, _ := newDeps(t, notifier)

	require.NoError(t, newTaskRemindersTask(deps)(context.Background()))
	assert.Empty(t, notifier.sent)
}
