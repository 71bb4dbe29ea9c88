package bot

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/dailybot/internal/bot/tasks"
	"github.com/edgard/dailybot/internal/config"
	"github.com/edgard/dailybot/internal/logger"
)

type blockingPoller struct{ started atomic.Bool }

func (p *blockingPoller) Start(ctx context.Context) {
	p.started.Store(true)
	<-ctx.Done()
}

type runnerFunc func(ctx context.Context) error

func (f runnerFunc) Run(ctx context.Context) error { return f(ctx) }

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()

	noop := func(context.Context) error { return nil }
	s, err := NewScheduler(logger.Discard(), &config.SchedulerConfig{Tasks: map[string]config.TaskConfig{
		tasks.NameSQLMaintenance: {Enabled: true, Schedule: "0 3 * * 0"},
		tasks.NameTaskReminders:  {Enabled: false, Schedule: "0 9 * * *"},
		"unknown":                {Enabled: true, Schedule: "* * * * *"},
		"broken":                 {Enabled: true, Schedule: "not a cron"},
	}}, map[string]tasks.ScheduledTaskFunc{
		tasks.NameSQLMaintenance: noop,
		tasks.NameTaskReminders:  noop,
		"broken":                 noop,
	})
	require.NoError(t, err)
	return s
}

func TestSchedulerRegistersEnabledTasks(t *testing.T) {
	t.Parallel()

	s := newTestScheduler(t)
	require.NoError(t, s.Start(context.Background()))
	assert.Error(t, s.Start(context.Background()), "second start must fail")

	assert.Equal(t, []string{tasks.NameSQLMaintenance}, s.Jobs())

	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop())
}

func TestRunStopsOnCancel(t *testing.T) {
	t.Parallel()

	poller := &blockingPoller{}
	var engineRan atomic.Bool
	engine := runnerFunc(func(ctx context.Context) error {
		engineRan.Store(true)
		<-ctx.Done()
		return nil
	})

	b := NewBot(logger.Discard(), poller, newTestScheduler(t), map[string]Runner{
		"notification_engine": engine,
		"metrics_server":      nil,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	require.Eventually(t, func() bool { return poller.started.Load() && engineRan.Load() }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestRunReturnsComponentError(t *testing.T) {
	t.Parallel()

	boom := errors.New("listen tcp :8080: address already in use")
	b := NewBot(logger.Discard(), &blockingPoller{}, nil, map[string]Runner{
		"metrics_server": runnerFunc(func(context.Context) error { return boom }),
	})

	err := b.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "metrics_server")
}
