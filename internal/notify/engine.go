// Package notify runs the per-user daily notification loop: once a minute it
// scans active subscriptions and delivers content to every user whose delivery
// time matches the current wall-clock minute.
package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/edgard/dailybot/internal/database"
	apperrors "github.com/edgard/dailybot/internal/errors"
)

// Delivery outcomes reported to the Recorder.
const (
	OutcomeDelivered     = "delivered"
	OutcomeProviderError = "provider_error"
	OutcomeDeliveryError = "delivery_error"
)

// SubscriptionLister is the read side of the preference store used by the engine.
type SubscriptionLister interface {
	ListActiveSubscriptions(ctx context.Context) ([]database.Subscription, error)
}

// Provider produces the formatted text for a topic.
type Provider interface {
	Fetch(ctx context.Context, topic, locale string) (string, error)
	Name() string
}

// Notifier sends text to a user.
type Notifier interface {
	Deliver(ctx context.Context, userID int64, text string) error
}

// Recorder receives engine measurements.
type Recorder interface {
	ObserveTick(d time.Duration, due int)
	ObserveDelivery(outcome string)
	ObserveFetch(provider string, d time.Duration, err error)
}

type nopRecorder struct{}

func (nopRecorder) ObserveTick(time.Duration, int) {}
func (nopRecorder) ObserveDelivery(string) {}
func (nopRecorder) ObserveFetch(string, time.Duration, error) {}

// Deps holds the collaborators of an Engine.
type Deps struct {
	Store    SubscriptionLister
	Provider Provider
	Notifier Notifier
	Clock    clockwork.Clock
	Logger   *slog.Logger
	Recorder Recorder

	// FetchTimeout bounds each Provider.Fetch call. Zero means no extra bound.
	FetchTimeout time.Duration
	// Concurrency is the number of subscriptions processed in parallel within
	// a tick. Values below 1 mean sequential.
	Concurrency int
}

// TickReport summarizes one evaluation pass.
type TickReport struct {
	Minute         string
	Skipped        bool // minute was already evaluated
	Active         int
	Due            int
	Delivered      int
	ProviderErrors int
	DeliveryErrors int
	Malformed      int
}

// Engine evaluates subscriptions against the current minute.
type Engine struct {
	store        SubscriptionLister
	provider     Provider
	notifier     Notifier
	clock        clockwork.Clock
	logger       *slog.Logger
	recorder     Recorder
	fetchTimeout time.Duration
	concurrency  int

	mu         sync.Mutex
	lastMinute time.Time
}

// NewEngine builds an Engine. Store, Provider and Notifier are required.
func NewEngine(deps Deps) (*Engine, error) {
	if deps.Store == nil {
		return nil, errors.New("notify: store is required")
	}
	if deps.Provider == nil {
		return nil, errors.New("notify: content provider is required")
	}
	if deps.Notifier == nil {
		return nil, errors.New("notify: notifier is required")
	}
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if deps.Recorder == nil {
		deps.Recorder = nopRecorder{}
	}
	if deps.Concurrency < 1 {
		deps.Concurrency = 1
	}

	return &Engine{
		store:        deps.Store,
		provider:     deps.Provider,
		notifier:     deps.Notifier,
		clock:        deps.Clock,
		logger:       deps.Logger.With("component", "notify"),
		recorder:     deps.Recorder,
		fetchTimeout: deps.FetchTimeout,
		concurrency:  deps.Concurrency,
	}, nil
}

// Run ticks at every minute boundary until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.InfoContext(ctx, "Notification engine started",
		"provider", e.provider.Name(), "concurrency", e.concurrency)

	for {
		now := e.clock.Now()
		next := now.Truncate(time.Minute).Add(time.Minute)

		select {
		case <-ctx.Done():
			e.logger.InfoContext(ctx, "Notification engine stopped")
			return nil
		case <-e.clock.After(next.Sub(now)):
		}

		e.Tick(ctx, e.clock.Now())
	}
}

// claim marks the minute of now as evaluated. It returns false when that
// minute, or a later one, was already claimed.
func (e *Engine) claim(now time.Time) bool {
	minute := now.Truncate(time.Minute)

	e.mu.Lock()
	defer e.mu.Unlock()

	if !minute.After(e.lastMinute) {
		return false
	}
	e.lastMinute = minute
	return true
}

// Tick evaluates all active subscriptions against the minute of now. Errors
// from single subscriptions are logged and counted, never returned.
func (e *Engine) Tick(ctx context.Context, now time.Time) TickReport {
	report := TickReport{Minute: MinuteOf(now)}
	if !e.claim(now) {
		report.Skipped = true
		e.logger.DebugContext(ctx, "Minute already evaluated, skipping", "minute", report.Minute)
		return report
	}

	start := e.clock.Now()
	subs, err := e.store.ListActiveSubscriptions(ctx)
	if err != nil {
		e.logger.ErrorContext(ctx, "Failed to list active subscriptions", "minute", report.Minute, "error", err)
		e.recorder.ObserveTick(e.clock.Since(start), 0)
		return report
	}
	report.Active = len(subs)

	due := make([]database.Subscription, 0, len(subs))
	for _, sub := range subs {
		at, err := ParseDeliveryTime(sub.DeliveryTime)
		if err != nil {
			report.Malformed++
			e.logger.DebugContext(ctx, "Ignoring subscription with malformed delivery time",
				"user_id", sub.UserID, "delivery_time", sub.DeliveryTime)
			continue
		}
		if at == report.Minute {
			due = append(due, sub)
		}
	}
	report.Due = len(due)

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(e.concurrency)
	for _, sub := range due {
		g.Go(func() error {
			outcome := e.process(ctx, sub)
			e.recorder.ObserveDelivery(outcome)

			mu.Lock()
			defer mu.Unlock()
			switch outcome {
			case OutcomeDelivered:
				report.Delivered++
			case OutcomeProviderError:
				report.ProviderErrors++
			case OutcomeDeliveryError:
				report.DeliveryErrors++
			}
			return nil
		})
	}
	_ = g.Wait()

	e.recorder.ObserveTick(e.clock.Since(start), report.Due)
	if report.Due > 0 {
		e.logger.InfoContext(ctx, "Tick completed",
			"minute", report.Minute,
			"due", report.Due,
			"delivered", report.Delivered,
			"provider_errors", report.ProviderErrors,
			"delivery_errors", report.DeliveryErrors)
	}
	if report.Malformed > 0 {
		e.logger.DebugContext(ctx, "Malformed subscriptions skipped", "minute", report.Minute, "count", report.Malformed)
	}
	return report
}

// process fetches and delivers one subscription and returns its outcome.
func (e *Engine) process(ctx context.Context, sub database.Subscription) string {
	log := e.logger.With("user_id", sub.UserID, "topic", sub.Topic)

	fetchCtx := ctx
	if e.fetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, e.fetchTimeout)
		defer cancel()
	}

	start := e.clock.Now()
	text, err := e.provider.Fetch(fetchCtx, sub.Topic, sub.Locale)
	e.recorder.ObserveFetch(e.provider.Name(), e.clock.Since(start), err)
	if err != nil {
		log.WarnContext(ctx, "Content fetch failed",
			"provider", e.provider.Name(), "error", err, "error_code", apperrors.Code(err))
		return OutcomeProviderError
	}

	if err := e.notifier.Deliver(ctx, sub.UserID, text); err != nil {
		log.WarnContext(ctx, "Delivery failed", "error", err, "error_code", apperrors.Code(err))
		return OutcomeDeliveryError
	}

	log.DebugContext(ctx, "Notification delivered")
	return OutcomeDelivered
}
