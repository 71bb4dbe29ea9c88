// Package bot implements lifecycle management and component orchestration
// for the daily digest Telegram bot.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Poller receives Telegram updates until ctx is cancelled. *bot.Bot implements it.
type Poller interface {
	Start(ctx context.Context)
}

// Runner is a long-running component such as the notification engine or the
// metrics server. Run returns nil when ctx is cancelled.
type Runner interface {
	Run(ctx context.Context) error
}

// Bot represents the main bot application and manages its components' lifecycle.
type Bot struct {
	logger    *slog.Logger
	tgBot     Poller
	scheduler *Scheduler
	runners   map[string]Runner
}

// NewBot creates the orchestrator. runners maps a component name to an
// optional component; nil entries are skipped.
func NewBot(logger *slog.Logger, tgBot Poller, scheduler *Scheduler, runners map[string]Runner) *Bot {
	return &Bot{
		logger:    logger.With("component", "bot_orchestrator"),
		tgBot:     tgBot,
		scheduler: scheduler,
		runners:   runners,
	}
}

// Run starts every component and blocks until ctx is cancelled or one of them
// fails, in which case the others are stopped and the error returned.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting bot orchestrator...")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b.logger.Info("Starting Telegram bot listener...")
		b.tgBot.Start(gCtx)
		b.logger.Info("Telegram bot listener stopped")

		if gCtx.Err() == nil {
			b.logger.Warn("Telegram bot listener stopped unexpectedly without context cancellation")
			return fmt.Errorf("telegram listener stopped unexpectedly")
		}
		return nil
	})

	if b.scheduler != nil {
		g.Go(func() error {
			if err := b.scheduler.Start(gCtx); err != nil {
				return fmt.Errorf("failed to start scheduler: %w", err)
			}

			<-gCtx.Done()
			b.logger.Info("Shutdown signal received, stopping scheduler...")
			if err := b.scheduler.Stop(); err != nil {
				b.logger.Error("Error stopping scheduler", "error", err)
			}
			return nil
		})
	}

	for name, runner := range b.runners {
		if runner == nil {
			b.logger.Info("Component disabled", "name", name)
			continue
		}
		g.Go(func() error {
			b.logger.Info("Starting component", "name", name)
			if err := runner.Run(gCtx); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			b.logger.Info("Component stopped", "name", name)
			return nil
		})
	}

	b.logger.Info("Bot orchestrator running. Waiting for shutdown signal or error...")
	err := g.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped gracefully")
	return nil
}
