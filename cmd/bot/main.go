// Package main contains the entrypoint for the daily digest Telegram bot.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/jonboulle/clockwork"

	"github.com/edgard/dailybot/internal/bot"
	"github.com/edgard/dailybot/internal/bot/handlers"
	"github.com/edgard/dailybot/internal/bot/tasks"
	"github.com/edgard/dailybot/internal/config"
	"github.com/edgard/dailybot/internal/content"
	"github.com/edgard/dailybot/internal/database"
	"github.com/edgard/dailybot/internal/llm"
	"github.com/edgard/dailybot/internal/logger"
	"github.com/edgard/dailybot/internal/metrics"
	"github.com/edgard/dailybot/internal/notify"
	"github.com/edgard/dailybot/internal/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run wires every component, blocks until shutdown and returns the exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Log.Level, cfg.Log.JSON)
	slog.SetDefault(log)
	log.Info("Configuration loaded", "config", cfg.String())

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	if err := seedAdmins(ctx, store, cfg.Telegram.AdminIDs); err != nil {
		log.Error("Failed to register admins", "error", err)
		return 1
	}

	provider, err := content.New(cfg.Content)
	if err != nil {
		log.Error("Failed to create content provider", "error", err)
		return 1
	}

	llmClient, err := llm.New(ctx, cfg.LLM, log)
	switch {
	case errors.Is(err, llm.ErrDisabled):
		log.Info("LLM backend not configured, /ask disabled")
	case err != nil:
		log.Error("Failed to initialize LLM client", "error", err)
		return 1
	}

	hDeps := handlers.HandlerDeps{
		Logger:  log,
		Config:  cfg,
		Store:   store,
		Content: provider,
		LLM:     llmClient,
	}

	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, tgbot.WithMiddlewares(logger.Middleware(log)))
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	cfg.Telegram.BotInfo, err = tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return 1
	}
	log.Info("Retrieved bot info", "bot_id", cfg.Telegram.BotInfo.ID, "bot_username", cfg.Telegram.BotInfo.Username)

	cmdHandlers := handlers.RegisterAllCommands(hDeps)
	if err := telegram.RegisterHandlers(tg, log, cmdHandlers); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}
	if err := telegram.SetCommands(ctx, tg, telegram.Commands(cmdHandlers)); err != nil {
		log.Warn("Failed to publish command menu", "error", err)
	}

	notifier := telegram.NewNotifier(tg, log)
	clock := clockwork.NewRealClock()

	runners := make(map[string]bot.Runner)
	var recorder notify.Recorder
	if cfg.Metrics.Enabled {
		collector := metrics.NewCollector()
		recorder = collector
		runners["metrics_server"] = metrics.NewServer(cfg.Metrics.Addr, collector.Registry, store, log)
	}

	if cfg.Notify.Enabled {
		engine, err := notify.NewEngine(notify.Deps{
			Store:        store,
			Provider:     provider,
			Notifier:     notifier,
			Clock:        clock,
			Logger:       log,
			Recorder:     recorder,
			FetchTimeout: cfg.Notify.FetchTimeout,
			Concurrency:  cfg.Notify.Concurrency,
		})
		if err != nil {
			log.Error("Failed to create notification engine", "error", err)
			return 1
		}
		runners["notification_engine"] = engine
	}

	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tasks.TaskDeps{
		Logger:   log,
		Store:    store,
		Notifier: notifier,
		Config:   cfg,
		Clock:    clock,
	}))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	app := bot.NewBot(log, tg, sched, runners)

	log.Info("Starting bot...")
	runErr := app.Run(ctx)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully")
	return 0
}

// seedAdmins makes sure every configured admin exists with the admin role.
func seedAdmins(ctx context.Context, store database.Store, ids []int64) error {
	for _, id := range ids {
		if err := store.UpsertUser(ctx, id, database.RoleAdmin); err != nil {
			return err
		}
		if err := store.SetRole(ctx, id, database.RoleAdmin); err != nil {
			return err
		}
	}
	return nil
}
