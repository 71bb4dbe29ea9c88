// Package main is a terminal chat client for the configured language model.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/edgard/dailybot/internal/config"
	"github.com/edgard/dailybot/internal/llm"
	"github.com/edgard/dailybot/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadChat(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	// Logs go to stderr so they do not interleave with the conversation.
	log := logger.New(os.Stderr, cfg.Log.Level, false)

	if cfg.LLM.Backend == "" {
		cfg.LLM.Backend = llm.BackendOllama
	}
	client, err := llm.New(ctx, cfg.LLM, log)
	if err != nil {
		log.Error("Failed to initialize LLM client", "error", err)
		return 1
	}

	if err := llm.RunREPL(ctx, client, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Chat stopped", "error", err)
		return 1
	}
	return 0
}
