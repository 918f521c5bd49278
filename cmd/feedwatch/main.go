package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/DimitriGilbert/rss-to-json-feed/internal/app"
	"github.com/DimitriGilbert/rss-to-json-feed/internal/config"
	"github.com/DimitriGilbert/rss-to-json-feed/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "feedwatch start failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync(log)

	log.InfoObj("feedwatch starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w, err := app.NewWatcher(ctx, cfg, log)
	if err != nil {
		log.ErrorObj("failed to initialize watcher", "error", err)
		return err
	}

	if err := w.Run(ctx); err != nil {
		return fmt.Errorf("watcher run: %w", err)
	}

	return nil
}
