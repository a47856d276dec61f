package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/javiermolinar/coursecal/internal/config"
	"github.com/javiermolinar/coursecal/internal/logging"
	"github.com/javiermolinar/coursecal/internal/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	var out io.Writer
	if cfg.Log.File != "" {
		f, err := logging.OpenFile(cfg.Log.File)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		out = f
	}
	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Output: out, Name: "coursecal"})
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := ui.NewApp(nil, cfg, ui.WithLogger(logger))
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("closing store", zap.Error(err))
		}
	}()
	return app.ExecuteContext(ctx)
}
