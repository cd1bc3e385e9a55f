package main

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/iho/walletfy/internal/app"
	"github.com/iho/walletfy/internal/infrastructure/config"
	"github.com/iho/walletfy/internal/infrastructure/logger"
)

func main() {
	root := newRootCmd(openLedger)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openLedger opens the ledger the same way the server does. Logs go to
// stderr so command output stays clean.
func openLedger(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	level := cfg.LogLevel
	if level == "info" {
		level = "warn"
	}
	log := logger.NewWithWriter(os.Stderr, logger.Config{Level: level, Format: "console"})

	a, err := app.New(ctx, cfg, log, app.Options{Registerer: prometheus.NewRegistry()})
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	return a, nil
}
