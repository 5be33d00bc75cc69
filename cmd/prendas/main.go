package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"lostfound-desk/config"
	"lostfound-desk/internal/alert"
	"lostfound-desk/internal/backend"
	"lostfound-desk/internal/intake"
	"lostfound-desk/internal/logging"
	"lostfound-desk/internal/tui"
	"lostfound-desk/internal/workflow"
)

func main() {
	configPath := os.Getenv("PRENDAS_CONFIG")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if errors.Is(err, os.ErrNotExist) {
		cfg, err = config.Default(), nil
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration from %s: %v\n", configPath, err)
		os.Exit(1)
	}

	// The screen belongs to the TUI, so logs always go to a file.
	if cfg.Logging.File == "" {
		cfg.Logging.File = "prendas.log"
	}
	logger, err := logging.New(cfg.Logging, "prendas")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger.Info("configuration loaded", zap.String("path", configPath), zap.String("backend", cfg.API.BaseURL))

	loc := time.Local
	if cfg.UI.Timezone != "" {
		if l, err := time.LoadLocation(cfg.UI.Timezone); err == nil {
			loc = l
		} else {
			logger.Warn("unknown timezone, using local time", zap.String("timezone", cfg.UI.Timezone), zap.Error(err))
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Observers also fire from inside App.Update, so they must not block on
	// the program.
	refresher := tui.NewRefresher()

	client := backend.NewClient(cfg.API, logger)
	alerts := alert.New(cfg.UI.AlertAutoHide,
		alert.WithLogger(logger),
		alert.WithObserver(func(alert.Alert) { refresher.Notify() }),
	)
	coordinator := intake.NewCoordinator(client, alerts, logger)
	flow := workflow.New(client, alerts,
		workflow.WithCloseDelay(cfg.UI.DialogCloseDelay),
		workflow.WithLogger(logger),
		workflow.WithObserver(func(workflow.Snapshot) { refresher.Notify() }),
	)

	app := tui.NewApp(ctx, coordinator, flow, alerts, tui.WithLocation(loc), tui.WithLogger(logger))
	program := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	go refresher.Run(ctx, program)
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		logger.Error("terminal app exited", zap.Error(err))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	logger.Info("terminal app closed")
}
