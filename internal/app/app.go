package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/tsrun/internal/ctxlog"
	"github.com/vk/tsrun/internal/executor"
	"github.com/vk/tsrun/internal/localexecutor"
	"github.com/vk/tsrun/internal/notify"
	"github.com/vk/tsrun/internal/runner"
	"github.com/vk/tsrun/internal/toolchain"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	logger    *slog.Logger
	config    *Config
	toolchain *toolchain.Toolchain
	notifier  notify.Notifier
	runner    *runner.Runner
}

// NewApp is the constructor for the main application. Logs and dry-run
// output go to logW. A nil exec selects the local process executor, or the
// dry-run executor when cfg.DryRun is set.
func NewApp(ctx context.Context, logW io.Writer, cfg *Config, exec executor.Executor) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Logger configured successfully.")

	var paths []string
	if cfg.ToolchainPath != "" {
		paths = append(paths, cfg.ToolchainPath)
	}
	tc, err := toolchain.Load(ctx, paths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load toolchain: %w", err)
	}

	if exec == nil {
		if cfg.DryRun {
			exec = executor.NewDryRun(logW)
		} else {
			exec = localexecutor.New()
		}
	}

	var notifier notify.Notifier = notify.Nop{}
	switch {
	case tc.Notify == nil:
	case cfg.DryRun:
		logger.Debug("Dry run, stage events are not published.")
	default:
		sio, err := notify.DialSocketIO(ctx, tc.Notify)
		if err != nil {
			logger.Warn("Stage events disabled.", "error", err)
		} else {
			notifier = sio
		}
	}

	return &App{
		logger:    logger,
		config:    cfg,
		toolchain: tc,
		notifier:  notifier,
		runner:    runner.New(tc, exec, notifier, cfg.Timeout),
	}, nil
}

// Toolchain returns the resolved toolchain. This is primarily for testing.
func (a *App) Toolchain() *toolchain.Toolchain {
	return a.toolchain
}

// Close releases the notifier connection, if any.
func (a *App) Close() error {
	return a.notifier.Close()
}
