package app

import (
	"context"

	"github.com/vk/tsrun/internal/ctxlog"
	"github.com/vk/tsrun/internal/runner"
)

// Run compiles and executes the configured source file.
func (a *App) Run(ctx context.Context) (*runner.Result, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "source", a.config.SourcePath, "dry_run", a.config.DryRun)

	res, err := a.runner.Run(ctx, a.config.SourcePath)
	if err != nil {
		a.logger.Debug("App.Run method finished with error.", "error", err)
		return res, err
	}

	a.logger.Debug("App.Run method finished.")
	return res, nil
}
