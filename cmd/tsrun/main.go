package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vk/tsrun/internal/app"
	"github.com/vk/tsrun/internal/cli"
)

// main is the entrypoint for the tsrun application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Stdout, os.Stderr, os.Args)
	stop()

	// The real main function handles errors and exit codes.
	if err != nil {
		os.Exit(report(os.Stdout, os.Stderr, err))
	}
}

// report prints err and returns the exit code for it. Only pipeline failure
// messages go to outW; flag, config and toolchain errors go to errW.
func report(outW, errW io.Writer, err error) int {
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintln(errW, err)
		return cli.ExitFailure
	}
	if exitErr.Message != "" {
		w := errW
		if exitErr.Stdout {
			w = outW
		}
		fmt.Fprintln(w, exitErr.Message)
	}
	return exitErr.Code
}

// run encapsulates the main application logic for easier testing and error
// handling. args is the full command line, program name first. User-facing
// messages go to outW; logs and dry-run output go to logW.
func run(ctx context.Context, outW, logW io.Writer, args []string) error {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	tsrunApp, err := app.NewApp(ctx, logW, appConfig, nil)
	if err != nil {
		return err
	}
	defer tsrunApp.Close()

	_, err = tsrunApp.Run(ctx)
	return cli.Exit(err, appConfig.DistinctExitCodes)
}
