package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/vk/tsrun/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
	// Stdout marks a pipeline failure message, which belongs on standard
	// output. Everything else is a diagnostic for standard error.
	Stdout bool
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes the full command line, program name first. It returns a
// populated Config, a boolean indicating if the program should exit cleanly,
// or an ExitError. A missing source path prints the usage text to output and
// yields an ExitError with the usage exit code.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	prog := "tsrun"
	if len(args) > 0 {
		prog = filepath.Base(args[0])
		args = args[1:]
	}

	flagSet := flag.NewFlagSet(prog, flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprintf(output, `Usage: %s [options] <typescript_file.ts>

Compiles a TypeScript file and runs the compiled JavaScript.
The output path is the source path with its extension replaced.
Use -- before a path that begins with '-', e.g. %[1]s -- -x.ts

Options:
`, prog)
		flagSet.PrintDefaults()
	}

	toolchainFlag := flagSet.String("toolchain", "", "Path to a toolchain .hcl file or a directory of .hcl files.")
	timeoutFlag := flagSet.Duration("timeout", 0, "Maximum duration of each stage, e.g. 30s. 0 disables the limit.")
	dryRunFlag := flagSet.Bool("dry-run", false, "Print the commands instead of executing them.")
	distinctFlag := flagSet.Bool("distinct-exit-codes", false, "Exit with 2 on usage errors, 3 on compile failure and 4 on run failure instead of 1.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: ExitInvalidFlags, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	if flagSet.NArg() == 0 {
		slog.Debug("No source path provided, printing usage.")
		flagSet.Usage()
		return nil, false, &ExitError{Code: usageCode(*distinctFlag)}
	}
	path := flagSet.Arg(0)
	if flagSet.NArg() > 1 {
		slog.Warn("Ignoring extra arguments.", "args", flagSet.Args()[1:])
	}
	slog.Debug("Source path determined.", "path", path)

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: ExitInvalidFlags, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: ExitInvalidFlags, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		SourcePath:        path,
		ToolchainPath:     *toolchainFlag,
		LogFormat:         logFormat,
		LogLevel:          logLevel,
		Timeout:           *timeoutFlag,
		DryRun:            *dryRunFlag,
		DistinctExitCodes: *distinctFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: ExitInvalidFlags, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
