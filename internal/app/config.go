package app

import (
	"errors"
	"time"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	SourcePath    string // the TypeScript file to compile and run; may be empty
	ToolchainPath string // optional .hcl file or directory

	LogFormat string
	LogLevel  string

	// Timeout bounds each stage; zero disables it.
	Timeout           time.Duration
	DryRun            bool
	DistinctExitCodes bool
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.Timeout < 0 {
		return nil, errors.New("timeout must not be negative")
	}
	return &cfg, nil
}
