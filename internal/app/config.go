package app

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/vk/taskgrid/internal/verbosity"
)

// Commands an App can perform.
const (
	CommandRun    = "run"
	CommandDryRun = "dry-run"
)

// DefaultTarget is run when neither the command line nor the task file names
// a target.
const DefaultTarget = "Default"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Command string
	// TaskfilePath is a task file or a directory of task files, relative to
	// WorkDir. Empty means taskgrid.hcl, taskgrid.yaml or taskgrid.yml inside
	// WorkDir.
	TaskfilePath string
	WorkDir      string
	// Targets is empty when the user did not name any.
	Targets   []string
	Verbosity verbosity.Level

	LogFormat       string
	HealthcheckPort int
	NotifyURL       string
	// Vars override task file variables.
	Vars map[string]string
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	switch cfg.Command {
	case "":
		cfg.Command = CommandRun
	case CommandRun, CommandDryRun:
	default:
		return nil, fmt.Errorf("unknown command %q", cfg.Command)
	}

	if cfg.WorkDir == "" {
		cfg.WorkDir = "."
	}
	abs, err := filepath.Abs(cfg.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("invalid working directory: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("invalid working directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("working directory %s is not a directory", abs)
	}
	cfg.WorkDir = abs

	switch cfg.LogFormat {
	case "":
		cfg.LogFormat = "text"
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}

	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("invalid healthcheck port %d", cfg.HealthcheckPort)
	}

	if cfg.NotifyURL != "" {
		if _, err := url.ParseRequestURI(cfg.NotifyURL); err != nil {
			return nil, fmt.Errorf("invalid notify URL: %w", err)
		}
	}

	for name := range cfg.Vars {
		if name == "" {
			return nil, errors.New("variable override with an empty name")
		}
	}

	for _, t := range cfg.Targets {
		if t == "" {
			return nil, errors.New("target names must not be empty")
		}
	}

	return &cfg, nil
}
