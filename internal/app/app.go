package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/vk/taskgrid/internal/actions"
	"github.com/vk/taskgrid/internal/config"
	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/metrics"
	"github.com/vk/taskgrid/internal/notify"
	"github.com/vk/taskgrid/internal/registry"
)

// Version is set at build time with -ldflags "-X .../internal/app.Version=...".
var Version = "dev"

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	ctx        context.Context
	config     *Config
	model      *config.Model
	registry   *registry.Registry
	metrics    *metrics.Metrics
	notifier   notify.Notifier
	httpServer *http.Server
	healthAddr string
}

// NewApp is the constructor for the main application. Task output and the
// report go to outW, logs go to logW. Go modules are registered before the
// task file, so they own the lowest registration indices.
func NewApp(outW, logW io.Writer, cfg *Config, modules ...registry.Module) (*App, error) {
	logger := newLogger(cfg.Verbosity, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.", "verbosity", cfg.Verbosity.String())

	model, err := loadModel(ctx, cfg)
	if err != nil {
		return nil, err
	}

	reg := registry.New()
	if err := reg.RegisterModules(modules...); err != nil {
		return nil, err
	}
	logger.Debug("All Go modules registered.", "count", len(modules))

	if err := reg.PopulateFromModel(ctx, model, actions.Default()); err != nil {
		return nil, fmt.Errorf("failed to bind task file: %w", err)
	}
	logger.Debug("Registry populated.", "tasks", reg.Len())

	a := &App{
		outW:     outW,
		logger:   logger,
		ctx:      ctx,
		config:   cfg,
		model:    model,
		registry: reg,
		metrics:  metrics.New(),
	}
	if cfg.NotifyURL != "" {
		a.notifier = &notify.SocketIO{URL: cfg.NotifyURL, Timeout: 10 * time.Second}
	}
	return a, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Metrics returns the application's metrics. This is primarily for testing.
func (a *App) Metrics() *metrics.Metrics {
	return a.metrics
}

// Targets returns the targets a run will resolve: the configured ones, else
// the task file's default, else DefaultTarget.
func (a *App) Targets() []string {
	switch {
	case len(a.config.Targets) > 0:
		return append([]string(nil), a.config.Targets...)
	case a.model.Default != "":
		return []string{a.model.Default}
	default:
		return []string{DefaultTarget}
	}
}
