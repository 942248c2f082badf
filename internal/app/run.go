package app

import (
	"context"
	"fmt"

	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/dag"
	"github.com/vk/taskgrid/internal/engine"
	"github.com/vk/taskgrid/internal/notify"
	"github.com/vk/taskgrid/internal/report"
	"github.com/vk/taskgrid/internal/runctx"
	"github.com/vk/taskgrid/internal/verbosity"
)

// Run executes the configured command: a real run or a dry run.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.ctx = ctx
	a.logger.Debug("App.Run method started.", "command", a.config.Command)

	if err := a.startHealthcheckServer(); err != nil {
		return err
	}
	defer a.closeHealthCheckServer()

	targets := a.Targets()
	graph := dag.New(a.registry.Tasks())
	ordered, err := graph.Resolve(targets...)
	if err != nil {
		return err
	}
	a.logger.Debug("Execution order resolved.", "targets", targets, "tasks", len(ordered))

	if a.config.Command == CommandDryRun {
		if err := graph.Validate(); err != nil {
			a.logger.Warn("Task file has problems outside the selected targets.", "error", err)
		}
		return engine.DryRun(ctx, ordered, a.outW)
	}

	rc := runctx.New(a.config.WorkDir, targets, a.config.Verbosity, a.outW)
	a.logger.Info("🚀 Starting run...", "run_id", rc.ID.String(), "targets", targets)

	eng := engine.New(a.registry.Hooks().Merge(a.metrics.Hooks()))
	rep, runErr := eng.Run(ctx, ordered, rc)

	if rep != nil {
		a.metrics.ObserveReport(rep)
		if a.config.Verbosity > verbosity.Quiet {
			if err := report.Print(a.outW, rep, a.config.Verbosity); err != nil {
				a.logger.Warn("Failed to print report.", "error", err)
			}
		}
	}

	if a.notifier != nil {
		if err := a.notifier.Notify(ctx, notify.NewEvent(rc, rep, runErr)); err != nil {
			a.logger.Warn("Run notification failed.", "error", err)
		}
	}

	if runErr != nil {
		a.logger.Error("🏁 Run failed.", "run_id", rc.ID.String())
		return fmt.Errorf("run %s failed: %w", rc.ID, runErr)
	}
	a.logger.Info("🏁 Run finished.", "run_id", rc.ID.String())
	return nil
}
