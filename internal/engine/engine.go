package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/lifecycle"
	"github.com/vk/taskgrid/internal/report"
	"github.com/vk/taskgrid/internal/runctx"
	"github.com/vk/taskgrid/internal/task"
)

// Engine executes ordered task lists. One Engine may serve several runs, one
// at a time.
type Engine struct {
	hooks    lifecycle.Hooks
	now      func() time.Time
	observer func(State)
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now for duration measurement.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithStateObserver registers a callback invoked on every state transition.
func WithStateObserver(fn func(State)) Option {
	return func(e *Engine) { e.observer = fn }
}

// New creates an engine that calls hooks around every run.
func New(hooks lifecycle.Hooks, opts ...Option) *Engine {
	e := &Engine{hooks: hooks, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes tasks in the given order. The returned report holds an entry
// for every task that was reached, and is returned even when err is non-nil.
func (e *Engine) Run(ctx context.Context, tasks []*task.Task, rc *runctx.Context) (*report.Report, error) {
	if rc == nil {
		return nil, errors.New("engine: run context must not be nil")
	}
	r := &run{
		engine: e,
		rc:     rc,
		logger: ctxlog.FromContext(ctx).With("run_id", rc.ID.String()),
		state:  NotStarted,
	}
	return r.execute(ctx, tasks)
}

// run holds the state of a single Run call.
type run struct {
	engine  *Engine
	rc      *runctx.Context
	logger  *slog.Logger
	state   State
	entries []report.Entry
}

func (r *run) execute(ctx context.Context, tasks []*task.Task) (*report.Report, error) {
	started := r.engine.now()
	r.logger.Debug("Engine run started.", "tasks", len(tasks))

	r.transition(RunningSetup)
	err := r.setup(ctx)
	if err == nil {
		r.transition(RunningTasks)
		err = r.runTasks(ctx, tasks)
	} else {
		r.logger.Error("Setup failed, skipping all tasks.", "error", err)
	}

	r.transition(RunningTeardown)
	err = r.teardown(ctx, r.engine.now().Sub(started), err)

	if err != nil {
		r.transition(Failed)
	} else {
		r.transition(Completed)
	}
	r.logger.Debug("Engine run finished.", "entries", len(r.entries), "error", err)
	return report.New(r.entries), err
}

func (r *run) transition(to State) {
	if !isAllowedTransition(r.state, to) {
		panic(fmt.Sprintf("engine: illegal state transition %s -> %s", r.state, to))
	}
	r.logger.Debug("Engine state transition.", "from", r.state, "to", to)
	r.state = to
	if r.engine.observer != nil {
		r.engine.observer(to)
	}
}

func (r *run) setup(ctx context.Context) error {
	for _, h := range r.engine.hooks.Setup {
		if err := protect(func() error { return h(ctx, r.rc) }); err != nil {
			return &LifecycleError{Phase: "setup", Err: err}
		}
	}
	return nil
}

// teardown runs every teardown hook. A hook error never replaces pending; it
// is only returned when the run would otherwise have succeeded.
func (r *run) teardown(ctx context.Context, elapsed time.Duration, pending error) error {
	info := lifecycle.TeardownInfo{Duration: elapsed, Err: pending}
	var first error
	for _, h := range r.engine.hooks.Teardown {
		if err := protect(func() error { return h(ctx, r.rc, info) }); err != nil {
			r.logger.Error("Teardown failed.", "error", err)
			if first == nil {
				first = err
			}
		}
	}
	if pending != nil {
		return pending
	}
	if first != nil {
		return &LifecycleError{Phase: "teardown", Err: first}
	}
	return nil
}

func (r *run) runTasks(ctx context.Context, tasks []*task.Task) error {
	for _, t := range tasks {
		if err := r.runTask(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) runTask(ctx context.Context, t *task.Task) error {
	logger := r.logger.With("task", t.Name())

	for _, c := range t.Criteria() {
		ok, err := r.evaluate(ctx, c.Predicate)
		if err != nil {
			return &TaskError{Task: t.Name(), Err: fmt.Errorf("evaluating criteria: %w", err)}
		}
		if !ok {
			logger.Info("Skipping task.", "reason", c.Message)
			r.record(t, 0, report.Skipped, c.Message)
			return nil
		}
	}

	if t.IsDelegated() {
		logger.Debug("Task has no actions, delegating to dependencies.")
		r.record(t, 0, report.Delegated, "")
		return nil
	}

	logger.Info("Executing task.")
	started := r.engine.now()

	var taskErr error
	if err := r.taskSetup(ctx, t); err != nil {
		taskErr = err
	} else if err := r.runActions(ctx, t); err != nil {
		taskErr = r.handleError(ctx, logger, t, err)
	}

	if fin := t.FinallyHandler(); fin != nil {
		if err := protect(func() error { return fin(ctx, r.rc) }); err != nil {
			if taskErr != nil {
				logger.Warn("Finally handler failed, replacing the pending error.", "pending", taskErr, "error", err)
			}
			taskErr = err
		}
	}

	duration := r.engine.now().Sub(started)
	r.taskTeardown(ctx, logger, t, duration, taskErr)
	r.record(t, duration, report.Executed, "")

	if taskErr != nil {
		logger.Error("Task failed.", "error", taskErr, "duration", duration)
		return &TaskError{Task: t.Name(), Err: taskErr}
	}
	logger.Debug("Task finished.", "duration", duration)
	return nil
}

func (r *run) evaluate(ctx context.Context, pred task.Predicate) (ok bool, err error) {
	err = protect(func() error {
		var perr error
		ok, perr = pred(ctx, r.rc)
		return perr
	})
	return ok, err
}

func (r *run) runActions(ctx context.Context, t *task.Task) error {
	for _, a := range t.Actions() {
		if err := protect(func() error { return a(ctx, r.rc) }); err != nil {
			return err
		}
	}
	return nil
}

// handleError applies the task's error policy. ContinueOnError is checked
// before the error handler.
func (r *run) handleError(ctx context.Context, logger *slog.Logger, t *task.Task, err error) error {
	if t.ContinueOnError() {
		logger.Warn("Task failed, continuing because errors are ignored for it.", "error", err)
		return nil
	}
	h := t.ErrorHandler()
	if h == nil {
		return err
	}
	handled := protect(func() error { return h(ctx, r.rc, err) })
	if handled == nil {
		logger.Info("Task error was handled.", "error", err)
		return nil
	}
	return handled
}

func (r *run) taskSetup(ctx context.Context, t *task.Task) error {
	info := lifecycle.TaskInfo{Task: t}
	for _, h := range r.engine.hooks.TaskSetup {
		if err := protect(func() error { return h(ctx, r.rc, info) }); err != nil {
			return &LifecycleError{Phase: "task setup", Task: t.Name(), Err: err}
		}
	}
	return nil
}

// taskTeardown runs every task-teardown hook. Their errors are logged and
// swallowed.
func (r *run) taskTeardown(ctx context.Context, logger *slog.Logger, t *task.Task, d time.Duration, pending error) {
	info := lifecycle.TaskTeardownInfo{Task: t, Duration: d, Err: pending}
	for _, h := range r.engine.hooks.TaskTeardown {
		if err := protect(func() error { return h(ctx, r.rc, info) }); err != nil {
			logger.Error("Task teardown failed.", "error", err)
		}
	}
}

func (r *run) record(t *task.Task, d time.Duration, status report.Status, reason string) {
	r.entries = append(r.entries, report.Entry{
		TaskName:   t.Name(),
		Duration:   d,
		Status:     status,
		SkipReason: reason,
	})
}

// protect calls fn and converts a panic into a PanicError.
func protect(fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &PanicError{Value: p, Stack: debug.Stack()}
		}
	}()
	return fn()
}
