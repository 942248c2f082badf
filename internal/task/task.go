// Package task defines the descriptor of a single named unit of work and the
// builder used to configure it at registration time.
package task

import (
	"context"
	"strings"

	"github.com/vk/taskgrid/internal/runctx"
)

// Action is one step of a task's work. It returns only once that work has
// completed; asynchronous work is awaited inside the action.
type Action func(ctx context.Context, rc *runctx.Context) error

// Predicate decides whether a task should run. A returned error aborts the run.
type Predicate func(ctx context.Context, rc *runctx.Context) (bool, error)

// ErrorHandler receives an action error. Returning nil marks the error as
// handled; any other value propagates in its place.
type ErrorHandler func(ctx context.Context, rc *runctx.Context, err error) error

// FinallyHandler runs after the actions whether they failed or not. Its error
// replaces whatever error was pending.
type FinallyHandler func(ctx context.Context, rc *runctx.Context) error

// Criterion is a predicate with the message shown when it skips the task.
type Criterion struct {
	Predicate Predicate
	Message   string
}

// Check adapts a plain boolean function into a Predicate.
func Check(fn func(rc *runctx.Context) bool) Predicate {
	return func(_ context.Context, rc *runctx.Context) (bool, error) {
		return fn(rc), nil
	}
}

// Task is the immutable descriptor of a registered task. All configuration
// happens through a Builder before the first run.
type Task struct {
	name            string
	description     string
	index           int
	actions         []Action
	criteria        []Criterion
	dependencies    []string
	continueOnError bool
	errorHandler    ErrorHandler
	finally         FinallyHandler
}

// Name returns the name the task was registered with.
func (t *Task) Name() string { return t.name }

// Key returns the case-insensitive lookup key for the task name.
func (t *Task) Key() string { return Key(t.name) }

// Description returns the optional free text attached to the task.
func (t *Task) Description() string { return t.description }

// Index returns the registration order of the task.
func (t *Task) Index() int { return t.index }

// Actions returns the task's actions in execution order.
func (t *Task) Actions() []Action { return append([]Action(nil), t.actions...) }

// Criteria returns the task's run conditions in declaration order.
func (t *Task) Criteria() []Criterion { return append([]Criterion(nil), t.criteria...) }

// Dependencies returns the names of the tasks this one depends on, in the
// order they were declared.
func (t *Task) Dependencies() []string { return append([]string(nil), t.dependencies...) }

// ContinueOnError reports whether action errors are logged and swallowed.
func (t *Task) ContinueOnError() bool { return t.continueOnError }

// ErrorHandler returns the error handler, or nil.
func (t *Task) ErrorHandler() ErrorHandler { return t.errorHandler }

// FinallyHandler returns the finally handler, or nil.
func (t *Task) FinallyHandler() FinallyHandler { return t.finally }

// IsDelegated reports whether the task has no actions of its own. Such a
// task exists only to group its dependencies.
func (t *Task) IsDelegated() bool { return len(t.actions) == 0 }

// Key normalises a task name for case-insensitive comparison.
func Key(name string) string {
	return strings.ToLower(name)
}
