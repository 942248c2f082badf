// Package lifecycle defines the hooks the engine calls around a run and
// around each executed task.
//
// Hooks run inline on the engine's goroutine. Setup and task-setup errors
// abort; teardown errors are logged and only surface when nothing else failed.
package lifecycle

import (
	"context"
	"time"

	"github.com/vk/taskgrid/internal/runctx"
	"github.com/vk/taskgrid/internal/task"
)

// TaskInfo describes the task a per-task hook is called for.
type TaskInfo struct {
	Task *task.Task
}

// TaskTeardownInfo is passed to task-teardown hooks.
type TaskTeardownInfo struct {
	Task     *task.Task
	Duration time.Duration
	// Err is the error the task is about to propagate, or nil.
	Err error
}

// TeardownInfo is passed to run teardown hooks.
type TeardownInfo struct {
	Duration time.Duration
	// Err is the error the run is about to return, or nil.
	Err error
}

// Successful reports whether the run completed without error so far.
func (i TeardownInfo) Successful() bool { return i.Err == nil }

type (
	SetupHook        func(ctx context.Context, rc *runctx.Context) error
	TeardownHook     func(ctx context.Context, rc *runctx.Context, info TeardownInfo) error
	TaskSetupHook    func(ctx context.Context, rc *runctx.Context, info TaskInfo) error
	TaskTeardownHook func(ctx context.Context, rc *runctx.Context, info TaskTeardownInfo) error
)

// Hooks groups every hook of a run, each kind in registration order.
type Hooks struct {
	Setup        []SetupHook
	Teardown     []TeardownHook
	TaskSetup    []TaskSetupHook
	TaskTeardown []TaskTeardownHook
}

// Merge returns h followed by other.
func (h Hooks) Merge(other Hooks) Hooks {
	return Hooks{
		Setup:        append(append([]SetupHook(nil), h.Setup...), other.Setup...),
		Teardown:     append(append([]TeardownHook(nil), h.Teardown...), other.Teardown...),
		TaskSetup:    append(append([]TaskSetupHook(nil), h.TaskSetup...), other.TaskSetup...),
		TaskTeardown: append(append([]TaskTeardownHook(nil), h.TaskTeardown...), other.TaskTeardown...),
	}
}
