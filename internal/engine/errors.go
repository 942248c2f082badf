package engine

import (
	"fmt"
)

// TaskError carries the error a task propagated out of the run.
type TaskError struct {
	Task string
	Err  error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task '%s' failed: %v", e.Task, e.Err)
}

func (e *TaskError) Unwrap() error { return e.Err }

// LifecycleError carries a failure of a setup or teardown hook.
type LifecycleError struct {
	// Phase is "setup", "teardown" or "task setup".
	Phase string
	// Task is set for per-task phases.
	Task string
	Err  error
}

func (e *LifecycleError) Error() string {
	if e.Task != "" {
		return fmt.Sprintf("%s for '%s' failed: %v", e.Phase, e.Task, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Phase, e.Err)
}

func (e *LifecycleError) Unwrap() error { return e.Err }

// PanicError wraps a value recovered from a panicking callback.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap exposes the panic value when it was itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
