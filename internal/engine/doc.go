// Package engine is the "Execution Layer" of the application. It runs an
// already resolved, ordered list of tasks on the caller's goroutine.
//
// A run passes through the states NotStarted, RunningSetup, RunningTasks,
// RunningTeardown and finally Completed or Failed. Teardown always runs,
// including after a failed setup. For each task the engine evaluates its
// criteria, records delegated tasks, then wraps the actions in task-setup,
// error policy, finally and task-teardown.
//
// Errors propagate out of Run as values. A panic in any user callback is
// recovered and treated as that callback's error.
package engine
