package dag

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vk/taskgrid/internal/task"
)

var (
	ErrUnknownTask      = errors.New("unknown task")
	ErrCyclicDependency = errors.New("cyclic dependency detected")
)

// UnknownTaskError reports a target or a dependency that names no task.
type UnknownTaskError struct {
	Name string
	// RequiredBy is the task declaring the dependency. It is empty when
	// Name was requested as a target.
	RequiredBy string
}

func (e *UnknownTaskError) Error() string {
	if e.RequiredBy == "" {
		return fmt.Sprintf("the target '%s' was not found", e.Name)
	}
	return fmt.Sprintf("task '%s' is depending on unknown task '%s'", e.RequiredBy, e.Name)
}

func (e *UnknownTaskError) Unwrap() error { return ErrUnknownTask }

// CyclicDependencyError reports a dependency cycle. Chain starts and ends
// with the same task.
type CyclicDependencyError struct {
	Chain []string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCyclicDependency, strings.Join(e.Chain, " -> "))
}

func (e *CyclicDependencyError) Unwrap() error { return ErrCyclicDependency }

// Graph is an immutable arena of task nodes.
type Graph struct {
	// nodes stores every node, keyed by lower-cased task name.
	nodes map[string]*node
	// ordered holds the nodes in registration order.
	ordered []*node
}

// node represents a single task. It is un-exported to keep callers working
// with task names instead of graph internals.
type node struct {
	task *task.Task
	// deps holds the declared dependency names, still unresolved.
	deps []string
}

type color uint8

const (
	white color = iota // not visited
	gray               // on the current path
	black              // fully explored
)
