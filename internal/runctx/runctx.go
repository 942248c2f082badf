// Package runctx holds the state shared by every hook, predicate and action
// during a single run.
//
// A Context is created once per engine invocation and handed to each
// participant by pointer. Execution is strictly sequential, so the struct
// carries no locks; callers that start their own goroutines must not touch
// it from them.
package runctx

import (
	"io"
	"maps"
	"os"

	"github.com/google/uuid"
	"github.com/vk/taskgrid/internal/verbosity"
)

// Context is the mutable state of one run.
type Context struct {
	// ID uniquely identifies the run in logs, metrics and notifications.
	ID        uuid.UUID
	Targets   []string
	WorkDir   string
	Verbosity verbosity.Level
	// Out receives user-facing output produced by actions.
	Out io.Writer

	values map[string]string
}

// New returns a Context with a fresh run ID.
func New(workDir string, targets []string, level verbosity.Level, out io.Writer) *Context {
	if out == nil {
		out = os.Stdout
	}
	return &Context{
		ID:        uuid.New(),
		Targets:   append([]string(nil), targets...),
		WorkDir:   workDir,
		Verbosity: level,
		Out:       out,
		values:    make(map[string]string),
	}
}

// Set stores a value that later tasks can read.
func (c *Context) Set(name, value string) {
	if c.values == nil {
		c.values = make(map[string]string)
	}
	c.values[name] = value
}

// Get returns a stored value and whether it was present.
func (c *Context) Get(name string) (string, bool) {
	v, ok := c.values[name]
	return v, ok
}

// Values returns a copy of every stored value.
func (c *Context) Values() map[string]string {
	return maps.Clone(c.values)
}
