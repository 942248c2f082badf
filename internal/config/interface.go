package config

import (
	"context"

	"github.com/vk/taskgrid/internal/runctx"
)

// Loader is the interface for a format-specific task file loader.
type Loader interface {
	// Load reads every task file found under paths and merges them into a
	// single format-agnostic model.
	Load(ctx context.Context, paths ...string) (*Model, error)
}

// Condition is a run condition that is evaluated lazily, when the task it
// guards is reached.
type Condition interface {
	Evaluate(ctx context.Context, rc *runctx.Context) (bool, error)
	// String returns the source text of the condition.
	String() string
}
