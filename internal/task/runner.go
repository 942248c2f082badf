package task

import (
	"context"

	"github.com/vk/taskgrid/internal/runctx"
)

// Runner is the contract for tasks implemented as Go types rather than
// chains of closures.
type Runner interface {
	Run(ctx context.Context, rc *runctx.Context) error
}

// Skipper is implemented by runners that decide on their own whether to run.
type Skipper interface {
	ShouldRun(ctx context.Context, rc *runctx.Context) bool
}

// ErrorReporter is implemented by runners that handle their own errors.
type ErrorReporter interface {
	OnError(ctx context.Context, rc *runctx.Context, err error) error
}

// Finalizer is implemented by runners that need cleanup after Run.
type Finalizer interface {
	Finally(ctx context.Context, rc *runctx.Context) error
}

// Apply configures b from r. The boolean ShouldRun of a Skipper becomes a
// criterion without a message.
func (b *Builder) Apply(r Runner) *Builder {
	if s, ok := r.(Skipper); ok {
		b.When(func(ctx context.Context, rc *runctx.Context) (bool, error) {
			return s.ShouldRun(ctx, rc), nil
		})
	}
	b.Does(r.Run)
	if er, ok := r.(ErrorReporter); ok {
		b.OnError(er.OnError)
	}
	if f, ok := r.(Finalizer); ok {
		b.Finally(f.Finally)
	}
	return b
}
