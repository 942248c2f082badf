// Package actions turns declared action specs into executable task actions.
//
// Each action kind ("exec", "echo", ...) is backed by a Factory registered in
// a Kinds table. Task files refer to kinds by name; unknown names fail when
// the task file is bound, not when the task runs.
package actions

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/vk/taskgrid/internal/config"
	"github.com/vk/taskgrid/internal/runctx"
	"github.com/vk/taskgrid/internal/task"
)

// Factory builds an action from its declaration.
type Factory func(spec *config.ActionSpec) (task.Action, error)

// Kinds maps action kind names to their factories.
type Kinds struct {
	factories map[string]Factory
}

// NewKinds returns an empty table.
func NewKinds() *Kinds {
	return &Kinds{factories: make(map[string]Factory)}
}

// Default returns a table holding every built-in kind.
func Default() *Kinds {
	k := NewKinds()
	k.Register("exec", Exec)
	k.Register("echo", Echo)
	k.Register("setvar", SetVar)
	k.Register("fail", Fail)
	k.Register("http", HTTP)
	return k
}

// Register adds a kind. Registering the same name twice is a programming
// error and panics.
func (k *Kinds) Register(kind string, f Factory) {
	if _, exists := k.factories[kind]; exists {
		panic(fmt.Sprintf("action kind '%s' already registered", kind))
	}
	slog.Debug("Registering action kind.", "kind", kind)
	k.factories[kind] = f
}

// Names returns the registered kinds in sorted order.
func (k *Kinds) Names() []string {
	names := make([]string, 0, len(k.factories))
	for name := range k.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build creates the action for a single spec.
func (k *Kinds) Build(spec *config.ActionSpec) (task.Action, error) {
	f, ok := k.factories[spec.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown action kind %q (known: %v)", spec.Kind, k.Names())
	}
	a, err := f(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid %q action: %w", spec.Kind, err)
	}
	return a, nil
}

// BuildAll creates the actions for specs, preserving their order.
func (k *Kinds) BuildAll(specs []*config.ActionSpec) ([]task.Action, error) {
	out := make([]task.Action, 0, len(specs))
	for _, spec := range specs {
		a, err := k.Build(spec)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// Sequence runs actions in order and stops at the first error.
func Sequence(actions ...task.Action) task.Action {
	return func(ctx context.Context, rc *runctx.Context) error {
		for _, a := range actions {
			if err := a(ctx, rc); err != nil {
				return err
			}
		}
		return nil
	}
}

func output(rc *runctx.Context) io.Writer {
	if rc.Out == nil {
		return io.Discard
	}
	return rc.Out
}
