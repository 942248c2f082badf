package registry

import (
	"errors"
	"fmt"

	"github.com/vk/taskgrid/internal/task"
)

// Factory returns the instance that implements a task.
type Factory func() task.Runner

// Definition declares a task backed by a Go type. The table form keeps a
// task's name and dependencies next to each other and out of the type.
type Definition struct {
	Name            string
	Description     string
	DependsOn       []string
	ContinueOnError bool
	New             Factory
}

// RegisterDefinitions registers each definition in order. A definition
// without a factory becomes a delegated task that only groups dependencies.
func (r *Registry) RegisterDefinitions(defs ...Definition) error {
	for _, def := range defs {
		b, err := r.Register(def.Name)
		if err != nil {
			return err
		}
		b.Description(def.Description).IsDependentOn(def.DependsOn...)
		if def.ContinueOnError {
			b.ContinueOnError()
		}
		if def.New == nil {
			continue
		}
		runner := def.New()
		if runner == nil {
			return fmt.Errorf("task '%s': %w", def.Name, errors.New("factory returned nil"))
		}
		b.Apply(runner)
	}
	return nil
}
