package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vk/taskgrid/internal/lifecycle"
	"github.com/vk/taskgrid/internal/task"
)

// ErrDuplicateTask is matched by every DuplicateTaskError.
var ErrDuplicateTask = errors.New("duplicate task")

// DuplicateTaskError reports a second registration of a task name.
type DuplicateTaskError struct {
	Name string
	// Existing is the name as it was first registered.
	Existing string
}

func (e *DuplicateTaskError) Error() string {
	if e.Existing != "" && e.Existing != e.Name {
		return fmt.Sprintf("another task with the name '%s' has already been added (as '%s')", e.Name, e.Existing)
	}
	return fmt.Sprintf("another task with the name '%s' has already been added", e.Name)
}

func (e *DuplicateTaskError) Unwrap() error { return ErrDuplicateTask }

// Module is the interface Go packages implement to contribute tasks and hooks.
type Module interface {
	Register(r *Registry) error
}

// Registry holds the tasks and hooks of a single application instance.
type Registry struct {
	tasks []*task.Task
	byKey map[string]*task.Task
	hooks lifecycle.Hooks
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{byKey: make(map[string]*task.Task)}
}

// Register declares a task and returns its builder.
func (r *Registry) Register(name string) (*task.Builder, error) {
	if err := r.checkName(name, nil); err != nil {
		return nil, err
	}

	b := task.NewBuilder(name, len(r.tasks))
	r.tasks = append(r.tasks, b.Task())
	r.byKey[task.Key(name)] = b.Task()
	slog.Debug("Registering task.", "name", name, "index", b.Task().Index())
	return b, nil
}

// checkName reports whether name can be registered. pending maps the keys of
// names about to be registered to their spelling.
func (r *Registry) checkName(name string, pending map[string]string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("task name must not be empty")
	}
	key := task.Key(name)
	if existing, ok := r.byKey[key]; ok {
		return &DuplicateTaskError{Name: name, Existing: existing.Name()}
	}
	if existing, ok := pending[key]; ok {
		return &DuplicateTaskError{Name: name, Existing: existing}
	}
	return nil
}

// MustRegister is Register for static Go declarations, where a duplicate is
// a programming error. It panics instead of returning the error.
func (r *Registry) MustRegister(name string) *task.Builder {
	b, err := r.Register(name)
	if err != nil {
		panic(err)
	}
	return b
}

// Lookup finds a task by case-insensitive name.
func (r *Registry) Lookup(name string) (*task.Task, bool) {
	t, ok := r.byKey[task.Key(name)]
	return t, ok
}

// Tasks returns every task in registration order.
func (r *Registry) Tasks() []*task.Task {
	return append([]*task.Task(nil), r.tasks...)
}

// Len returns the number of registered tasks.
func (r *Registry) Len() int { return len(r.tasks) }

// Setup adds a hook that runs once before the first task.
func (r *Registry) Setup(h lifecycle.SetupHook) {
	r.hooks.Setup = append(r.hooks.Setup, h)
}

// Teardown adds a hook that runs once after the last task, even on failure.
func (r *Registry) Teardown(h lifecycle.TeardownHook) {
	r.hooks.Teardown = append(r.hooks.Teardown, h)
}

// TaskSetup adds a hook that runs before every executed task.
func (r *Registry) TaskSetup(h lifecycle.TaskSetupHook) {
	r.hooks.TaskSetup = append(r.hooks.TaskSetup, h)
}

// TaskTeardown adds a hook that runs after every executed task, even on failure.
func (r *Registry) TaskTeardown(h lifecycle.TaskTeardownHook) {
	r.hooks.TaskTeardown = append(r.hooks.TaskTeardown, h)
}

// Hooks returns the registered hooks.
func (r *Registry) Hooks() lifecycle.Hooks {
	return lifecycle.Hooks{}.Merge(r.hooks)
}

// RegisterModules lets each module contribute its tasks and hooks.
func (r *Registry) RegisterModules(modules ...Module) error {
	for _, m := range modules {
		if err := m.Register(r); err != nil {
			return fmt.Errorf("module %T failed to register: %w", m, err)
		}
	}
	return nil
}
