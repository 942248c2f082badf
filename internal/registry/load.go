package registry

import (
	"context"
	"fmt"

	"github.com/vk/taskgrid/internal/actions"
	"github.com/vk/taskgrid/internal/config"
	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/lifecycle"
	"github.com/vk/taskgrid/internal/runctx"
	"github.com/vk/taskgrid/internal/task"
)

// boundTask is a task spec whose actions have been built but that is not
// registered yet.
type boundTask struct {
	spec    *config.TaskSpec
	actions []task.Action
	onError task.ErrorHandler
	finally task.FinallyHandler
}

// PopulateFromModel registers every task and hook declared in a loaded task
// file, building actions through kinds. Everything is built and checked
// before the first registration, so on error the registry is left as it was.
func (r *Registry) PopulateFromModel(ctx context.Context, model *config.Model, kinds *actions.Kinds) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Registry binding task file model...", "tasks", len(model.Tasks))

	bound := make([]*boundTask, 0, len(model.Tasks))
	pending := make(map[string]string, len(model.Tasks))
	for _, spec := range model.Tasks {
		bt, err := bindTask(spec, kinds)
		if err == nil {
			err = r.checkName(spec.Name, pending)
		}
		if err != nil {
			if spec.Source != "" {
				return fmt.Errorf("%s: %w", spec.Source, err)
			}
			return err
		}
		pending[task.Key(spec.Name)] = spec.Name
		bound = append(bound, bt)
	}

	var setup, teardown []task.Action
	if len(model.Setup) > 0 {
		var err error
		if setup, err = kinds.BuildAll(model.Setup); err != nil {
			return fmt.Errorf("setup: %w", err)
		}
	}
	if len(model.Teardown) > 0 {
		var err error
		if teardown, err = kinds.BuildAll(model.Teardown); err != nil {
			return fmt.Errorf("teardown: %w", err)
		}
	}

	for _, bt := range bound {
		b, err := r.Register(bt.spec.Name)
		if err != nil {
			return err
		}
		bt.apply(b)
	}
	if len(setup) > 0 {
		run := actions.Sequence(setup...)
		r.Setup(func(ctx context.Context, rc *runctx.Context) error { return run(ctx, rc) })
	}
	if len(teardown) > 0 {
		run := actions.Sequence(teardown...)
		r.Teardown(func(ctx context.Context, rc *runctx.Context, _ lifecycle.TeardownInfo) error { return run(ctx, rc) })
	}

	logger.Debug("Registry populated from model.", "registered", r.Len())
	return nil
}

func bindTask(spec *config.TaskSpec, kinds *actions.Kinds) (*boundTask, error) {
	bt := &boundTask{spec: spec}

	var err error
	if bt.actions, err = kinds.BuildAll(spec.Actions); err != nil {
		return nil, fmt.Errorf("task '%s': %w", spec.Name, err)
	}

	if spec.OnError != nil {
		handlerActs, err := kinds.BuildAll(spec.OnError.Actions)
		if err != nil {
			return nil, fmt.Errorf("task '%s' on_error: %w", spec.Name, err)
		}
		run := actions.Sequence(handlerActs...)
		rethrow := spec.OnError.Rethrow
		bt.onError = func(ctx context.Context, rc *runctx.Context, cause error) error {
			if err := run(ctx, rc); err != nil {
				return err
			}
			if rethrow {
				return cause
			}
			return nil
		}
	}

	if len(spec.Finally) > 0 {
		finallyActs, err := kinds.BuildAll(spec.Finally)
		if err != nil {
			return nil, fmt.Errorf("task '%s' finally: %w", spec.Name, err)
		}
		run := actions.Sequence(finallyActs...)
		bt.finally = func(ctx context.Context, rc *runctx.Context) error { return run(ctx, rc) }
	}
	return bt, nil
}

func (bt *boundTask) apply(b *task.Builder) {
	spec := bt.spec
	b.Description(spec.Description).IsDependentOn(spec.DependsOn...)
	for _, c := range spec.Criteria {
		b.WithCriteria(c.Condition.Evaluate, c.Message)
	}
	b.Does(bt.actions...)
	if spec.ContinueOnError {
		b.ContinueOnError()
	}
	if bt.onError != nil {
		b.OnError(bt.onError)
	}
	if bt.finally != nil {
		b.Finally(bt.finally)
	}
}
