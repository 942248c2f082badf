// This file contains the logic for translating HCL schema structs into the
// format-agnostic configuration model defined in the config package.

package hcl_adapter

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/vk/taskgrid/internal/config"
	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/expr"
)

func (l *Loader) translateFile(ctx context.Context, pf *parsedFile, model *config.Model, evalCtx *hcl.EvalContext) error {
	for _, h := range pf.root.Setup {
		acts, err := translateActions(h.Actions, evalCtx)
		if err != nil {
			return fmt.Errorf("%s: setup: %w", pf.path, err)
		}
		model.Setup = append(model.Setup, acts...)
	}
	for _, h := range pf.root.Teardown {
		acts, err := translateActions(h.Actions, evalCtx)
		if err != nil {
			return fmt.Errorf("%s: teardown: %w", pf.path, err)
		}
		model.Teardown = append(model.Teardown, acts...)
	}
	for _, t := range pf.root.Tasks {
		spec, err := l.translateTask(ctx, pf, t, model, evalCtx)
		if err != nil {
			return fmt.Errorf("%s: task '%s': %w", pf.path, t.Name, err)
		}
		model.Tasks = append(model.Tasks, spec)
	}
	return nil
}

// translateTask converts the HCL-specific task schema into the agnostic model.
func (l *Loader) translateTask(ctx context.Context, pf *parsedFile, t *Task, model *config.Model, evalCtx *hcl.EvalContext) (*config.TaskSpec, error) {
	logger := ctxlog.FromContext(ctx).With("task", t.Name)
	logger.Debug("Translating HCL task to internal config model.")

	deps, diags := parseDependsOn(ctx, t.DependsOn)
	if diags.HasErrors() {
		return nil, diags
	}

	spec := &config.TaskSpec{
		Name:            t.Name,
		Description:     t.Description,
		DependsOn:       deps,
		ContinueOnError: t.ContinueOnError,
		Source:          pf.path,
	}

	for _, c := range t.Criteria {
		src := string(c.When.Range().SliceBytes(pf.file.Bytes))
		cond, err := expr.NewCondition(c.When, src, model.Variables)
		if err != nil {
			return nil, err
		}
		spec.Criteria = append(spec.Criteria, &config.CriterionSpec{Condition: cond, Message: c.Message})
	}

	var err error
	if spec.Actions, err = translateActions(t.Actions, evalCtx); err != nil {
		return nil, err
	}
	if t.OnError != nil {
		acts, err := translateActions(t.OnError.Actions, evalCtx)
		if err != nil {
			return nil, fmt.Errorf("on_error: %w", err)
		}
		spec.OnError = &config.ErrorSpec{Actions: acts, Rethrow: t.OnError.Rethrow}
	}
	if t.Finally != nil {
		if spec.Finally, err = translateActions(t.Finally.Actions, evalCtx); err != nil {
			return nil, fmt.Errorf("finally: %w", err)
		}
	}
	return spec, nil
}

func translateActions(actions []*Action, evalCtx *hcl.EvalContext) ([]*config.ActionSpec, error) {
	out := make([]*config.ActionSpec, 0, len(actions))
	for _, a := range actions {
		spec, err := translateAction(a, evalCtx)
		if err != nil {
			return nil, err
		}
		out = append(out, spec)
	}
	return out, nil
}

// translateAction decodes an action body with variables and environment in
// scope.
func translateAction(a *Action, evalCtx *hcl.EvalContext) (*config.ActionSpec, error) {
	var args ActionArgs
	if diags := gohcl.DecodeBody(a.Body, evalCtx, &args); diags.HasErrors() {
		return nil, fmt.Errorf("action %q: %w", a.Kind, diags)
	}

	spec := &config.ActionSpec{
		Kind:    a.Kind,
		Command: args.Command,
		Dir:     args.Dir,
		Env:     args.Env,
		Message: args.Message,
		Name:    args.Name,
		Value:   args.Value,
		URL:     args.URL,
		Method:  args.Method,

		ExpectStatus: args.Expect,
	}
	if args.Retry != nil {
		retry, err := translateRetry(args.Retry)
		if err != nil {
			return nil, fmt.Errorf("action %q: %w", a.Kind, err)
		}
		spec.Retry = retry
	}
	return spec, nil
}

func translateRetry(r *Retry) (*config.RetrySpec, error) {
	if r.Attempts < 1 {
		return nil, fmt.Errorf("retry attempts must be at least 1, got %d", r.Attempts)
	}
	spec := &config.RetrySpec{Attempts: uint64(r.Attempts)}
	var err error
	if r.Initial != "" {
		if spec.Initial, err = time.ParseDuration(r.Initial); err != nil {
			return nil, fmt.Errorf("retry initial: %w", err)
		}
	}
	if r.Max != "" {
		if spec.Max, err = time.ParseDuration(r.Max); err != nil {
			return nil, fmt.Errorf("retry max: %w", err)
		}
	}
	return spec, nil
}
