package yaml_adapter

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/taskgrid/internal/config"
	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/expr"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

// translator evaluates the string templates of a single file.
type translator struct {
	path    string
	vars    map[string]cty.Value
	evalCtx *hcl.EvalContext
}

func translateFile(ctx context.Context, pf *parsedFile, model *config.Model) error {
	tr := &translator{path: pf.path, vars: model.Variables, evalCtx: expr.LoadContext(model.Variables)}

	setup, err := tr.actions(pf.root.Setup)
	if err != nil {
		return fmt.Errorf("%s: setup: %w", pf.path, err)
	}
	teardown, err := tr.actions(pf.root.Teardown)
	if err != nil {
		return fmt.Errorf("%s: teardown: %w", pf.path, err)
	}
	model.Setup = append(model.Setup, setup...)
	model.Teardown = append(model.Teardown, teardown...)

	for i, t := range pf.root.Tasks {
		if t == nil || t.Name == "" {
			return fmt.Errorf("%s: task #%d has no name", pf.path, i+1)
		}
		spec, err := tr.task(ctx, t)
		if err != nil {
			return fmt.Errorf("%s: task '%s': %w", pf.path, t.Name, err)
		}
		model.Tasks = append(model.Tasks, spec)
	}
	return nil
}

func (tr *translator) task(ctx context.Context, t *Task) (*config.TaskSpec, error) {
	ctxlog.FromContext(ctx).Debug("Translating YAML task to internal config model.", "task", t.Name)

	for _, dep := range t.DependsOn {
		if dep == "" {
			return nil, fmt.Errorf("depends_on entries must be non-empty")
		}
	}

	spec := &config.TaskSpec{
		Name:            t.Name,
		Description:     t.Description,
		DependsOn:       t.DependsOn,
		ContinueOnError: t.ContinueOnError,
		Source:          tr.path,
	}

	for _, c := range t.Criteria {
		if c == nil || c.When == "" {
			return nil, fmt.Errorf("criteria requires a 'when' expression")
		}
		cond, err := expr.ParseCondition(c.When, tr.path, tr.vars)
		if err != nil {
			return nil, err
		}
		spec.Criteria = append(spec.Criteria, &config.CriterionSpec{Condition: cond, Message: c.Message})
	}

	var err error
	if spec.Actions, err = tr.actions(t.Actions); err != nil {
		return nil, err
	}
	if t.OnError != nil {
		acts, err := tr.actions(t.OnError.Actions)
		if err != nil {
			return nil, fmt.Errorf("on_error: %w", err)
		}
		spec.OnError = &config.ErrorSpec{Actions: acts, Rethrow: t.OnError.Rethrow}
	}
	if len(t.Finally) > 0 {
		if spec.Finally, err = tr.actions(t.Finally); err != nil {
			return nil, fmt.Errorf("finally: %w", err)
		}
	}
	return spec, nil
}

func (tr *translator) actions(actions []*Action) ([]*config.ActionSpec, error) {
	out := make([]*config.ActionSpec, 0, len(actions))
	for _, a := range actions {
		spec, err := tr.action(a)
		if err != nil {
			return nil, err
		}
		out = append(out, spec)
	}
	return out, nil
}

func (tr *translator) action(a *Action) (*config.ActionSpec, error) {
	if a == nil || a.Kind == "" {
		return nil, fmt.Errorf("action requires a 'kind'")
	}
	wrap := func(err error) error { return fmt.Errorf("action %q: %w", a.Kind, err) }

	spec := &config.ActionSpec{Kind: a.Kind, Method: a.Method, ExpectStatus: a.Expect}
	var err error
	for _, arg := range a.Command {
		s, err := tr.template(arg)
		if err != nil {
			return nil, wrap(err)
		}
		spec.Command = append(spec.Command, s)
	}
	if len(a.Env) > 0 {
		spec.Env = make(map[string]string, len(a.Env))
		for k, v := range a.Env {
			if spec.Env[k], err = tr.template(v); err != nil {
				return nil, wrap(err)
			}
		}
	}
	for _, field := range []struct {
		dst *string
		src string
	}{
		{&spec.Dir, a.Dir},
		{&spec.Message, a.Message},
		{&spec.Name, a.Name},
		{&spec.Value, a.Value},
		{&spec.URL, a.URL},
	} {
		if *field.dst, err = tr.template(field.src); err != nil {
			return nil, wrap(err)
		}
	}
	if a.Retry != nil {
		if spec.Retry, err = translateRetry(a.Retry); err != nil {
			return nil, wrap(err)
		}
	}
	return spec, nil
}

func (tr *translator) template(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	return expr.Template(s, tr.path, tr.evalCtx)
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

// variableValue converts a scalar default into a cty value. A missing or
// null default yields cty.NilVal, which must then be set from the command
// line.
func variableValue(v *Variable) (cty.Value, error) {
	if v == nil || v.Default.Kind == 0 {
		return cty.NilVal, nil
	}
	n := &v.Default
	if n.Kind != yaml.ScalarNode {
		return cty.NilVal, fmt.Errorf("default must be a scalar (line %d)", n.Line)
	}
	switch n.ShortTag() {
	case "!!null":
		return cty.NilVal, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return cty.NilVal, err
		}
		return cty.BoolVal(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return cty.NilVal, err
		}
		return cty.NumberIntVal(i), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return cty.NilVal, err
		}
		return cty.NumberFloatVal(f), nil
	default:
		return cty.StringVal(n.Value), nil
	}
}

func sortedKeys(m map[string]*Variable) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
