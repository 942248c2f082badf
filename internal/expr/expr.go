// Package expr evaluates the HCL expressions used in task files: run
// conditions, which are evaluated lazily against the live run, and string
// templates, which are evaluated once while a task file loads.
//
// Expressions can reference four roots:
//
//	var.<name>     task-file variables, after command-line overrides
//	env.<NAME>     the process environment at evaluation time
//	run.<field>    id, target, targets, work_dir, verbosity
//	values.<name>  strings stored in the run context by earlier tasks
//
// The last two only exist at run time.
package expr

import (
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/taskgrid/internal/runctx"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

const (
	RootVar    = "var"
	RootEnv    = "env"
	RootRun    = "run"
	RootValues = "values"
)

var runFields = map[string]struct{}{
	"id":        {},
	"target":    {},
	"targets":   {},
	"work_dir":  {},
	"verbosity": {},
}

// Functions returns the functions available to every expression.
func Functions() map[string]function.Function {
	return map[string]function.Function{
		"lower":    stdlib.LowerFunc,
		"upper":    stdlib.UpperFunc,
		"length":   stdlib.LengthFunc,
		"lookup":   stdlib.LookupFunc,
		"coalesce": stdlib.CoalesceFunc,
	}
}

// LoadContext builds the evaluation context used while a task file loads.
func LoadContext(vars map[string]cty.Value) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			RootVar: objectOf(vars),
			RootEnv: environment(),
		},
		Functions: Functions(),
	}
}

// RunContext extends LoadContext with the state of a live run.
func RunContext(vars map[string]cty.Value, rc *runctx.Context) *hcl.EvalContext {
	evalCtx := LoadContext(vars)
	evalCtx.Variables[RootRun] = runObject(rc)
	evalCtx.Variables[RootValues] = stringsObject(rc.Values())
	return evalCtx
}

func runObject(rc *runctx.Context) cty.Value {
	target := ""
	if len(rc.Targets) > 0 {
		target = rc.Targets[0]
	}
	targets := cty.ListValEmpty(cty.String)
	if len(rc.Targets) > 0 {
		vals := make([]cty.Value, 0, len(rc.Targets))
		for _, t := range rc.Targets {
			vals = append(vals, cty.StringVal(t))
		}
		targets = cty.ListVal(vals)
	}
	return cty.ObjectVal(map[string]cty.Value{
		"id":        cty.StringVal(rc.ID.String()),
		"target":    cty.StringVal(target),
		"targets":   targets,
		"work_dir":  cty.StringVal(rc.WorkDir),
		"verbosity": cty.StringVal(rc.Verbosity.String()),
	})
}

func environment() cty.Value {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		env[name] = value
	}
	return stringsObject(env)
}

func stringsObject(m map[string]string) cty.Value {
	vals := make(map[string]cty.Value, len(m))
	for k, v := range m {
		vals[k] = cty.StringVal(v)
	}
	return cty.ObjectVal(vals)
}

func objectOf(m map[string]cty.Value) cty.Value {
	if len(m) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(m)
}
