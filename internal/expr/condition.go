package expr

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/taskgrid/internal/runctx"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Condition is a boolean expression evaluated when its task is reached.
type Condition struct {
	expr hcl.Expression
	src  string
	vars map[string]cty.Value
}

// NewCondition wraps an already parsed expression. References are checked
// now so that typos fail at load time instead of mid-run.
func NewCondition(e hcl.Expression, src string, vars map[string]cty.Value) (*Condition, error) {
	if err := Validate(e, vars); err != nil {
		return nil, err
	}
	return &Condition{expr: e, src: src, vars: vars}, nil
}

// ParseCondition parses src as an HCL expression.
func ParseCondition(src, filename string, vars map[string]cty.Value) (*Condition, error) {
	e, diags := hclsyntax.ParseExpression([]byte(src), filename, hcl.Pos{Line: 1, Column: 1, Byte: 0})
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse condition %q: %w", src, diags)
	}
	return NewCondition(e, src, vars)
}

// Evaluate computes the condition against the current run.
func (c *Condition) Evaluate(_ context.Context, rc *runctx.Context) (bool, error) {
	v, diags := c.expr.Value(RunContext(c.vars, rc))
	if diags.HasErrors() {
		return false, fmt.Errorf("failed to evaluate condition %q: %w", c.src, diags)
	}
	if v.IsNull() || !v.IsKnown() {
		return false, fmt.Errorf("condition %q did not produce a value", c.src)
	}
	b, err := convert.Convert(v, cty.Bool)
	if err != nil {
		return false, fmt.Errorf("condition %q must be a bool, got %s", c.src, v.Type().FriendlyName())
	}
	return b.True(), nil
}

func (c *Condition) String() string { return c.src }

// Template evaluates src as an HCL string template, e.g. "v${var.version}".
func Template(src, filename string, evalCtx *hcl.EvalContext) (string, error) {
	e, diags := hclsyntax.ParseTemplate([]byte(src), filename, hcl.Pos{Line: 1, Column: 1, Byte: 0})
	if diags.HasErrors() {
		return "", fmt.Errorf("failed to parse template %q: %w", src, diags)
	}
	v, diags := e.Value(evalCtx)
	if diags.HasErrors() {
		return "", fmt.Errorf("failed to evaluate template %q: %w", src, diags)
	}
	s, err := convert.Convert(v, cty.String)
	if err != nil || s.IsNull() {
		return "", fmt.Errorf("template %q did not produce a string", src)
	}
	return s.AsString(), nil
}
