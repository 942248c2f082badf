package hcl_adapter

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// isExprDefined checks if an HCL expression was actually present in the source
// code. The HCL decoder populates omitted optional fields with zero-width
// placeholder expressions, so a nil check alone is insufficient.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	logger := ctxlog.FromContext(ctx)

	if expr == nil {
		return false
	}

	exprRange := expr.Range()
	isDefined := exprRange.End.Byte > exprRange.Start.Byte

	logger.Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", exprRange.String(),
		"is_defined", isDefined,
	)
	return isDefined
}

// parseDependsOn validates that depends_on is a list literal of task names
// and returns those names.
func parseDependsOn(ctx context.Context, expr hcl.Expression) ([]string, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	if !isExprDefined(ctx, expr, "depends_on") {
		return nil, diags
	}

	tuple, ok := expr.(*hclsyntax.TupleConsExpr)
	if !ok {
		return nil, append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid depends_on value",
			Detail:   "The 'depends_on' attribute must be a list of task names.",
			Subject:  expr.Range().Ptr(),
		})
	}

	names := make([]string, 0, len(tuple.Exprs))
	for _, item := range tuple.Exprs {
		v, valDiags := item.Value(nil)
		diags = append(diags, valDiags...)
		if valDiags.HasErrors() {
			continue
		}
		if v.IsNull() || !v.IsKnown() || v.Type() != cty.String || v.AsString() == "" {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid depends_on entry",
				Detail:   "Each 'depends_on' entry must be a non-empty string literal.",
				Subject:  item.Range().Ptr(),
			})
			continue
		}
		names = append(names, v.AsString())
	}
	return names, diags
}
