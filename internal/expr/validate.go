package expr

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// Validate checks that every reference in e points at a known root and that
// every called function exists.
func Validate(e hcl.Expression, vars map[string]cty.Value) error {
	var problems []string

	for _, traversal := range e.Variables() {
		root := traversal.RootName()
		switch root {
		case RootEnv, RootValues:
		case RootVar:
			name, ok := attrName(traversal)
			if !ok {
				problems = append(problems, "var must be followed by a variable name")
				continue
			}
			if _, declared := vars[name]; !declared {
				problems = append(problems, fmt.Sprintf("undeclared variable %q", name))
			}
		case RootRun:
			name, ok := attrName(traversal)
			if _, known := runFields[name]; !ok || !known {
				problems = append(problems, fmt.Sprintf("unknown run attribute %q", name))
			}
		default:
			problems = append(problems, fmt.Sprintf("unknown reference %q", root))
		}
	}

	if syntaxExpr, ok := e.(hclsyntax.Expression); ok {
		known := Functions()
		called := make(map[string]struct{})
		walkForFunctions(syntaxExpr, called)
		for name := range called {
			if _, ok := known[name]; !ok {
				problems = append(problems, fmt.Sprintf("unknown function %q", name))
			}
		}
	}

	if len(problems) == 0 {
		return nil
	}
	sort.Strings(problems)
	return fmt.Errorf("invalid expression at %s: %s", e.Range(), strings.Join(problems, "; "))
}

func attrName(t hcl.Traversal) (string, bool) {
	if len(t) < 2 {
		return "", false
	}
	attr, ok := t[1].(hcl.TraverseAttr)
	if !ok {
		return "", false
	}
	return attr.Name, true
}

// walkForFunctions collects the name of every function called anywhere in e,
// including inside for expressions and template directives.
func walkForFunctions(e hclsyntax.Expression, functions map[string]struct{}) {
	if e == nil {
		return
	}
	hclsyntax.VisitAll(e, func(n hclsyntax.Node) hcl.Diagnostics {
		if call, ok := n.(*hclsyntax.FunctionCallExpr); ok {
			functions[call.Name] = struct{}{}
		}
		return nil
	})
}
