package config

import (
	"context"
	"fmt"
	"sort"

	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// ApplyOverrides sets command-line values on vars and checks that every
// variable ends up with a value; a null default counts as no value. An
// override of a declared variable is converted to the type of its default;
// an undeclared one is added as a string.
func ApplyOverrides(ctx context.Context, vars map[string]cty.Value, overrides map[string]string) error {
	logger := ctxlog.FromContext(ctx)

	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		raw := cty.StringVal(overrides[name])
		declared, ok := vars[name]
		if !ok || declared.Type() == cty.NilType || declared.IsNull() {
			logger.Debug("Variable set from command line.", "name", name)
			vars[name] = raw
			continue
		}
		converted, err := convert.Convert(raw, declared.Type())
		if err != nil {
			return fmt.Errorf("variable %q: cannot use %q as %s", name, overrides[name], declared.Type().FriendlyName())
		}
		vars[name] = converted
	}

	missing := make([]string, 0)
	for name, v := range vars {
		if v.Type() == cty.NilType || v.IsNull() {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("variable %q has no default and was not set", missing[0])
	}
	return nil
}
