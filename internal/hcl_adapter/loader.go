package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/taskgrid/internal/config"
	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/expr"
	"github.com/vk/taskgrid/internal/fsutil"
)

// Extension is the file extension this loader reads.
const Extension = ".hcl"

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	overrides map[string]string
}

// NewLoader creates a new HCL task file loader. overrides replace variable
// defaults and are converted to each variable's declared type.
func NewLoader(overrides map[string]string) *Loader {
	return &Loader{overrides: overrides}
}

type parsedFile struct {
	path string
	file *hcl.File
	root fileRoot
}

// Load parses every .hcl file found under paths. Variables from all files are
// collected first, so any file may reference a variable declared in another.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := fsutil.Collect(paths, Extension)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	parsed := make([]*parsedFile, 0, len(files))
	model := config.NewModel()

	for _, path := range files {
		hclFile, diags := parser.ParseHCLFile(path)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
		}

		pf := &parsedFile{path: path, file: hclFile}
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &pf.root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
		}
		parsed = append(parsed, pf)

		if pf.root.Default != "" {
			if err := model.Merge(&config.Model{Default: pf.root.Default}); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
		}
		for _, v := range pf.root.Variables {
			if _, exists := model.Variables[v.Name]; exists {
				return nil, fmt.Errorf("%s: variable %q declared twice", path, v.Name)
			}
			model.Variables[v.Name] = v.Default
		}
	}

	if err := config.ApplyOverrides(ctx, model.Variables, l.overrides); err != nil {
		return nil, err
	}

	evalCtx := expr.LoadContext(model.Variables)
	for _, pf := range parsed {
		if err := l.translateFile(ctx, pf, model, evalCtx); err != nil {
			return nil, err
		}
	}

	logger.Debug("HCL loading complete.", "tasks", len(model.Tasks), "variables", len(model.Variables))
	return model, nil
}
