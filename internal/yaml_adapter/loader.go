// Package yaml_adapter reads task files written in YAML into the
// format-agnostic config model. The document shape mirrors the HCL format:
//
//	default: Pack
//	variables:
//	  configuration: {default: Release}
//	tasks:
//	  - name: Build
//	    depends_on: [Restore]
//	    criteria:
//	      - when: var.configuration == "Release"
//	        message: only release builds
//	    actions:
//	      - kind: exec
//	        command: [go, build, "./..."]
//
// Criteria are HCL expressions kept as strings and string attributes may use
// ${...} templates, so both formats share one expression language.
package yaml_adapter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vk/taskgrid/internal/config"
	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/fsutil"
	"gopkg.in/yaml.v3"
)

// Extensions are the file extensions this loader reads.
var Extensions = []string{".yaml", ".yml"}

// Loader is the YAML implementation of the config.Loader interface.
type Loader struct {
	overrides map[string]string
}

// NewLoader creates a YAML task file loader. overrides behave as in the HCL
// loader.
func NewLoader(overrides map[string]string) *Loader {
	return &Loader{overrides: overrides}
}

type parsedFile struct {
	path string
	root fileRoot
}

// Load decodes every YAML file found under paths. Unknown keys are errors.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("YAML loader started.", "path_count", len(paths))

	files, err := fsutil.Collect(paths, Extensions...)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered YAML files.", "count", len(files))

	model := config.NewModel()
	parsed := make([]*parsedFile, 0, len(files))
	for _, path := range files {
		pf, err := decodeFile(path)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, pf)

		if err := model.Merge(&config.Model{Default: pf.root.Default}); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		for _, name := range sortedKeys(pf.root.Variables) {
			if _, exists := model.Variables[name]; exists {
				return nil, fmt.Errorf("%s: variable %q declared twice", path, name)
			}
			v, err := variableValue(pf.root.Variables[name])
			if err != nil {
				return nil, fmt.Errorf("%s: variable %q: %w", path, name, err)
			}
			model.Variables[name] = v
		}
	}

	if err := config.ApplyOverrides(ctx, model.Variables, l.overrides); err != nil {
		return nil, err
	}

	for _, pf := range parsed {
		if err := translateFile(ctx, pf, model); err != nil {
			return nil, err
		}
	}

	logger.Debug("YAML loading complete.", "tasks", len(model.Tasks), "variables", len(model.Variables))
	return model, nil
}

func decodeFile(path string) (*parsedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read YAML file %s: %w", path, err)
	}
	pf := &parsedFile{path: path}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&pf.root); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode YAML file %s: %w", path, err)
	}
	return pf, nil
}
