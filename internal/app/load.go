package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/taskgrid/internal/config"
	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/fsutil"
	"github.com/vk/taskgrid/internal/hcl_adapter"
	"github.com/vk/taskgrid/internal/yaml_adapter"
)

// defaultTaskfiles are looked up in the working directory, in this order,
// when no task file is given.
var defaultTaskfiles = []string{"taskgrid.hcl", "taskgrid.yaml", "taskgrid.yml"}

// findTaskfile returns the task file or directory to load. A relative path
// is resolved against the working directory.
func findTaskfile(workDir, path string) (string, error) {
	if path != "" {
		if !filepath.IsAbs(path) {
			path = filepath.Join(workDir, path)
		}
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("task file not found: %w", err)
		}
		return path, nil
	}
	for _, name := range defaultTaskfiles {
		candidate := filepath.Join(workDir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no task file found in %s (looked for %s)", workDir, strings.Join(defaultTaskfiles, ", "))
}

// newLoader picks the loader for path by extension. A directory must hold
// task files of a single format.
func newLoader(path string, vars map[string]string) (config.Loader, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		ext := filepath.Ext(path)
		switch {
		case ext == hcl_adapter.Extension:
			return hcl_adapter.NewLoader(vars), nil
		case isYAML(ext):
			return yaml_adapter.NewLoader(vars), nil
		}
		return nil, fmt.Errorf("unsupported task file extension %q", ext)
	}

	hclFiles, err := fsutil.Collect([]string{path}, hcl_adapter.Extension)
	if err != nil {
		return nil, err
	}
	yamlFiles, err := fsutil.Collect([]string{path}, yaml_adapter.Extensions...)
	if err != nil {
		return nil, err
	}
	switch {
	case len(hclFiles) > 0 && len(yamlFiles) > 0:
		return nil, errors.New("directory mixes HCL and YAML task files")
	case len(yamlFiles) > 0:
		return yaml_adapter.NewLoader(vars), nil
	default:
		return hcl_adapter.NewLoader(vars), nil
	}
}

func isYAML(ext string) bool {
	for _, e := range yaml_adapter.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// loadModel finds, selects a loader for and loads the task file.
func loadModel(ctx context.Context, cfg *Config) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)

	path, err := findTaskfile(cfg.WorkDir, cfg.TaskfilePath)
	if err != nil {
		return nil, err
	}
	loader, err := newLoader(path, cfg.Vars)
	if err != nil {
		return nil, err
	}
	logger.Debug("Loading task file.", "path", path, "loader", fmt.Sprintf("%T", loader))

	model, err := loader.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load task file: %w", err)
	}
	logger.Debug("Task file loaded.", "tasks", len(model.Tasks), "default", model.Default)
	return model, nil
}
