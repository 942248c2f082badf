package actions

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vk/taskgrid/internal/config"
	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/runctx"
	"github.com/vk/taskgrid/internal/task"
)

// Exec runs an external command. Output goes to the run's output writer and
// a relative dir is resolved against the run's working directory.
func Exec(spec *config.ActionSpec) (task.Action, error) {
	if len(spec.Command) == 0 || spec.Command[0] == "" {
		return nil, errors.New("command must not be empty")
	}
	if err := checkRetry(spec.Retry); err != nil {
		return nil, err
	}
	command := append([]string(nil), spec.Command...)
	env := envPairs(spec.Env)
	retry := spec.Retry
	dir := spec.Dir

	return func(ctx context.Context, rc *runctx.Context) error {
		logger := ctxlog.FromContext(ctx).With("command", command[0])

		attempt := 0
		operation := func() error {
			attempt++
			cmd := exec.CommandContext(ctx, command[0], command[1:]...)
			cmd.Dir = resolveDir(rc.WorkDir, dir)
			cmd.Env = append(os.Environ(), env...)
			cmd.Stdout = output(rc)
			cmd.Stderr = output(rc)

			logger.Debug("Running command.", "args", command[1:], "dir", cmd.Dir, "attempt", attempt)
			if err := cmd.Run(); err != nil {
				return fmt.Errorf("command %q failed: %w", strings.Join(command, " "), err)
			}
			return nil
		}

		return withRetry(ctx, logger, retry, operation)
	}, nil
}

// Echo writes its message to the run's output.
func Echo(spec *config.ActionSpec) (task.Action, error) {
	msg := spec.Message
	return func(_ context.Context, rc *runctx.Context) error {
		_, err := fmt.Fprintln(output(rc), msg)
		return err
	}, nil
}

// SetVar stores a value in the run context for later tasks and conditions.
func SetVar(spec *config.ActionSpec) (task.Action, error) {
	if spec.Name == "" {
		return nil, errors.New("name must not be empty")
	}
	name, value := spec.Name, spec.Value
	return func(ctx context.Context, rc *runctx.Context) error {
		ctxlog.FromContext(ctx).Debug("Setting run value.", "name", name)
		rc.Set(name, value)
		return nil
	}, nil
}

// Fail always returns an error carrying its message.
func Fail(spec *config.ActionSpec) (task.Action, error) {
	msg := spec.Message
	if msg == "" {
		msg = "fail action invoked"
	}
	return func(context.Context, *runctx.Context) error {
		return errors.New(msg)
	}, nil
}

func resolveDir(workDir, dir string) string {
	switch {
	case dir == "":
		return workDir
	case filepath.IsAbs(dir) || workDir == "":
		return dir
	default:
		return filepath.Join(workDir, dir)
	}
}

func envPairs(env map[string]string) []string {
	pairs := make([]string, 0, len(env))
	for k, v := range env {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)
	return pairs
}
