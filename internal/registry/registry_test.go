package registry

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/taskgrid/internal/actions"
	"github.com/vk/taskgrid/internal/config"
	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/lifecycle"
	"github.com/vk/taskgrid/internal/runctx"
	"github.com/vk/taskgrid/internal/task"
	"github.com/vk/taskgrid/internal/verbosity"
)

func TestRegister(t *testing.T) {
	t.Run("keeps registration order and looks up case-insensitively", func(t *testing.T) {
		r := New()
		_, err := r.Register("Clean")
		require.NoError(t, err)
		_, err = r.Register("Build")
		require.NoError(t, err)

		require.Equal(t, 2, r.Len())
		tasks := r.Tasks()
		assert.Equal(t, "Clean", tasks[0].Name())
		assert.Equal(t, 0, tasks[0].Index())
		assert.Equal(t, "Build", tasks[1].Name())
		assert.Equal(t, 1, tasks[1].Index())

		got, ok := r.Lookup("bUiLd")
		require.True(t, ok)
		assert.Same(t, tasks[1], got)

		_, ok = r.Lookup("Deploy")
		assert.False(t, ok)
	})

	t.Run("duplicate name fails regardless of case", func(t *testing.T) {
		r := New()
		_, err := r.Register("build")
		require.NoError(t, err)

		_, err = r.Register("BUILD")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDuplicateTask)

		var dup *DuplicateTaskError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "BUILD", dup.Name)
		assert.Equal(t, "build", dup.Existing)
		assert.Equal(t, 1, r.Len(), "the failed registration must not be stored")
	})

	t.Run("empty name fails", func(t *testing.T) {
		_, err := New().Register("  ")
		assert.ErrorContains(t, err, "must not be empty")
	})

	t.Run("must register panics on duplicates", func(t *testing.T) {
		r := New()
		r.MustRegister("A")
		assert.Panics(t, func() { r.MustRegister("a") })
	})

	t.Run("builder configures the stored task", func(t *testing.T) {
		r := New()
		r.MustRegister("Pack").IsDependentOn("Build").Does(func(context.Context, *runctx.Context) error { return nil })

		tk, ok := r.Lookup("pack")
		require.True(t, ok)
		assert.Equal(t, []string{"Build"}, tk.Dependencies())
		assert.False(t, tk.IsDelegated())
	})
}

func TestHooks(t *testing.T) {
	r := New()
	r.Setup(func(context.Context, *runctx.Context) error { return nil })
	r.Teardown(func(context.Context, *runctx.Context, lifecycle.TeardownInfo) error { return nil })
	r.TaskSetup(func(context.Context, *runctx.Context, lifecycle.TaskInfo) error { return nil })
	r.TaskTeardown(func(context.Context, *runctx.Context, lifecycle.TaskTeardownInfo) error { return nil })
	r.TaskTeardown(func(context.Context, *runctx.Context, lifecycle.TaskTeardownInfo) error { return nil })

	h := r.Hooks()
	assert.Len(t, h.Setup, 1)
	assert.Len(t, h.Teardown, 1)
	assert.Len(t, h.TaskSetup, 1)
	assert.Len(t, h.TaskTeardown, 2)
}

type moduleFunc func(r *Registry) error

func (f moduleFunc) Register(r *Registry) error { return f(r) }

func TestRegisterModules(t *testing.T) {
	r := New()
	err := r.RegisterModules(moduleFunc(func(r *Registry) error {
		_, err := r.Register("FromModule")
		return err
	}))
	require.NoError(t, err)
	_, ok := r.Lookup("frommodule")
	assert.True(t, ok)

	err = r.RegisterModules(moduleFunc(func(*Registry) error { return errors.New("broken") }))
	assert.ErrorContains(t, err, "failed to register: broken")
}

type versionTask struct{ skip bool }

func (v *versionTask) Run(_ context.Context, rc *runctx.Context) error {
	rc.Set("version", "1.0.0")
	return nil
}

func (v *versionTask) ShouldRun(context.Context, *runctx.Context) bool { return !v.skip }

func TestRegisterDefinitions(t *testing.T) {
	r := New()
	err := r.RegisterDefinitions(
		Definition{Name: "Version", New: func() task.Runner { return &versionTask{} }},
		Definition{Name: "Default", DependsOn: []string{"Version"}, Description: "everything"},
	)
	require.NoError(t, err)

	version, ok := r.Lookup("version")
	require.True(t, ok)
	assert.Len(t, version.Actions(), 1)
	require.Len(t, version.Criteria(), 1)
	assert.Empty(t, version.Criteria()[0].Message)

	def, ok := r.Lookup("default")
	require.True(t, ok)
	assert.True(t, def.IsDelegated())
	assert.Equal(t, []string{"Version"}, def.Dependencies())
	assert.Equal(t, "everything", def.Description())

	err = r.RegisterDefinitions(Definition{Name: "VERSION"})
	assert.ErrorIs(t, err, ErrDuplicateTask)

	err = r.RegisterDefinitions(Definition{Name: "Nil", New: func() task.Runner { return nil }})
	assert.ErrorContains(t, err, "factory returned nil")
}

type staticCondition bool

func (c staticCondition) Evaluate(context.Context, *runctx.Context) (bool, error) {
	return bool(c), nil
}
func (c staticCondition) String() string { return "static" }

func TestPopulateFromModel(t *testing.T) {
	ctx := ctxlog.Discard(context.Background())
	out := &bytes.Buffer{}
	rc := runctx.New(t.TempDir(), nil, verbosity.Normal, out)

	model := &config.Model{
		Setup:    []*config.ActionSpec{{Kind: "echo", Message: "setup"}},
		Teardown: []*config.ActionSpec{{Kind: "echo", Message: "teardown"}},
		Tasks: []*config.TaskSpec{
			{
				Name:      "Build",
				DependsOn: []string{"Restore"},
				Criteria:  []*config.CriterionSpec{{Condition: staticCondition(true), Message: "always"}},
				Actions:   []*config.ActionSpec{{Kind: "fail", Message: "compile error"}},
				OnError: &config.ErrorSpec{
					Actions: []*config.ActionSpec{{Kind: "echo", Message: "handling"}},
				},
				Finally: []*config.ActionSpec{{Kind: "echo", Message: "finally"}},
			},
			{
				Name:            "Restore",
				ContinueOnError: true,
				OnError:         &config.ErrorSpec{Rethrow: true},
			},
		},
	}

	r := New()
	require.NoError(t, r.PopulateFromModel(ctx, model, actions.Default()))

	build, ok := r.Lookup("build")
	require.True(t, ok)
	assert.Equal(t, []string{"Restore"}, build.Dependencies())
	require.Len(t, build.Criteria(), 1)
	assert.Equal(t, "always", build.Criteria()[0].Message)

	actionErr := build.Actions()[0](ctx, rc)
	require.EqualError(t, actionErr, "compile error")
	assert.NoError(t, build.ErrorHandler()(ctx, rc, actionErr), "handler without rethrow swallows the error")
	require.NoError(t, build.FinallyHandler()(ctx, rc))

	restore, ok := r.Lookup("restore")
	require.True(t, ok)
	assert.True(t, restore.ContinueOnError())
	assert.True(t, restore.IsDelegated())
	cause := errors.New("cause")
	assert.Same(t, cause, restore.ErrorHandler()(ctx, rc, cause), "rethrow returns the original error")

	hooks := r.Hooks()
	require.Len(t, hooks.Setup, 1)
	require.Len(t, hooks.Teardown, 1)
	require.NoError(t, hooks.Setup[0](ctx, rc))
	require.NoError(t, hooks.Teardown[0](ctx, rc, lifecycle.TeardownInfo{}))

	assert.Equal(t, "handling\nfinally\nsetup\nteardown\n", out.String())
}

func TestPopulateFromModelErrors(t *testing.T) {
	ctx := ctxlog.Discard(context.Background())

	t.Run("duplicate task carries its source", func(t *testing.T) {
		model := &config.Model{Tasks: []*config.TaskSpec{
			{Name: "A", Source: "a.hcl"},
			{Name: "a", Source: "b.hcl"},
		}}
		err := New().PopulateFromModel(ctx, model, actions.Default())
		assert.ErrorIs(t, err, ErrDuplicateTask)
		assert.ErrorContains(t, err, "b.hcl")
	})

	t.Run("unknown action kind", func(t *testing.T) {
		model := &config.Model{Tasks: []*config.TaskSpec{
			{Name: "A", Actions: []*config.ActionSpec{{Kind: "nope"}}},
		}}
		err := New().PopulateFromModel(ctx, model, actions.Default())
		assert.ErrorContains(t, err, `unknown action kind "nope"`)
	})

	t.Run("invalid setup action", func(t *testing.T) {
		model := &config.Model{Setup: []*config.ActionSpec{{Kind: "exec"}}}
		err := New().PopulateFromModel(ctx, model, actions.Default())
		assert.ErrorContains(t, err, "setup:")
	})
}

func TestPopulateFromModelLeavesRegistryUnchangedOnError(t *testing.T) {
	ctx := ctxlog.Discard(context.Background())

	testCases := []struct {
		name  string
		model *config.Model
	}{
		{
			name: "later task has an unknown action kind",
			model: &config.Model{Tasks: []*config.TaskSpec{
				{Name: "A", Actions: []*config.ActionSpec{{Kind: "echo", Message: "a"}}},
				{Name: "B", Actions: []*config.ActionSpec{{Kind: "nope"}}},
			}},
		},
		{
			name: "finally action fails to build",
			model: &config.Model{Tasks: []*config.TaskSpec{
				{Name: "A", Finally: []*config.ActionSpec{{Kind: "exec"}}},
			}},
		},
		{
			name: "name clashes with an existing task",
			model: &config.Model{Tasks: []*config.TaskSpec{
				{Name: "A"},
				{Name: "existing"},
			}},
		},
		{
			name: "teardown fails to build",
			model: &config.Model{
				Tasks:    []*config.TaskSpec{{Name: "A"}},
				Teardown: []*config.ActionSpec{{Kind: "exec"}},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			r := New()
			_, err := r.Register("Existing")
			require.NoError(t, err)

			// Act
			err = r.PopulateFromModel(ctx, tc.model, actions.Default())

			// Assert
			require.Error(t, err)
			assert.Equal(t, 1, r.Len())
			_, ok := r.Lookup("A")
			assert.False(t, ok, "no task from the failed model is registered")
			assert.Empty(t, r.Hooks().Setup)
			assert.Empty(t, r.Hooks().Teardown)
		})
	}
}
