package yaml_adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/taskgrid/internal/config"
	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/hcl_adapter"
	"github.com/vk/taskgrid/internal/runctx"
	"github.com/vk/taskgrid/internal/verbosity"
	"github.com/zclconf/go-cty/cty"
)

const buildYAML = `
default: Pack
variables:
  configuration:
    default: Release
  retries:
    default: 3
setup:
  - kind: echo
    message: starting ${var.configuration}
teardown:
  - kind: echo
    message: done
tasks:
  - name: Build
    description: Compile everything
    depends_on: [Restore]
    continue_on_error: true
    criteria:
      - when: var.configuration == "Release"
        message: only release builds
    actions:
      - kind: exec
        command: [go, build, "./..."]
        dir: src
        env:
          CGO_ENABLED: "0"
        retry:
          attempts: 3
          initial: 500ms
          max: 5s
    on_error:
      rethrow: true
      actions:
        - kind: echo
          message: build failed
    finally:
      - kind: echo
        message: build attempted
  - name: Restore
    actions:
      - kind: setvar
        name: restored
        value: "yes"
  - name: Pack
    depends_on: [Build]
`

const buildHCL = `
default = "Pack"
variable "configuration" { default = "Release" }
variable "retries" { default = 3 }
setup {
  action "echo" { message = "starting ${var.configuration}" }
}

teardown {
  action "echo" { message = "done" }
}
task "Build" {
  description       = "Compile everything"
  depends_on        = ["Restore"]
  continue_on_error = true
  criteria {
    when    = var.configuration == "Release"
    message = "only release builds"
  }
  action "exec" {
    command = ["go", "build", "./..."]
    dir     = "src"
    env     = { CGO_ENABLED = "0" }
    retry {
      attempts = 3
      initial  = "500ms"
      max      = "5s"
    }
  }
  on_error {
    rethrow = true
    action "echo" { message = "build failed" }
  }
  finally {
    action "echo" { message = "build attempted" }
  }
}
task "Restore" {
  action "setvar" {
    name  = "restored"
    value = "yes"
  }
}
task "Pack" { depends_on = ["Build"] }
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func testContext() context.Context {
	return ctxlog.Discard(context.Background())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "taskgrid.yaml", buildYAML)

	model, err := NewLoader(nil).Load(testContext(), dir)
	require.NoError(t, err)

	assert.Equal(t, "Pack", model.Default)
	assert.Equal(t, cty.StringVal("Release"), model.Variables["configuration"])
	assert.Equal(t, cty.NumberIntVal(3), model.Variables["retries"])
	require.Len(t, model.Setup, 1)
	assert.Equal(t, "starting Release", model.Setup[0].Message)

	require.Len(t, model.Tasks, 3)
	build := model.Tasks[0]
	assert.Equal(t, p, build.Source)
	assert.Equal(t, []string{"Restore"}, build.DependsOn)
	require.Len(t, build.Actions, 1)
	assert.Equal(t, &config.RetrySpec{Attempts: 3, Initial: 500 * time.Millisecond, Max: 5 * time.Second}, build.Actions[0].Retry)

	ok, err := build.Criteria[0].Condition.Evaluate(context.Background(), runctx.New(dir, nil, verbosity.Normal, nil))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLoadMatchesHCL(t *testing.T) {
	dir := t.TempDir()
	yamlPath := writeFile(t, dir, "taskgrid.yaml", buildYAML)
	hclPath := writeFile(t, dir, "taskgrid.hcl", buildHCL)

	fromYAML, err := NewLoader(nil).Load(testContext(), yamlPath)
	require.NoError(t, err)
	fromHCL, err := hcl_adapter.NewLoader(nil).Load(testContext(), hclPath)
	require.NoError(t, err)

	assert.Equal(t, fromHCL.Default, fromYAML.Default)
	assert.Equal(t, len(fromHCL.Variables), len(fromYAML.Variables))
	for name, v := range fromHCL.Variables {
		assert.True(t, v.RawEquals(fromYAML.Variables[name]), "variable %s", name)
	}
	assert.Equal(t, fromHCL.Setup, fromYAML.Setup)
	assert.Equal(t, fromHCL.Teardown, fromYAML.Teardown)

	require.Equal(t, len(fromHCL.Tasks), len(fromYAML.Tasks))
	for i := range fromHCL.Tasks {
		h, y := fromHCL.Tasks[i], fromYAML.Tasks[i]
		assert.Equal(t, h.Name, y.Name)
		assert.Equal(t, h.Description, y.Description)
		assert.ElementsMatch(t, h.DependsOn, y.DependsOn)
		assert.Equal(t, h.ContinueOnError, y.ContinueOnError)
		assert.Equal(t, h.Actions, y.Actions)
		assert.Equal(t, h.OnError, y.OnError)
		assert.Equal(t, h.Finally, y.Finally)
		require.Equal(t, len(h.Criteria), len(y.Criteria))
		for j := range h.Criteria {
			assert.Equal(t, h.Criteria[j].Message, y.Criteria[j].Message)
			assert.Equal(t, h.Criteria[j].Condition.String(), y.Criteria[j].Condition.String())
		}
	}
}

func TestLoadOverrides(t *testing.T) {
	p := writeFile(t, t.TempDir(), "taskgrid.yml", buildYAML)

	model, err := NewLoader(map[string]string{"configuration": "Debug", "retries": "7"}).Load(testContext(), p)
	require.NoError(t, err)
	assert.Equal(t, "starting Debug", model.Setup[0].Message)
	assert.True(t, model.Variables["retries"].RawEquals(cty.NumberIntVal(7)))

	ok, err := model.Tasks[0].Criteria[0].Condition.Evaluate(context.Background(), runctx.New(".", nil, verbosity.Normal, nil))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoadErrors(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "unknown key",
			content: "tasks:\n  - name: A\n    dependson: [B]\n",
			wantErr: "failed to decode YAML file",
		},
		{
			name:    "task without a name",
			content: "tasks:\n  - description: nameless\n",
			wantErr: "task #1 has no name",
		},
		{
			name:    "action without a kind",
			content: "tasks:\n  - name: A\n    actions:\n      - message: hi\n",
			wantErr: "action requires a 'kind'",
		},
		{
			name:    "empty dependency",
			content: "tasks:\n  - name: A\n    depends_on: [\"\"]\n",
			wantErr: "depends_on entries must be non-empty",
		},
		{
			name:    "criteria without when",
			content: "tasks:\n  - name: A\n    criteria:\n      - message: never\n",
			wantErr: "criteria requires a 'when' expression",
		},
		{
			name:    "criteria with undeclared variable",
			content: "tasks:\n  - name: A\n    criteria:\n      - when: var.nope\n",
			wantErr: `undeclared variable "nope"`,
		},
		{
			name:    "template with undeclared variable",
			content: "setup:\n  - kind: echo\n    message: ${var.nope}\n",
			wantErr: "failed to evaluate template",
		},
		{
			name:    "non-scalar default",
			content: "variables:\n  list:\n    default: [1, 2]\n",
			wantErr: "default must be a scalar",
		},
		{
			name:    "variable without default",
			content: "variables:\n  token: {}\n",
			wantErr: `variable "token" has no default and was not set`,
		},
		{
			name:    "bad retry",
			content: "tasks:\n  - name: A\n    actions:\n      - kind: exec\n        command: [\"true\"]\n        retry: {attempts: 0}\n",
			wantErr: "retry attempts must be at least 1",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := writeFile(t, t.TempDir(), "taskgrid.yaml", tc.content)
			_, err := NewLoader(nil).Load(testContext(), p)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}

	t.Run("conflicting default targets", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.yaml", "default: A\n")
		writeFile(t, dir, "b.yml", "default: B\n")
		_, err := NewLoader(nil).Load(testContext(), dir)
		assert.ErrorContains(t, err, "default target declared twice")
	})

	t.Run("empty file", func(t *testing.T) {
		p := writeFile(t, t.TempDir(), "empty.yaml", "")
		model, err := NewLoader(nil).Load(testContext(), p)
		require.NoError(t, err)
		assert.Empty(t, model.Tasks)
	})
}
