package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/taskgrid/internal/app"
	"github.com/vk/taskgrid/internal/verbosity"
)

func TestParse(t *testing.T) {
	dir := t.TempDir()

	testCases := []struct {
		name    string
		args    []string
		check   func(t *testing.T, cfg *app.Config)
		wantErr string
	}{
		{
			name: "defaults",
			args: []string{"-w", dir},
			check: func(t *testing.T, cfg *app.Config) {
				assert.Equal(t, app.CommandRun, cfg.Command)
				assert.Empty(t, cfg.Targets, "the task file's default decides")
				assert.Equal(t, verbosity.Normal, cfg.Verbosity)
				assert.Equal(t, "text", cfg.LogFormat)
				assert.Equal(t, dir, cfg.WorkDir)
			},
		},
		{
			name: "explicit target flag",
			args: []string{"-w", dir, "--target", "Build"},
			check: func(t *testing.T, cfg *app.Config) {
				assert.Equal(t, []string{"Build"}, cfg.Targets)
			},
		},
		{
			name: "positional targets win over the flag",
			args: []string{"-w", dir, "-t", "Build", "Test", "Pack"},
			check: func(t *testing.T, cfg *app.Config) {
				assert.Equal(t, []string{"Test", "Pack"}, cfg.Targets)
			},
		},
		{
			name: "run subcommand",
			args: []string{"run", "-w", dir, "Build"},
			check: func(t *testing.T, cfg *app.Config) {
				assert.Equal(t, app.CommandRun, cfg.Command)
				assert.Equal(t, []string{"Build"}, cfg.Targets)
			},
		},
		{
			name: "dry-run subcommand with every flag",
			args: []string{
				"dry-run", "Build",
				"-w", dir,
				"-f", "ci/taskgrid.yaml",
				"-v", "d",
				"--var", "configuration=Debug",
				"--var", "empty=",
				"--log-format", "JSON",
				"--healthcheck-port", "9090",
				"--notify-url", "http://localhost:3000/socket.io/",
			},
			check: func(t *testing.T, cfg *app.Config) {
				assert.Equal(t, app.CommandDryRun, cfg.Command)
				assert.Equal(t, "ci/taskgrid.yaml", cfg.TaskfilePath)
				assert.Equal(t, verbosity.Diagnostic, cfg.Verbosity)
				assert.Equal(t, map[string]string{"configuration": "Debug", "empty": ""}, cfg.Vars)
				assert.Equal(t, "json", cfg.LogFormat)
				assert.Equal(t, 9090, cfg.HealthcheckPort)
				assert.Equal(t, "http://localhost:3000/socket.io/", cfg.NotifyURL)
			},
		},
		{name: "bad verbosity", args: []string{"-w", dir, "-v", "loud"}, wantErr: `invalid verbosity "loud"`},
		{name: "bad var", args: []string{"-w", dir, "--var", "novalue"}, wantErr: `invalid --var "novalue"`},
		{name: "bad log format", args: []string{"-w", dir, "--log-format", "xml"}, wantErr: "invalid log format"},
		{name: "unknown flag", args: []string{"--frobnicate"}, wantErr: "unknown flag: --frobnicate"},
		{name: "version takes no args", args: []string{"version", "x"}, wantErr: "unknown command"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, exit, err := Parse(tc.args, &bytes.Buffer{})
			if tc.wantErr != "" {
				require.Error(t, err)
				var exitErr *ExitError
				require.ErrorAs(t, err, &exitErr)
				assert.Equal(t, 1, exitErr.Code)
				assert.Contains(t, exitErr.Message, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.False(t, exit)
			tc.check(t, cfg)
		})
	}
}

func TestParseExitsCleanly(t *testing.T) {
	testCases := []struct {
		args []string
		want string
	}{
		{args: []string{"--help"}, want: "Usage:"},
		{args: []string{"help"}, want: "dry-run"},
		{args: []string{"version"}, want: "taskgrid version " + app.Version},
	}
	for _, tc := range testCases {
		t.Run(tc.args[0], func(t *testing.T) {
			out := &bytes.Buffer{}
			cfg, exit, err := Parse(tc.args, out)
			require.NoError(t, err)
			assert.True(t, exit)
			assert.Nil(t, cfg)
			assert.Contains(t, out.String(), tc.want)
		})
	}
}
