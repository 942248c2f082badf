package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vk/taskgrid/internal/app"
	"github.com/vk/taskgrid/internal/verbosity"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// flags holds the raw values bound to the command line.
type flags struct {
	target          string
	verbosity       string
	workDir         string
	file            string
	vars            []string
	logFormat       string
	healthcheckPort int
	notifyURL       string
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly (help or version
// was printed), or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")

	var (
		f       flags
		command string
		targets []string
		root    *cobra.Command
	)

	selectCommand := func(name string) func(*cobra.Command, []string) error {
		return func(_ *cobra.Command, args []string) error {
			command = name
			targets = args
			return nil
		}
	}

	root = &cobra.Command{
		Use:   "taskgrid [targets...]",
		Short: "taskgrid runs build tasks declared in HCL or YAML task files.",
		Long: `taskgrid runs build tasks declared in HCL or YAML task files.

The selected targets run after all of their dependencies, in a deterministic
order. Without targets, the task file's default target is used, falling back
to "` + app.DefaultTarget + `".`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          selectCommand(app.CommandRun),
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&f.target, "target", "t", app.DefaultTarget, "Target to run.")
	pf.StringVarP(&f.verbosity, "verbosity", "v", "normal", "Output level: quiet, minimal, normal, verbose or diagnostic.")
	pf.StringVarP(&f.workDir, "working", "w", ".", "Working directory.")
	pf.StringVarP(&f.file, "file", "f", "", "Task file or directory, relative to the working directory.")
	pf.StringArrayVar(&f.vars, "var", nil, "Override a task file variable, as name=value. Repeatable.")
	pf.StringVar(&f.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	pf.IntVar(&f.healthcheckPort, "healthcheck-port", 0, "Port serving /health and /metrics during the run. 0 is disabled.")
	pf.StringVar(&f.notifyURL, "notify-url", "", "socket.io endpoint notified when the run finishes.")

	root.AddCommand(
		&cobra.Command{
			Use:   "run [targets...]",
			Short: "Run the targets and their dependencies.",
			Args:  cobra.ArbitraryArgs,
			RunE:  selectCommand(app.CommandRun),
		},
		&cobra.Command{
			Use:   "dry-run [targets...]",
			Short: "Print the execution plan without running anything.",
			Args:  cobra.ArbitraryArgs,
			RunE:  selectCommand(app.CommandDryRun),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the version.",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				fmt.Fprintf(cmd.OutOrStdout(), "taskgrid version %s\n", app.Version)
				return nil
			},
		},
	)

	root.SetArgs(args)
	root.SetOut(output)
	root.SetErr(output)

	if err := root.Execute(); err != nil {
		return nil, false, &ExitError{Code: 1, Message: err.Error()}
	}
	if command == "" {
		slog.Debug("No command to run, exiting.")
		return nil, true, nil
	}
	slog.Debug("Arguments parsed successfully.", "command", command)

	level, err := verbosity.Parse(f.verbosity)
	if err != nil {
		return nil, false, &ExitError{Code: 1, Message: err.Error()}
	}

	vars, err := parseVars(f.vars)
	if err != nil {
		return nil, false, &ExitError{Code: 1, Message: err.Error()}
	}

	if len(targets) == 0 && root.PersistentFlags().Changed("target") {
		targets = []string{f.target}
	}

	config, err := app.NewConfig(app.Config{
		Command:         command,
		TaskfilePath:    f.file,
		WorkDir:         f.workDir,
		Targets:         targets,
		Verbosity:       level,
		LogFormat:       strings.ToLower(f.logFormat),
		HealthcheckPort: f.healthcheckPort,
		NotifyURL:       f.notifyURL,
		Vars:            vars,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 1, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

func parseVars(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	vars := make(map[string]string, len(raw))
	for _, kv := range raw {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid --var %q: expected name=value", kv)
		}
		vars[strings.TrimSpace(name)] = value
	}
	return vars, nil
}
