package engine

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/task"
)

// DryRun writes the plan for tasks without invoking any action, predicate or
// hook. Criteria are listed by message because evaluating them could have
// side effects.
func DryRun(ctx context.Context, tasks []*task.Task, w io.Writer) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Dry run started.", "tasks", len(tasks))

	var b strings.Builder
	fmt.Fprintln(&b, "Performing dry run...")
	fmt.Fprintln(&b)
	for i, t := range tasks {
		line := fmt.Sprintf("%d. %s", i+1, t.Name())
		if t.IsDelegated() {
			line += " (delegated)"
		}
		fmt.Fprintln(&b, line)
		if d := t.Description(); d != "" {
			fmt.Fprintf(&b, "   %s\n", d)
		}
		for _, c := range t.Criteria() {
			msg := c.Message
			if msg == "" {
				msg = "(condition)"
			}
			fmt.Fprintf(&b, "   skip unless: %s\n", msg)
		}
	}
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "This was a dry run.")
	fmt.Fprintln(&b, "No tasks were actually executed.")

	_, err := io.WriteString(w, b.String())
	return err
}
