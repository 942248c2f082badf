package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/vk/taskgrid/internal/verbosity"
)

const (
	taskHeader  = "Task"
	totalLabel  = "Total:"
	durationCol = len("00:00:00.0000000")
)

// Print writes the report as a fixed-width table. Delegated entries are
// hidden below verbose level; the total always covers every entry.
func Print(w io.Writer, r *Report, level verbosity.Level) error {
	var rows []Entry
	for _, e := range r.Entries() {
		if e.Status == Delegated && level < verbosity.Verbose {
			continue
		}
		rows = append(rows, e)
	}

	width := max(len(taskHeader), len(totalLabel))
	for _, e := range rows {
		width = max(width, len(e.TaskName))
	}
	width++
	rule := strings.Repeat("-", width+durationCol)

	var b strings.Builder
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "%-*s%s\n", width, taskHeader, "Duration")
	fmt.Fprintln(&b, rule)
	for _, e := range rows {
		fmt.Fprintf(&b, "%-*s%s\n", width, e.TaskName, cell(e))
	}
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "%-*s%s\n", width, totalLabel, FormatDuration(r.TotalDuration()))

	_, err := io.WriteString(w, b.String())
	return err
}

func cell(e Entry) string {
	switch e.Status {
	case Skipped:
		if e.SkipReason != "" {
			return "Skipped (" + e.SkipReason + ")"
		}
		return "Skipped"
	case Delegated:
		return FormatDuration(e.Duration) + " (delegated)"
	default:
		return FormatDuration(e.Duration)
	}
}

// FormatDuration renders d as hh:mm:ss.fffffff.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second
	return fmt.Sprintf("%02d:%02d:%02d.%07d", h, m, s, d/100)
}
