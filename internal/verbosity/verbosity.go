// Package verbosity defines the output levels accepted on the command line
// and how they map onto log levels.
package verbosity

import (
	"fmt"
	"log/slog"
	"strings"
)

// Level controls how much the tool prints.
type Level int

const (
	Quiet Level = iota
	Minimal
	Normal
	Verbose
	Diagnostic
)

var names = map[Level]string{
	Quiet:      "quiet",
	Minimal:    "minimal",
	Normal:     "normal",
	Verbose:    "verbose",
	Diagnostic: "diagnostic",
}

func (l Level) String() string {
	if n, ok := names[l]; ok {
		return n
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// Parse converts a case-insensitive level name into a Level. The single
// letters q, m, n, v and d are accepted as shorthands.
func Parse(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "quiet", "q":
		return Quiet, nil
	case "minimal", "m":
		return Minimal, nil
	case "normal", "n", "":
		return Normal, nil
	case "verbose", "v":
		return Verbose, nil
	case "diagnostic", "d":
		return Diagnostic, nil
	}
	return Normal, fmt.Errorf("invalid verbosity %q: must be one of quiet, minimal, normal, verbose, diagnostic", s)
}

// SlogLevel returns the minimum log level that should be emitted at l.
func (l Level) SlogLevel() slog.Level {
	switch {
	case l <= Quiet:
		return slog.LevelError
	case l == Minimal:
		return slog.LevelWarn
	case l == Normal:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
