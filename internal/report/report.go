// Package report records what happened to each task of a run.
package report

import (
	"fmt"
	"time"
)

// Status is the outcome of one task.
type Status int

const (
	// Executed tasks had actions and ran them, successfully or not.
	Executed Status = iota
	// Skipped tasks had a criterion that did not hold.
	Skipped
	// Delegated tasks had no actions and only grouped dependencies.
	Delegated
)

func (s Status) String() string {
	switch s {
	case Executed:
		return "Executed"
	case Skipped:
		return "Skipped"
	case Delegated:
		return "Delegated"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// MarshalText renders the status by name in JSON payloads.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Entry is the record of one task.
type Entry struct {
	TaskName   string        `json:"task"`
	Duration   time.Duration `json:"duration_ns"`
	Status     Status        `json:"status"`
	SkipReason string        `json:"skip_reason,omitempty"`
}

// Report is the ordered list of entries of one run. It is never modified
// after New returns it.
type Report struct {
	entries []Entry
}

// New builds a report from entries in execution order.
func New(entries []Entry) *Report {
	return &Report{entries: append([]Entry(nil), entries...)}
}

// Entries returns a copy of the entries.
func (r *Report) Entries() []Entry {
	if r == nil {
		return nil
	}
	return append([]Entry(nil), r.entries...)
}

// Len returns the number of entries.
func (r *Report) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// TotalDuration sums the duration of every entry.
func (r *Report) TotalDuration() time.Duration {
	var total time.Duration
	for _, e := range r.Entries() {
		total += e.Duration
	}
	return total
}

// Count returns how many entries have status s.
func (r *Report) Count(s Status) int {
	n := 0
	for _, e := range r.Entries() {
		if e.Status == s {
			n++
		}
	}
	return n
}
