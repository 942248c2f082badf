// Package notify announces finished runs to external listeners.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vk/taskgrid/internal/report"
	"github.com/vk/taskgrid/internal/runctx"
)

// EventRunFinished is the event name emitted after every run.
const EventRunFinished = "run.finished"

// Notifier delivers a finished-run event.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// Event is the payload of a run.finished notification.
type Event struct {
	RunID    string         `json:"run_id"`
	Targets  []string       `json:"targets"`
	Status   string         `json:"status"`
	Error    string         `json:"error,omitempty"`
	Duration float64        `json:"duration_seconds"`
	Entries  []report.Entry `json:"entries"`
}

// NewEvent summarises a run. rep may be nil when the run failed before the
// engine started.
func NewEvent(rc *runctx.Context, rep *report.Report, runErr error) Event {
	ev := Event{
		RunID:   rc.ID.String(),
		Targets: append([]string(nil), rc.Targets...),
		Status:  "success",
		Entries: []report.Entry{},
	}
	if runErr != nil {
		ev.Status = "failure"
		ev.Error = runErr.Error()
	}
	if rep != nil {
		ev.Entries = rep.Entries()
		ev.Duration = rep.TotalDuration().Round(time.Millisecond).Seconds()
	}
	return ev
}

// toMap converts the event into the generic map form the socket.io encoder
// expects.
func (e Event) toMap() (map[string]any, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed to encode event: %w", err)
	}
	return m, nil
}
