// Package metrics records run and task outcomes as Prometheus metrics. It
// plugs into the engine through lifecycle hooks, so the engine itself knows
// nothing about Prometheus.
package metrics

import (
	"context"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vk/taskgrid/internal/lifecycle"
	"github.com/vk/taskgrid/internal/report"
	"github.com/vk/taskgrid/internal/runctx"
)

// Status label values.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Metrics holds the collectors of one process on a private registry.
type Metrics struct {
	registry     *prometheus.Registry
	taskDuration *prometheus.HistogramVec
	taskRuns     *prometheus.CounterVec
	runDuration  prometheus.Histogram
	runs         *prometheus.CounterVec
}

// New creates and registers every collector.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.taskDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "taskgrid_task_duration_seconds", Help: "Duration of executed tasks in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"task", "status"},
	)
	m.registry.MustRegister(m.taskDuration)

	m.taskRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "taskgrid_task_runs_total", Help: "Total number of tasks reached by a run, by outcome."},
		[]string{"task", "status"},
	)
	m.registry.MustRegister(m.taskRuns)

	m.runDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "taskgrid_run_duration_seconds", Help: "Duration of whole runs in seconds.", Buckets: prometheus.DefBuckets},
	)
	m.registry.MustRegister(m.runDuration)

	m.runs = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "taskgrid_runs_total", Help: "Total number of runs, by outcome."},
		[]string{"status"},
	)
	m.registry.MustRegister(m.runs)

	return m
}

// Hooks returns the lifecycle hooks that feed the task and run collectors.
func (m *Metrics) Hooks() lifecycle.Hooks {
	return lifecycle.Hooks{
		TaskTeardown: []lifecycle.TaskTeardownHook{m.observeTask},
		Teardown:     []lifecycle.TeardownHook{m.observeRun},
	}
}

func (m *Metrics) observeTask(_ context.Context, _ *runctx.Context, info lifecycle.TaskTeardownInfo) error {
	status := outcome(info.Err)
	m.taskDuration.WithLabelValues(info.Task.Name(), status).Observe(info.Duration.Seconds())
	m.taskRuns.WithLabelValues(info.Task.Name(), status).Inc()
	return nil
}

func (m *Metrics) observeRun(_ context.Context, _ *runctx.Context, info lifecycle.TeardownInfo) error {
	m.runDuration.Observe(info.Duration.Seconds())
	m.runs.WithLabelValues(outcome(info.Err)).Inc()
	return nil
}

// ObserveReport counts the skipped and delegated entries of a report. Those
// never reach the task-teardown hook.
func (m *Metrics) ObserveReport(r *report.Report) {
	if r == nil {
		return
	}
	for _, e := range r.Entries() {
		switch e.Status {
		case report.Skipped, report.Delegated:
			m.taskRuns.WithLabelValues(e.TaskName, strings.ToLower(e.Status.String())).Inc()
		}
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func outcome(err error) string {
	if err != nil {
		return StatusFailure
	}
	return StatusSuccess
}
