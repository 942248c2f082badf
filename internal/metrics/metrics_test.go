package metrics

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/engine"
	"github.com/vk/taskgrid/internal/runctx"
	"github.com/vk/taskgrid/internal/task"
	"github.com/vk/taskgrid/internal/verbosity"
)

func noop(context.Context, *runctx.Context) error { return nil }

func TestHooksRecordRun(t *testing.T) {
	m := New()
	ctx := ctxlog.Discard(context.Background())
	rc := runctx.New(t.TempDir(), []string{"Default"}, verbosity.Normal, &bytes.Buffer{})

	build := task.NewBuilder("Build", 0).Does(noop).Task()
	lint := task.NewBuilder("Lint", 1).When(func(context.Context, *runctx.Context) (bool, error) { return false, nil }).Does(noop).Task()
	def := task.NewBuilder("Default", 2).IsDependentOn("Build", "Lint").Task()

	rep, err := engine.New(m.Hooks()).Run(ctx, []*task.Task{build, lint, def}, rc)
	require.NoError(t, err)
	m.ObserveReport(rep)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.taskRuns.WithLabelValues("Build", StatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.taskRuns.WithLabelValues("Lint", "skipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.taskRuns.WithLabelValues("Default", "delegated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues(StatusSuccess)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.taskDuration))
	assert.Equal(t, 1, testutil.CollectAndCount(m.runDuration))
}

func TestHooksRecordFailure(t *testing.T) {
	m := New()
	ctx := ctxlog.Discard(context.Background())
	rc := runctx.New(t.TempDir(), []string{"Build"}, verbosity.Normal, &bytes.Buffer{})

	boom := errors.New("boom")
	build := task.NewBuilder("Build", 0).Does(func(context.Context, *runctx.Context) error { return boom }).Task()

	_, err := engine.New(m.Hooks()).Run(ctx, []*task.Task{build}, rc)
	require.ErrorIs(t, err, boom)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.taskRuns.WithLabelValues("Build", StatusFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues(StatusFailure)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.runs.WithLabelValues(StatusSuccess)))
}

func TestHandler(t *testing.T) {
	m := New()
	m.runs.WithLabelValues(StatusSuccess).Inc()

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `taskgrid_runs_total{status="success"} 1`)
}

func TestObserveReportNil(t *testing.T) {
	assert.NotPanics(t, func() { New().ObserveReport(nil) })
}
