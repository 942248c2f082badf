package actions

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vk/taskgrid/internal/config"
	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/runctx"
	"github.com/vk/taskgrid/internal/task"
)

const httpTimeout = 30 * time.Second

// HTTP sends a request and fails unless the response status is below 400,
// or equal to ExpectStatus when that is set. It is typically combined with a
// retry block to wait for a service to come up.
func HTTP(spec *config.ActionSpec) (task.Action, error) {
	u, err := url.Parse(spec.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("url must be an absolute URL, got %q", spec.URL)
	}
	if err := checkRetry(spec.Retry); err != nil {
		return nil, err
	}
	method := strings.ToUpper(spec.Method)
	if method == "" {
		method = http.MethodGet
	}
	target := u.String()
	expect := spec.ExpectStatus
	retry := spec.Retry
	client := &http.Client{Timeout: httpTimeout}

	return func(ctx context.Context, rc *runctx.Context) error {
		logger := ctxlog.FromContext(ctx).With("method", method, "url", target)

		operation := func() error {
			req, err := http.NewRequestWithContext(ctx, method, target, nil)
			if err != nil {
				return fmt.Errorf("failed to create request: %w", err)
			}
			resp, err := client.Do(req)
			if err != nil {
				return fmt.Errorf("failed to execute request: %w", err)
			}
			defer resp.Body.Close()
			_, _ = io.Copy(io.Discard, resp.Body)

			logger.Debug("Received HTTP response.", "status", resp.Status)
			if !statusOK(resp.StatusCode, expect) {
				return &StatusError{Method: method, URL: target, Status: resp.StatusCode}
			}
			return nil
		}
		return withRetry(ctx, logger, retry, operation)
	}, nil
}

// StatusError reports an unexpected HTTP response status.
type StatusError struct {
	Method string
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s returned %d %s", e.Method, e.URL, e.Status, http.StatusText(e.Status))
}

func statusOK(got, expect int) bool {
	if expect != 0 {
		return got == expect
	}
	return got < http.StatusBadRequest
}
