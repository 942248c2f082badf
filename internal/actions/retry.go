package actions

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/vk/taskgrid/internal/config"
)

func checkRetry(retry *config.RetrySpec) error {
	if retry != nil && retry.Attempts == 0 {
		return errors.New("retry attempts must be at least 1")
	}
	return nil
}

// withRetry runs operation up to retry.Attempts times with exponential
// backoff between attempts. A nil retry runs it once.
func withRetry(ctx context.Context, logger *slog.Logger, retry *config.RetrySpec, operation func() error) error {
	if retry == nil || retry.Attempts <= 1 {
		return operation()
	}

	b := backoff.NewExponentialBackOff()
	if retry.Initial > 0 {
		b.InitialInterval = retry.Initial
	}
	if retry.Max > 0 {
		b.MaxInterval = retry.Max
	}
	attempt := 0
	notify := func(err error, wait time.Duration) {
		attempt++
		logger.Warn("Action failed, retrying.", "attempt", attempt, "of", retry.Attempts, "wait", wait, "error", err)
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(b, retry.Attempts-1), ctx)
	return backoff.RetryNotify(operation, policy, notify)
}
