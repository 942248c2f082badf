package actions

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/taskgrid/internal/config"
)

func TestHTTP(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		switch r.URL.Path {
		case "/ok":
			w.WriteHeader(http.StatusOK)
		case "/created":
			if r.Method != http.MethodPost {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			w.WriteHeader(http.StatusCreated)
		case "/warming":
			if n < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	t.Run("success defaults to GET", func(t *testing.T) {
		ctx, rc, _ := newRun(t)
		a, err := HTTP(&config.ActionSpec{URL: srv.URL + "/ok"})
		require.NoError(t, err)
		assert.NoError(t, a(ctx, rc))
	})

	t.Run("method and expected status", func(t *testing.T) {
		ctx, rc, _ := newRun(t)
		a, err := HTTP(&config.ActionSpec{URL: srv.URL + "/created", Method: "post", ExpectStatus: http.StatusCreated})
		require.NoError(t, err)
		assert.NoError(t, a(ctx, rc))

		a, err = HTTP(&config.ActionSpec{URL: srv.URL + "/ok", ExpectStatus: http.StatusCreated})
		require.NoError(t, err)
		var se *StatusError
		require.ErrorAs(t, a(ctx, rc), &se)
		assert.Equal(t, http.StatusOK, se.Status)
	})

	t.Run("error status fails", func(t *testing.T) {
		ctx, rc, _ := newRun(t)
		a, err := HTTP(&config.ActionSpec{URL: srv.URL + "/missing"})
		require.NoError(t, err)
		assert.ErrorContains(t, a(ctx, rc), "returned 404 Not Found")
	})

	t.Run("retries until the service is up", func(t *testing.T) {
		calls.Store(0)
		ctx, rc, _ := newRun(t)
		a, err := HTTP(&config.ActionSpec{
			URL:   srv.URL + "/warming",
			Retry: &config.RetrySpec{Attempts: 5, Initial: time.Millisecond, Max: 2 * time.Millisecond},
		})
		require.NoError(t, err)
		require.NoError(t, a(ctx, rc))
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("invalid url", func(t *testing.T) {
		_, err := HTTP(&config.ActionSpec{URL: "localhost/health"})
		assert.ErrorContains(t, err, "url must be an absolute URL")
	})
}
