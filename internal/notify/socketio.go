package notify

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

const defaultTimeout = 10 * time.Second

// SocketIO emits the event to a socket.io server over the websocket
// transport. The URL path, if any, is used as the engine.io path.
type SocketIO struct {
	URL       string
	Namespace string
	// Event overrides EventRunFinished.
	Event string
	// AckEvent, when set, is a server event to wait for after emitting.
	AckEvent string
	Timeout  time.Duration
}

var _ Notifier = (*SocketIO)(nil)

// Notify connects, emits ev and disconnects.
func (s *SocketIO) Notify(ctx context.Context, ev Event) error {
	logger := ctxlog.FromContext(ctx).With("notifier", "socketio", "url", s.URL)

	parsedURL, err := url.Parse(s.URL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}
	switch parsedURL.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return fmt.Errorf("unsupported notify URL scheme %q", parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return errors.New("notify URL has no host")
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	event := s.Event
	if event == "" {
		event = EventRunFinished
	}
	namespace := s.Namespace
	if namespace == "" {
		namespace = "/"
	}

	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(namespace, opts)
	defer func() {
		logger.Debug("Disconnecting socket client")
		io.Disconnect()
	}()

	done := make(chan error, 1)
	send := func(err error) {
		select {
		case done <- err:
		default:
		}
	}

	data, err := ev.toMap()
	if err != nil {
		return err
	}

	io.Once(types.EventName("connect"), func(...any) {
		logger.Debug("Connected, emitting event", "sid", io.Id(), "event", event, "run_id", ev.RunID)
		io.Emit(event, data)
		if s.AckEvent == "" {
			send(nil)
		}
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		if len(errs) > 0 {
			if err, ok := errs[0].(error); ok {
				send(err)
				return
			}
		}
		send(errors.New("connect_error"))
	})
	if s.AckEvent != "" {
		io.Once(types.EventName(s.AckEvent), func(...any) {
			logger.Debug("Acknowledgement received", "event", s.AckEvent)
			send(nil)
		})
	}

	io.Connect()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("socket.io notification failed: %w", err)
		}
		logger.Info("Run notification sent", "event", event)
		return nil
	case <-opCtx.Done():
		return fmt.Errorf("timed out after %s sending socket.io notification", timeout)
	}
}
