package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/vk/tsrun/internal/ctxlog"
	"github.com/vk/tsrun/internal/toolchain"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// SocketIO emits stage events to a Socket.IO server over a websocket. Every
// event is sent with an acknowledgement callback, so the server must ack it
// within the configured timeout for Notify to succeed.
type SocketIO struct {
	io      *socket.Socket
	event   string
	timeout time.Duration
}

// DialSocketIO connects to the server described by cfg and waits up to
// cfg.Timeout for the namespace to accept the connection.
func DialSocketIO(ctx context.Context, cfg *toolchain.Notify) (*SocketIO, error) {
	logger := ctxlog.FromContext(ctx).With("notifier", "socketio", "url", cfg.URL, "namespace", cfg.Namespace)

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("notify url %q must be absolute", cfg.URL)
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}
	if cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(cfg.Namespace, opts)

	connected := make(chan error, 1)
	io.On(types.EventName("connect"), func(...any) {
		select {
		case connected <- nil:
		default:
		}
	})
	io.On(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connection refused by server")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		select {
		case connected <- err:
		default:
		}
	})

	logger.Debug("Connecting.")
	io.Connect()

	dialCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	select {
	case <-dialCtx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("timed out connecting to %s: %w", cfg.URL, dialCtx.Err())
	case err := <-connected:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("failed to connect to %s: %w", cfg.URL, err)
		}
	}

	logger.Debug("Connected.", "sid", io.Id())
	return &SocketIO{io: io, event: cfg.Event, timeout: cfg.Timeout}, nil
}

// Notify implements Notifier. It blocks until the server acknowledges the
// event, the ack timeout elapses or ctx is done.
func (s *SocketIO) Notify(ctx context.Context, ev Event) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Emitting stage event.", "event", s.event, "stage", ev.Stage)

	acked := make(chan error, 1)
	s.io.Timeout(s.timeout).EmitWithAck(s.event, ev.Payload())(func(_ []any, err error) {
		select {
		case acked <- err:
		default:
		}
	})

	select {
	case <-ctx.Done():
		return fmt.Errorf("stage event %q not acknowledged: %w", ev.Stage, ctx.Err())
	case err := <-acked:
		if err != nil {
			return fmt.Errorf("stage event %q not acknowledged: %w", ev.Stage, err)
		}
	}
	logger.Debug("Stage event acknowledged.", "stage", ev.Stage)
	return nil
}

// Close implements Notifier. Events are acknowledged before Notify returns,
// so nothing is left queued when the socket disconnects.
func (s *SocketIO) Close() error {
	s.io.Disconnect()
	return nil
}
