package report

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// DefaultEvent is the socket.io event a dump is emitted as.
const DefaultEvent = "registry:dump"

const defaultConnectTimeout = 15 * time.Second

// Publisher emits dumps to a socket.io server.
type Publisher struct {
	baseURL   string
	path      string
	namespace string

	Event              string
	ConnectTimeout     time.Duration
	InsecureSkipVerify bool
	Logger             *slog.Logger
}

// NewPublisher parses rawURL, e.g. "http://localhost:3000/socket.io/".
// The namespace defaults to "/".
func NewPublisher(rawURL, namespace string) (*Publisher, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("failed to parse URL: %q has no scheme or host", rawURL)
	}
	if namespace == "" {
		namespace = "/"
	}
	return &Publisher{
		baseURL:        fmt.Sprintf("%s://%s", u.Scheme, u.Host),
		path:           u.Path,
		namespace:      namespace,
		Event:          DefaultEvent,
		ConnectTimeout: defaultConnectTimeout,
		Logger:         slog.Default(),
	}, nil
}

// Publish connects, emits d and disconnects.
func (p *Publisher) Publish(ctx context.Context, d *Dump) error {
	logger := p.Logger.With("url", p.baseURL, "event", p.Event)

	payload, err := toPayload(d)
	if err != nil {
		return err
	}

	opts := socket.DefaultOptions()
	if p.path != "" {
		opts.SetPath(p.path)
	}
	if p.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))
	opts.SetReconnection(false)

	manager := socket.NewManager(p.baseURL, opts)
	io := manager.Socket(p.namespace, opts)
	defer io.Disconnect()

	connected := make(chan error, 1)
	io.Once(types.EventName("connect"), func(...any) {
		logger.Debug("Connected to publish target.", "sid", io.Id())
		signal(connected, nil)
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("connect error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		signal(connected, err)
	})

	io.Connect()

	timeout := p.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	select {
	case err := <-connected:
		if err != nil {
			return fmt.Errorf("socket.io connection failed: %w", err)
		}
	case <-ctx.Done():
		return fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(timeout):
		return fmt.Errorf("timed out after %s waiting for socket.io connection", timeout)
	}

	if err := io.Emit(p.Event, payload); err != nil {
		return fmt.Errorf("emitting %s: %w", p.Event, err)
	}
	logger.Info("Dump published.", "sources", len(d.Sources), "components", d.Len())
	return nil
}

// signal delivers the first connection outcome. Later ones are dropped so a
// socket.io callback never blocks after Publish has returned.
func signal(ch chan<- error, err error) {
	select {
	case ch <- err:
	default:
	}
}

// toPayload turns d into plain maps and slices, which is what the socket.io
// encoder serializes predictably.
func toPayload(d *Dump) (map[string]any, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encoding dump: %w", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("encoding dump: %w", err)
	}
	return payload, nil
}
