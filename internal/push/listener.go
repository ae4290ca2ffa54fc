package push

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/relaydeck/internal/logging"
)

const (
	// DefaultHandshakeTimeout bounds the websocket dial
	DefaultHandshakeTimeout = 15 * time.Second

	// initial and maximum delay between reconnect attempts; the delay
	// doubles per failure and resets after a successful dial
	initialReconnectDelay = 1 * time.Second
	maxReconnectDelay     = 30 * time.Second
)

// Listener maintains the persistent push connection to the hub for the
// session's lifetime, reconnecting with capped backoff when it drops.
// Decoded events are delivered on Events in arrival order.
type Listener struct {
	endpoint string
	dialer   *websocket.Dialer
	events   chan Event

	// reconnect pacing; package defaults unless overridden in tests
	initialDelay time.Duration
	maxDelay     time.Duration
}

// NewListener creates a listener for the hub's push endpoint. serverURL is
// the hub's HTTP base URL; path is the websocket path (e.g. "/push").
func NewListener(serverURL, path string) (*Listener, error) {
	endpoint, err := wsEndpoint(serverURL, path)
	if err != nil {
		return nil, err
	}
	return &Listener{
		endpoint:     endpoint,
		dialer:       &websocket.Dialer{HandshakeTimeout: DefaultHandshakeTimeout},
		events:       make(chan Event, 16),
		initialDelay: initialReconnectDelay,
		maxDelay:     maxReconnectDelay,
	}, nil
}

// Events returns the channel of decoded push events. It is closed when Run
// returns.
func (l *Listener) Events() <-chan Event {
	return l.events
}

// Run dials the hub and pumps events until ctx is cancelled. Connection
// drops are not fatal: the listener redials with backoff, emitting a connect
// event each time the channel comes back up.
func (l *Listener) Run(ctx context.Context) {
	defer close(l.events)

	delay := l.initialDelay
	for {
		conn, _, err := l.dialer.DialContext(ctx, l.endpoint, nil)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logging.Warn("Push channel dial failed",
				zap.String("endpoint", l.endpoint),
				zap.Duration("retry_in", delay),
				zap.Error(err),
			)
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
			delay = nextDelay(delay, l.maxDelay)
			continue
		}

		delay = l.initialDelay
		logging.LogConnection(l.endpoint, "push_connected")
		l.deliver(ctx, Event{Type: EventConnect})

		if !l.pump(ctx, conn) {
			return
		}
		logging.LogConnection(l.endpoint, "push_disconnected")
	}
}

// pump reads frames until the connection drops or ctx is cancelled.
// Returns false when the listener should stop entirely.
func (l *Listener) pump(ctx context.Context, conn *websocket.Conn) bool {
	defer func() { _ = conn.Close() }()

	// Unblock ReadMessage when the context is cancelled.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return ctx.Err() == nil
		}

		event, err := DecodeFrame(raw)
		if err != nil {
			// Unknown or malformed events are skipped, not fatal: the hub
			// may grow event types this client does not know yet.
			logging.Warn("Ignoring push frame", zap.Error(err))
			continue
		}

		logging.LogPushEvent(string(event.Type), raw)
		if !l.deliver(ctx, event) {
			return false
		}
	}
}

func (l *Listener) deliver(ctx context.Context, event Event) bool {
	select {
	case l.events <- event:
		return true
	case <-ctx.Done():
		return false
	}
}

// nextDelay doubles the reconnect delay up to max
func nextDelay(current, max time.Duration) time.Duration {
	next := current * 2
	if next > max {
		return max
	}
	return next
}

// wsEndpoint converts the hub's HTTP base URL plus a path into a websocket
// URL ("http" -> "ws", "https" -> "wss").
func wsEndpoint(serverURL, path string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL %q: %w", serverURL, err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q in server URL", u.Scheme)
	}
	u.Path = path
	return u.String(), nil
}
