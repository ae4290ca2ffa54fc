package push

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// TestDecodeFrame tests decoding of every known event type
func TestDecodeFrame(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want EventType
	}{
		{"connect", `{"event":"connect"}`, EventConnect},
		{"status update", `{"event":"status_update","data":{"status":"processing","message":"Processing your command..."}}`, EventStatusUpdate},
		{"new message", `{"event":"new_message","data":{"sender":"assistant","text":"Done."}}`, EventNewMessage},
		{"refresh states", `{"event":"refresh_states"}`, EventRefreshStates},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := DecodeFrame([]byte(tt.raw))
			if err != nil {
				t.Fatalf("DecodeFrame failed: %v", err)
			}
			if event.Type != tt.want {
				t.Errorf("Expected type %q, got %q", tt.want, event.Type)
			}
		})
	}
}

// TestDecodeFrame_Payloads tests payload field extraction
func TestDecodeFrame_Payloads(t *testing.T) {
	event, err := DecodeFrame([]byte(`{"event":"status_update","data":{"status":"recording_command","message":"Listening for command..."}}`))
	if err != nil {
		t.Fatalf("DecodeFrame failed: %v", err)
	}
	if event.Status == nil || event.Status.Status != "recording_command" {
		t.Errorf("Expected status payload, got %+v", event.Status)
	}

	event, err = DecodeFrame([]byte(`{"event":"new_message","data":{"sender":"user","text":"turn off the den"}}`))
	if err != nil {
		t.Fatalf("DecodeFrame failed: %v", err)
	}
	if event.Message == nil || event.Message.Sender != "user" || event.Message.Text != "turn off the den" {
		t.Errorf("Expected message payload, got %+v", event.Message)
	}
}

// TestDecodeFrame_Rejects tests unknown and malformed frames
func TestDecodeFrame_Rejects(t *testing.T) {
	cases := []string{
		`{"event":"card_scanned","data":{}}`,
		`{"event":"status_update","data":"not an object"}`,
		`not json`,
	}
	for _, raw := range cases {
		if _, err := DecodeFrame([]byte(raw)); err == nil {
			t.Errorf("Expected error for frame %q", raw)
		}
	}
}

// TestWSEndpoint tests scheme conversion
func TestWSEndpoint(t *testing.T) {
	tests := []struct {
		server string
		path   string
		want   string
	}{
		{"http://hub.lan:5001", "/push", "ws://hub.lan:5001/push"},
		{"https://hub.lan", "/push", "wss://hub.lan/push"},
	}
	for _, tt := range tests {
		got, err := wsEndpoint(tt.server, tt.path)
		if err != nil {
			t.Fatalf("wsEndpoint(%q) failed: %v", tt.server, err)
		}
		if got != tt.want {
			t.Errorf("wsEndpoint(%q, %q) = %q, want %q", tt.server, tt.path, got, tt.want)
		}
	}

	if _, err := wsEndpoint("ftp://hub.lan", "/push"); err == nil {
		t.Error("Expected error for unsupported scheme")
	}
}

// TestListener_ReceivesEvents tests the dial-and-pump loop against a fake hub
func TestListener_ReceivesEvents(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		frames := []string{
			`{"event":"status_update","data":{"status":"idle","message":""}}`,
			`{"event":"bogus_event"}`, // must be skipped, not fatal
			`{"event":"refresh_states"}`,
		}
		for _, f := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
		}
		// Hold the connection open until the client goes away
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	listener, err := NewListener(server.URL, "/push")
	if err != nil {
		t.Fatalf("NewListener failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go listener.Run(ctx)

	var got []EventType
	timeout := time.After(5 * time.Second)
	for len(got) < 3 {
		select {
		case event := <-listener.Events():
			got = append(got, event.Type)
		case <-timeout:
			t.Fatalf("Timed out waiting for events, got %v", got)
		}
	}

	want := []EventType{EventConnect, EventStatusUpdate, EventRefreshStates}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Event %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

// TestListener_StopsOnCancel tests that cancelling the context closes the
// event channel
func TestListener_StopsOnCancel(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	listener, err := NewListener(server.URL, "/push")
	if err != nil {
		t.Fatalf("NewListener failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		listener.Run(ctx)
		close(done)
	}()

	// Drain the connect event, then cancel
	select {
	case <-listener.Events():
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for connect event")
	}
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Listener did not stop after cancellation")
	}
}

// TestNextDelay tests the reconnect backoff curve: doubling up to the cap
func TestNextDelay(t *testing.T) {
	tests := []struct {
		name    string
		current time.Duration
		want    time.Duration
	}{
		{"doubles from initial", 1 * time.Second, 2 * time.Second},
		{"keeps doubling", 8 * time.Second, 16 * time.Second},
		{"caps at max", 16 * time.Second, 30 * time.Second},
		{"stays at max", 30 * time.Second, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nextDelay(tt.current, maxReconnectDelay); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

// TestListener_RedialsAfterDrop tests that a dropped connection leads to a
// redial, a fresh connect event, and a reset reconnect delay
func TestListener_RedialsAfterDrop(t *testing.T) {
	upgrader := websocket.Upgrader{}

	var mu sync.Mutex
	dials := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		mu.Lock()
		dials++
		n := dials
		mu.Unlock()

		if n == 1 {
			// Drop the first connection right after one frame
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"status_update","data":{"status":"idle","message":""}}`))
			conn.Close()
			return
		}

		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"refresh_states"}`))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	listener, err := NewListener(server.URL, "/push")
	if err != nil {
		t.Fatalf("NewListener failed: %v", err)
	}
	listener.initialDelay = 10 * time.Millisecond
	listener.maxDelay = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go listener.Run(ctx)

	var got []EventType
	timeout := time.After(5 * time.Second)
	for len(got) < 4 {
		select {
		case event := <-listener.Events():
			got = append(got, event.Type)
		case <-timeout:
			t.Fatalf("Timed out waiting for redial, got %v", got)
		}
	}

	// One connect per dial: the second connect proves the redial happened
	want := []EventType{EventConnect, EventStatusUpdate, EventConnect, EventRefreshStates}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Event %d: expected %q, got %q", i, want[i], got[i])
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if dials < 2 {
		t.Errorf("Expected at least 2 dials, got %d", dials)
	}
}
