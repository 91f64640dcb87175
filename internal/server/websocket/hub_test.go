package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

func newTestServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	upgrader := &websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := hub.Serve(upgrader, w, r); err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return msg
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.ClientCount() == n {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d clients, got %d", n, hub.ClientCount())
}

// TestHub_ConnectAndBroadcast tests registration, greeting and broadcast.
func TestHub_ConnectAndBroadcast(t *testing.T) {
	logger := zerolog.Nop()
	hub := NewHub(&logger)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	conn := dial(t, newTestServer(t, hub))

	greeting := readMessage(t, conn)
	if greeting.Type != "client.connected" {
		t.Fatalf("greeting type = %q", greeting.Type)
	}
	waitForClients(t, hub, 1)

	hub.Broadcast(Message{Type: "document.removed", Timestamp: time.Now(), Data: map[string]any{"serial": "PN-001"}})

	msg := readMessage(t, conn)
	if msg.Type != "document.removed" {
		t.Errorf("type = %q, want document.removed", msg.Type)
	}
	data, _ := msg.Data.(map[string]any)
	if data["serial"] != "PN-001" {
		t.Errorf("data = %v", msg.Data)
	}
}

// TestHub_Disconnect tests that closing the connection unregisters it.
func TestHub_Disconnect(t *testing.T) {
	logger := zerolog.Nop()
	hub := NewHub(&logger)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	conn := dial(t, newTestServer(t, hub))
	readMessage(t, conn)
	waitForClients(t, hub, 1)

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = conn.Close()

	waitForClients(t, hub, 0)
}

// TestHub_Shutdown tests that cancelling the hub closes client streams.
func TestHub_Shutdown(t *testing.T) {
	logger := zerolog.Nop()
	hub := NewHub(&logger)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	conn := dial(t, newTestServer(t, hub))
	readMessage(t, conn)
	waitForClients(t, hub, 1)

	cancel()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected the connection to close")
	}
	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d, want 0", hub.ClientCount())
	}
}

// TestHub_BroadcastWithoutRun tests that Broadcast never blocks.
func TestHub_BroadcastWithoutRun(t *testing.T) {
	logger := zerolog.Nop()
	hub := NewHub(&logger)

	done := make(chan struct{})
	go func() {
		for range cap(hub.broadcast) + 5 {
			hub.Broadcast(Message{Type: "ledger.refreshed"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked")
	}
}
