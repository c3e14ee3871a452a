package feed

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/milk9111/crashthatcar/ecs/component"
	"github.com/milk9111/crashthatcar/ecs/system"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(msg, &out); err != nil {
		t.Fatalf("decode %s: %v", msg, err)
	}
	return out
}

func TestHubBroadcastsEvents(t *testing.T) {
	hub := New(nil)
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	if got := read(t, conn); got["type"] != "welcome" {
		t.Fatalf("first message = %v, want welcome", got)
	}
	if hub.Clients() != 1 {
		t.Fatalf("Clients = %d, want 1", hub.Clients())
	}

	hub.Publish([]system.Event{
		{Kind: system.EventExploded, Category: component.CategoryObstacle, Big: true},
		{Kind: system.EventCue, Cue: system.CueBigExplosion},
	})

	first := read(t, conn)
	event, ok := first["event"].(map[string]any)
	if first["type"] != "event" || !ok || event["type"] != "exploded" || event["big"] != true {
		t.Fatalf("first event = %v", first)
	}
	second := read(t, conn)
	if event := second["event"].(map[string]any); event["cue"] != "big_explosion" {
		t.Fatalf("second event = %v", second)
	}
}

func TestHubAnswersPings(t *testing.T) {
	hub := New(nil)
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	read(t, conn)

	tests := []struct {
		send string
		want string
	}{
		{`{"type":"ping"}`, "pong"},
		{`{"type":"steer"}`, "error"},
		{`not json`, "error"},
	}
	for _, tt := range tests {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(tt.send)); err != nil {
			t.Fatalf("write: %v", err)
		}
		if got := read(t, conn); got["type"] != tt.want {
			t.Fatalf("reply to %s = %v, want %s", tt.send, got, tt.want)
		}
	}
}

func TestHubForgetsClosedClients(t *testing.T) {
	hub := New(nil)
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	read(t, conn)
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("client still registered")
		}
		time.Sleep(10 * time.Millisecond)
	}
	hub.Publish([]system.Event{{Kind: system.EventCue, Cue: system.CuePop}})
}

func TestHealth(t *testing.T) {
	hub := New(nil)
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("health = %v", body)
	}
}
