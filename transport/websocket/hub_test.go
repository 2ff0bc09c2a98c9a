package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wricardo/mcp-training/ludo/game/engine"
)

func newTestClient(hub *Hub, gameName string) *Client {
	return &Client{
		hub:      hub,
		gameName: gameName,
		send:     make(chan []byte, 256),
	}
}

func TestNewHub(t *testing.T) {
	hub := NewHub()

	if hub.games == nil {
		t.Error("Hub games map is nil")
	}
	if hub.broadcast == nil || hub.register == nil || hub.unregister == nil {
		t.Error("Hub channels not initialized")
	}
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := NewHub()
	client1 := newTestClient(hub, "friday")
	client2 := newTestClient(hub, "friday")

	hub.registerClient(client1)
	hub.registerClient(client2)

	if got := hub.ClientCount("friday"); got != 2 {
		t.Errorf("Expected 2 clients, got %d", got)
	}

	hub.unregisterClient(client1)
	if got := hub.ClientCount("friday"); got != 1 {
		t.Errorf("Expected 1 client, got %d", got)
	}
	if _, ok := <-client1.send; ok {
		t.Error("Expected send channel to be closed")
	}

	// Second unregister is a no-op
	hub.unregisterClient(client1)

	hub.unregisterClient(client2)
	if _, exists := hub.games["friday"]; exists {
		t.Error("Room should have been cleaned up after last client unregistered")
	}
}

func TestHubBroadcastIsScopedToGame(t *testing.T) {
	hub := NewHub()
	friday := newTestClient(hub, "friday")
	saturday := newTestClient(hub, "saturday")
	hub.registerClient(friday)
	hub.registerClient(saturday)

	status := &engine.GameStatus{Name: "friday", Status: engine.StatusInProgress, CurrentPlayerName: "ann"}
	hub.broadcastMessage(&Message{GameName: "friday", Event: EventDiceRolled, GameStatus: status})

	select {
	case data := <-friday.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		if message.GameName != "friday" || message.Event != EventDiceRolled {
			t.Errorf("Unexpected message: %+v", message)
		}
		if message.GameStatus == nil || message.GameStatus.CurrentPlayerName != "ann" {
			t.Error("GameStatus not correctly transmitted")
		}
	default:
		t.Error("Expected message for friday client")
	}

	select {
	case <-saturday.send:
		t.Error("Saturday client should not receive friday's update")
	default:
	}
}

func TestHubBroadcastStatusQueues(t *testing.T) {
	hub := NewHub()

	hub.BroadcastStatus("friday", EventCoinMoved, &engine.GameStatus{Name: "friday"})

	select {
	case message := <-hub.broadcast:
		if message.GameName != "friday" || message.Event != EventCoinMoved {
			t.Errorf("Unexpected queued message: %+v", message)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("No broadcast message queued")
	}
}

func TestHubBroadcastStatusNeverBlocks(t *testing.T) {
	hub := NewHub()
	done := make(chan struct{})

	go func() {
		for i := 0; i < cap(hub.broadcast)+10; i++ {
			hub.BroadcastStatus("friday", EventDiceRolled, nil)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("BroadcastStatus blocked without a running hub")
	}
}

func dialRoom(t *testing.T, hub *Hub, initial *engine.GameStatus) (*websocket.Conn, func()) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("game"), initial)
	}))

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?game=friday"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		server.Close()
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	return conn, func() {
		conn.Close()
		server.Close()
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within timeout")
}

func TestWebSocketLifecycle(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	conn, cleanup := dialRoom(t, hub, nil)
	defer cleanup()

	waitFor(t, func() bool { return hub.ClientCount("friday") == 1 })

	conn.Close()
	waitFor(t, func() bool { return hub.ClientCount("friday") == 0 })
}

func TestWebSocketSnapshotAndUpdates(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	initial := &engine.GameStatus{Name: "friday", Status: engine.StatusWaiting}
	conn, cleanup := dialRoom(t, hub, initial)
	defer cleanup()

	read := func() Message {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("Failed to read WebSocket message: %v", err)
		}
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		return message
	}

	snapshot := read()
	if snapshot.Event != EventSnapshot || snapshot.GameStatus.Status != engine.StatusWaiting {
		t.Errorf("Unexpected snapshot: %+v", snapshot)
	}

	waitFor(t, func() bool { return hub.ClientCount("friday") == 1 })

	hub.BroadcastStatus("friday", EventPlayerJoined, &engine.GameStatus{
		Name:   "friday",
		Status: engine.StatusWaiting,
		Players: []engine.PlayerStatus{
			{Name: "ann", Color: engine.Red},
		},
	})

	update := read()
	if update.Event != EventPlayerJoined {
		t.Errorf("Expected player_joined, got %s", update.Event)
	}
	if len(update.GameStatus.Players) != 1 || update.GameStatus.Players[0].Name != "ann" {
		t.Errorf("Unexpected players: %+v", update.GameStatus.Players)
	}
}
