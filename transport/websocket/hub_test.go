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

	"github.com/wricardo/maze-solver/maze/grid"
	"github.com/wricardo/maze-solver/maze/replay"
	"github.com/wricardo/maze-solver/maze/search"
)

func testPlayer(t *testing.T) *replay.Player {
	t.Helper()
	g, err := grid.Parse("S.\n.E", grid.DefaultLegend())
	if err != nil {
		t.Fatalf("Failed to parse maze: %v", err)
	}
	res, err := search.Solve(g, search.BFS)
	if err != nil {
		t.Fatalf("Failed to solve maze: %v", err)
	}
	return replay.NewPlayer(res)
}

func startServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("run"))
	}))
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server, runID string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?run=" + runID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, runID string, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if hub.ClientCount(runID) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Expected %d clients for run %s, got %d", want, runID, hub.ClientCount(runID))
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
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

func TestNewHub(t *testing.T) {
	hub := NewHub()

	if hub.runs == nil {
		t.Error("Hub runs map is nil")
	}
	if hub.broadcast == nil || hub.register == nil || hub.unregister == nil {
		t.Error("Hub channels are not initialized")
	}
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := NewHub()

	client1 := &Client{hub: hub, runID: "run-1", send: make(chan []byte, 256)}
	client2 := &Client{hub: hub, runID: "run-1", send: make(chan []byte, 256)}

	hub.registerClient(client1)
	hub.registerClient(client2)
	if len(hub.runs["run-1"]) != 2 {
		t.Fatalf("Expected 2 clients, got %d", len(hub.runs["run-1"]))
	}

	hub.unregisterClient(client1)
	if !hub.runs["run-1"][client2] {
		t.Error("client2 should still be registered")
	}
	if _, ok := <-client1.send; ok {
		t.Error("client1 send channel should be closed")
	}

	hub.unregisterClient(client2)
	if _, exists := hub.runs["run-1"]; exists {
		t.Error("Run should have been cleaned up after last client unregistered")
	}

	// Unregistering twice is a no-op
	hub.unregisterClient(client2)
}

func TestHubBroadcastOnlyToRun(t *testing.T) {
	hub := NewHub()

	watcher := &Client{hub: hub, runID: "watched", send: make(chan []byte, 256)}
	other := &Client{hub: hub, runID: "other", send: make(chan []byte, 256)}
	hub.registerClient(watcher)
	hub.registerClient(other)

	hub.broadcastMessage(&Message{RunID: "watched", Event: "custom", Data: "payload"})

	select {
	case data := <-watcher.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		if message.Event != "custom" || message.Data != "payload" {
			t.Errorf("Unexpected message: %+v", message)
		}
	default:
		t.Error("Watcher did not receive the message")
	}

	select {
	case <-other.send:
		t.Error("Client of another run received the message")
	default:
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub()

	slow := &Client{hub: hub, runID: "slow", send: make(chan []byte)}
	hub.registerClient(slow)

	hub.broadcastMessage(&Message{RunID: "slow", Event: "custom"})

	if _, exists := hub.runs["slow"]; exists {
		t.Error("Client with a full send buffer should be dropped")
	}
}

func TestWebSocketConnectAndDisconnect(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	server := startServer(t, hub)
	conn := dial(t, server, "ws-test")

	waitForClients(t, hub, "ws-test", 1)

	conn.Close()
	waitForClients(t, hub, "ws-test", 0)
}

func TestBroadcastEvent(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	server := startServer(t, hub)
	conn := dial(t, server, "event-test")
	waitForClients(t, hub, "event-test", 1)

	hub.BroadcastEvent("event-test", "run_deleted", map[string]string{"id": "event-test"})

	message := readMessage(t, conn)
	if message.RunID != "event-test" || message.Event != "run_deleted" {
		t.Errorf("Unexpected message: %+v", message)
	}
}

func TestReplayStreamsFramesInOrder(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	server := startServer(t, hub)
	conn := dial(t, server, "replay-test")
	waitForClients(t, hub, "replay-test", 1)

	finished := hub.Replay(context.Background(), "replay-test", testPlayer(t), time.Millisecond)

	start := readMessage(t, conn)
	if start.Event != EventReplayStart {
		t.Fatalf("Expected %s, got %s", EventReplayStart, start.Event)
	}

	var events []string
	var cells []grid.Coord
	for {
		message := readMessage(t, conn)
		if message.Frame == nil {
			t.Fatalf("Frame missing from %s message", message.Event)
		}
		events = append(events, message.Event)
		if message.Event == EventDone {
			if !message.Frame.Found {
				t.Error("Done frame should report a found path")
			}
			break
		}
		cells = append(cells, message.Frame.Cell)
	}

	want := []string{EventExplore, EventExplore, EventExplore, EventExplore, EventPath, EventPath, EventPath, EventDone}
	if strings.Join(events, ",") != strings.Join(want, ",") {
		t.Errorf("Expected events %v, got %v", want, events)
	}
	if cells[0] != (grid.Coord{}) || cells[4] != (grid.Coord{}) || cells[6] != (grid.Coord{Row: 1, Col: 1}) {
		t.Errorf("Unexpected cells: %v", cells)
	}

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Error("Replay did not finish")
	}
}

func TestReplayCancelledByContext(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	finished := hub.Replay(ctx, "cancel-test", testPlayer(t), time.Hour)
	cancel()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Error("Replay should stop when its context is cancelled")
	}
}

func TestReplayReplacesPrevious(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	first := hub.Replay(context.Background(), "same-run", testPlayer(t), time.Hour)
	second := hub.Replay(context.Background(), "same-run", testPlayer(t), time.Millisecond)

	select {
	case <-first:
	case <-time.After(time.Second):
		t.Fatal("First replay should be cancelled by the second")
	}
	select {
	case <-second:
	case <-time.After(time.Second):
		t.Fatal("Second replay should run to completion")
	}
}

func TestStopEndsReplays(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	finished := hub.Replay(context.Background(), "stop-test", testPlayer(t), time.Hour)
	hub.Stop()
	hub.Stop()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Error("Stop should end running replays")
	}
	if hub.ClientCount("stop-test") != 0 {
		t.Error("Stopped hub should report no clients")
	}
}
