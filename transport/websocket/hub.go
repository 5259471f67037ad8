package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wricardo/maze-solver/maze/replay"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// MinReplayInterval bounds how fast a replay may tick
	MinReplayInterval = 5 * time.Millisecond
)

// Events sent to clients
const (
	EventExplore     = "explore"
	EventPath        = "path"
	EventDone        = "done"
	EventReplayStart = "replay_start"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message represents a WebSocket message
type Message struct {
	RunID string        `json:"run_id"`
	Event string        `json:"event"`
	Frame *replay.Frame `json:"frame,omitempty"`
	Data  interface{}   `json:"data,omitempty"`
}

// Client represents a WebSocket client watching one run
type Client struct {
	hub   *Hub
	conn  *websocket.Conn
	send  chan []byte
	runID string
}

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	// Registered clients by run ID
	runs map[string]map[*Client]bool

	// Outbound messages
	broadcast chan *Message

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Client count queries
	counts chan countRequest

	quit chan struct{}
	once sync.Once

	// Cancel functions for replays in flight, by run ID
	replays   map[string]context.CancelFunc
	replaysMu sync.Mutex
}

type countRequest struct {
	runID string
	reply chan int
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		runs:       make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		counts:     make(chan countRequest),
		quit:       make(chan struct{}),
		replays:    make(map[string]context.CancelFunc),
	}
}

// Run starts the hub's event loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case req := <-h.counts:
			req.reply <- len(h.runs[req.runID])

		case <-h.quit:
			for _, clients := range h.runs {
				for client := range clients {
					h.unregisterClient(client)
				}
			}
			return
		}
	}
}

// Stop cancels every replay and ends the event loop
func (h *Hub) Stop() {
	h.once.Do(func() {
		h.replaysMu.Lock()
		for runID, cancel := range h.replays {
			cancel()
			delete(h.replays, runID)
		}
		h.replaysMu.Unlock()
		close(h.quit)
	})
}

// ServeWS handles WebSocket requests from clients
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, runID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:   h,
		conn:  conn,
		send:  make(chan []byte, 256),
		runID: runID,
	}

	select {
	case h.register <- client:
	case <-h.quit:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// ClientCount returns how many clients are watching a run
func (h *Hub) ClientCount(runID string) int {
	req := countRequest{runID: runID, reply: make(chan int, 1)}
	select {
	case h.counts <- req:
		return <-req.reply
	case <-h.quit:
		return 0
	}
}

// BroadcastEvent sends a custom event to all clients watching a run
func (h *Hub) BroadcastEvent(runID string, event string, data interface{}) {
	h.publish(context.Background(), &Message{RunID: runID, Event: event, Data: data})
}

// Replay streams a player's frames to the run's clients, one per interval.
// A replay already running for the same run is cancelled first. The
// returned channel is closed when the replay ends.
func (h *Hub) Replay(ctx context.Context, runID string, player *replay.Player, interval time.Duration) <-chan struct{} {
	interval = max(interval, MinReplayInterval)

	ctx, cancel := context.WithCancel(ctx)
	h.replaysMu.Lock()
	if previous, ok := h.replays[runID]; ok {
		previous()
	}
	h.replays[runID] = cancel
	h.replaysMu.Unlock()

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		defer h.endReplay(ctx, runID)

		h.publish(ctx, &Message{
			RunID: runID,
			Event: EventReplayStart,
			Data:  map[string]int{"total": player.Total(), "interval_ms": int(interval / time.Millisecond)},
		})

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			frame, ok := player.Next()
			if !ok {
				return
			}
			if !h.publish(ctx, &Message{RunID: runID, Event: string(frame.Phase), Frame: &frame}) {
				return
			}
			if frame.Phase == replay.PhaseDone {
				return
			}
		}
	}()

	return finished
}

// endReplay forgets the replay unless a newer one has replaced it
func (h *Hub) endReplay(ctx context.Context, runID string) {
	h.replaysMu.Lock()
	defer h.replaysMu.Unlock()

	if cancel, ok := h.replays[runID]; ok && ctx.Err() == nil {
		cancel()
		delete(h.replays, runID)
	}
}

// publish hands a message to the event loop
func (h *Hub) publish(ctx context.Context, message *Message) bool {
	select {
	case h.broadcast <- message:
		return true
	case <-ctx.Done():
		return false
	case <-h.quit:
		return false
	}
}

// registerClient adds a client to a run
func (h *Hub) registerClient(client *Client) {
	if h.runs[client.runID] == nil {
		h.runs[client.runID] = make(map[*Client]bool)
	}
	h.runs[client.runID][client] = true

	log.Printf("Client registered for run %s (total clients: %d)",
		client.runID, len(h.runs[client.runID]))
}

// unregisterClient removes a client from a run
func (h *Hub) unregisterClient(client *Client) {
	if clients, ok := h.runs[client.runID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)

			if len(clients) == 0 {
				delete(h.runs, client.runID)
			}

			log.Printf("Client unregistered from run %s (remaining clients: %d)",
				client.runID, len(clients))
		}
	}
}

// broadcastMessage sends a message to all clients watching a run
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Failed to marshal broadcast message: %v", err)
		return
	}

	if clients, ok := h.runs[message.RunID]; ok {
		for client := range clients {
			select {
			case client.send <- data:
			default:
				h.unregisterClient(client)
			}
		}
	}
}

// readPump pumps messages from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.quit:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		// Clients only listen; reads keep the connection alive
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection.
// Each message is its own text frame.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
