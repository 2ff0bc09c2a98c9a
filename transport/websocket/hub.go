package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wricardo/mcp-training/ludo/game/engine"
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
)

// Events pushed to a room's sockets
const (
	EventSnapshot     = "snapshot"
	EventPlayerJoined = "player_joined"
	EventPlayerLeft   = "player_left"
	EventGameStarted  = "game_started"
	EventDiceRolled   = "dice_rolled"
	EventCoinMoved    = "coin_moved"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is the JSON frame pushed to clients
type Message struct {
	GameName   string             `json:"game_name"`
	Event      string             `json:"event"`
	GameStatus *engine.GameStatus `json:"game_status,omitempty"`
}

// Client is one socket subscribed to a room
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	gameName string
}

// Hub maintains the set of active clients per room and fans out messages
type Hub struct {
	// Registered clients by game name
	games map[string]map[*Client]bool
	mu    sync.RWMutex

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		games:      make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// ServeWS upgrades the request and subscribes the socket to gameName. When
// initial is non-nil it is sent first as a snapshot.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, gameName string, initial *engine.GameStatus) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:      h,
		conn:     conn,
		send:     make(chan []byte, 256),
		gameName: gameName,
	}

	if initial != nil {
		if data, err := encode(&Message{GameName: gameName, Event: EventSnapshot, GameStatus: initial}); err == nil {
			client.send <- data
		}
	}

	h.register <- client

	go client.writePump()
	go client.readPump()
}

// BroadcastStatus queues a status update for every socket in gameName. It
// never blocks; updates are dropped when the queue is full.
func (h *Hub) BroadcastStatus(gameName, event string, status *engine.GameStatus) {
	message := &Message{
		GameName:   gameName,
		Event:      event,
		GameStatus: status,
	}

	select {
	case h.broadcast <- message:
	default:
		log.Printf("WebSocket broadcast queue full, dropping %s for game %s", event, gameName)
	}
}

// ClientCount returns the number of sockets subscribed to gameName
func (h *Hub) ClientCount(gameName string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.games[gameName])
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.games[client.gameName] == nil {
		h.games[client.gameName] = make(map[*Client]bool)
	}
	h.games[client.gameName][client] = true

	log.Printf("Client registered for game %s (total clients: %d)",
		client.gameName, len(h.games[client.gameName]))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

// removeLocked drops client from its room; h.mu must be held
func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.games[client.gameName]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}

	delete(clients, client)
	close(client.send)

	if len(clients) == 0 {
		delete(h.games, client.gameName)
	}

	log.Printf("Client unregistered from game %s (remaining clients: %d)",
		client.gameName, len(clients))
}

func (h *Hub) broadcastMessage(message *Message) {
	data, err := encode(message)
	if err != nil {
		log.Printf("Failed to marshal broadcast message: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.games[message.GameName] {
		select {
		case client.send <- data:
		default:
			// Client's send buffer is full
			h.removeLocked(client)
		}
	}
}

func encode(message *Message) ([]byte, error) {
	return json.Marshal(message)
}

// readPump drains the connection so pongs and close frames are processed
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}

// writePump sends queued frames, one JSON message per frame, and pings
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
