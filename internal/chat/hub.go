// Package chat pushes stored chat messages to the WebSocket connections of
// their sender and receiver. One goroutine owns the connection registry.
package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"fleet-backend/internal/metrics"
	"fleet-backend/internal/models"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Envelope is the frame written to clients
type Envelope struct {
	Type    string              `json:"type"`
	Message *models.ChatMessage `json:"message"`
}

type delivery struct {
	userIDs []string
	data    []byte
}

type onlineQuery struct {
	userID string
	reply  chan int
}

type Hub struct {
	clients    map[string]map[*client]bool
	register   chan *client
	unregister chan *client
	deliver    chan delivery
	online     chan onlineQuery
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		deliver:    make(chan delivery, 64),
		online:     make(chan onlineQuery),
		done:       make(chan struct{}),
	}
}

// Run serves the registry until ctx is cancelled, then drops every connection
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, set := range h.clients {
				for c := range set {
					close(c.send)
				}
			}
			metrics.ChatConnections.Set(0)
			return

		case c := <-h.register:
			if h.clients[c.userID] == nil {
				h.clients[c.userID] = make(map[*client]bool)
			}
			h.clients[c.userID][c] = true
			metrics.ChatConnections.Inc()

		case c := <-h.unregister:
			h.remove(c)

		case d := <-h.deliver:
			for _, id := range d.userIDs {
				for c := range h.clients[id] {
					select {
					case c.send <- d.data:
					default:
						// slow consumer
						h.remove(c)
					}
				}
			}

		case q := <-h.online:
			q.reply <- len(h.clients[q.userID])
		}
	}
}

func (h *Hub) remove(c *client) {
	set, ok := h.clients[c.userID]
	if !ok || !set[c] {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
	close(c.send)
	metrics.ChatConnections.Dec()
}

// Publish pushes a stored message to both participants
func (h *Hub) Publish(msg *models.ChatMessage) {
	data, err := json.Marshal(Envelope{Type: "message", Message: msg})
	if err != nil {
		log.Printf("[Chat] marshal message %s: %v", msg.ID, err)
		return
	}
	ids := []string{msg.ReceiverID}
	if msg.SenderID != msg.ReceiverID {
		ids = append(ids, msg.SenderID)
	}
	select {
	case h.deliver <- delivery{userIDs: ids, data: data}:
	case <-h.done:
	}
}

// Online returns the number of open connections of userID
func (h *Hub) Online(userID string) int {
	q := onlineQuery{userID: userID, reply: make(chan int, 1)}
	select {
	case h.online <- q:
		return <-q.reply
	case <-h.done:
		return 0
	}
}

// ServeWS upgrades the request and registers the connection for userID
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("[Chat] WebSocket upgrade error:", err)
		return
	}

	c := &client{hub: h, userID: userID, conn: conn, send: make(chan []byte, sendBuffer)}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	c.readPump()
}

type client struct {
	hub    *Hub
	userID string
	conn   *websocket.Conn
	send   chan []byte
}

// readPump only watches for close and pong frames; messages are sent over HTTP
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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
