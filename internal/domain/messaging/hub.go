package messaging

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 16 * 1024
	sendBuffer = 256
)

type client struct {
	userID int64
	conn   *websocket.Conn
	send   chan []byte
}

// Hub tracks open websocket connections. A user may hold several (one per
// tab or device).
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[int64]map[*client]struct{})}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if _, ok := set[c]; ok {
		delete(set, c)
		close(c.send)
	}
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
}

func (h *Hub) Online(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

// SendToUser queues event for every connection of userID and reports whether
// at least one accepted it. Slow connections are skipped.
func (h *Hub) SendToUser(userID int64, event any) bool {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("ws marshal failed user_id=%d err=%v", userID, err)
		return false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := false
	for c := range h.clients[userID] {
		select {
		case c.send <- data:
			delivered = true
		default:
		}
	}
	return delivered
}

// Deliver pushes a relayed event to the local connections of its recipients.
func (h *Hub) Deliver(e Event) {
	msg := eventMessage(e)
	seen := make(map[int64]bool, len(e.Recipients))
	for _, id := range e.Recipients {
		if seen[id] {
			continue
		}
		seen[id] = true
		h.SendToUser(id, msg)
	}
}

// ServeWS runs the connection until it closes. handle may return a reply for
// the sending connection only.
func (h *Hub) ServeWS(conn *websocket.Conn, userID int64, handle func(ClientMessage) *ServerMessage) {
	c := &client{
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
	}
	h.register(c)

	go h.writePump(c)
	h.readPump(c, handle)
}

func (h *Hub) readPump(c *client, handle func(ClientMessage) *ServerMessage) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMsgSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("ws read error user_id=%d err=%v", c.userID, err)
			}
			return
		}

		var msg ClientMessage
		var reply *ServerMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			reply = errorMessage("INVALID_JSON", "failed to parse message")
		} else {
			reply = handle(msg)
		}
		if reply == nil {
			continue
		}
		data, err := json.Marshal(reply)
		if err != nil {
			continue
		}
		select {
		case c.send <- data:
		default:
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
