// Package realtime avisa a los clientes conectados por websocket que los
// precios o las promociones de una sesión cambiaron. Los avisos no llevan
// datos: el cliente siempre vuelve a consultar la API.
package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hugohenrick/verduleria-api/internal/service"
	"github.com/hugohenrick/verduleria-api/pkg/logger"
)

// Eventos que envía el cliente
const (
	EventJoin  = "session:join"
	EventLeave = "session:leave"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
	sendBuffer     = 16
)

// Frame es el formato de todos los mensajes del canal
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type roomData struct {
	SessionID string `json:"sessionId"`
}

type eventData struct {
	SessionID  string   `json:"sessionId"`
	VariantIDs []string `json:"variantIds"`
}

// Hub mantiene las salas por sesión de esta réplica
type Hub struct {
	mu       sync.RWMutex
	rooms    map[string]map[*client]struct{}
	upgrader websocket.Upgrader
	log      logger.Logger
}

// NewHub crea el hub. allowedOrigins vacío o con "*" acepta cualquier origen.
func NewHub(allowedOrigins []string, log logger.Logger) *Hub {
	h := &Hub{
		rooms: make(map[string]map[*client]struct{}),
		log:   log,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
	}
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}

// Publish entrega el evento a los clientes de esta réplica. Implementa service.Notifier.
func (h *Hub) Publish(_ context.Context, e service.Event) {
	h.Deliver(e)
}

// Deliver envía el evento a la sala de su sesión. Un cliente lento pierde el aviso.
func (h *Hub) Deliver(e service.Event) {
	msg, err := encodeEvent(e)
	if err != nil {
		h.log.Error("no se pudo serializar el evento", "event", e.Name, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[e.SessionID] {
		select {
		case c.send <- msg:
		default:
			h.log.Warn("aviso descartado, cliente saturado", "event", e.Name, "session_id", e.SessionID)
		}
	}
}

func encodeEvent(e service.Event) ([]byte, error) {
	data, err := json.Marshal(eventData{SessionID: e.SessionID, VariantIDs: e.VariantIDs})
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: e.Name, Data: data})
}

// RoomSize devuelve cuántos clientes escuchan la sesión
func (h *Hub) RoomSize(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[sessionID])
}

func (h *Hub) join(c *client, sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[sessionID]
	if !ok {
		room = make(map[*client]struct{})
		h.rooms[sessionID] = room
	}
	room[c] = struct{}{}
	c.sessions[sessionID] = struct{}{}
}

func (h *Hub) leave(c *client, sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(c, sessionID)
}

func (h *Hub) leaveLocked(c *client, sessionID string) {
	if room, ok := h.rooms[sessionID]; ok {
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, sessionID)
		}
	}
	delete(c.sessions, sessionID)
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sid := range c.sessions {
		h.leaveLocked(c, sid)
	}
}

// ServeWS actualiza la conexión a websocket y atiende al cliente hasta que se desconecte
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("no se pudo abrir el websocket", "error", err)
		return
	}
	c := &client{
		hub:      h,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		sessions: make(map[string]struct{}),
	}
	go c.writePump()
	c.readPump()
}

// client es una conexión websocket. sessions solo se toca con hub.mu tomado.
type client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	sessions map[string]struct{}
}

func (c *client) readPump() {
	defer func() {
		c.hub.drop(c)
		close(c.send)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var f Frame
		if err := c.conn.ReadJSON(&f); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Debug("websocket cerrado", "error", err)
			}
			return
		}
		var d roomData
		if len(f.Data) > 0 {
			if err := json.Unmarshal(f.Data, &d); err != nil {
				continue
			}
		}
		if d.SessionID == "" {
			continue
		}
		switch f.Event {
		case EventJoin:
			c.hub.join(c, d.SessionID)
		case EventLeave:
			c.hub.leave(c, d.SessionID)
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
