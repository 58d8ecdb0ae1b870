// Package notify pushes state-changed events to the browser tabs of the
// session they belong to, so each tab can decide when to redraw.
package notify

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"orderdesk/globals"
	"orderdesk/models"
)

type Client struct {
	Conn *websocket.Conn
	Send chan []byte
	Room string // session id
}

type broadcastMsg struct {
	Room string
	Data []byte
}

// Hub fans changes out to clients grouped by session id. Only Run touches
// the room map.
type Hub struct {
	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcastMsg
	done       chan struct{}
	stopOnce   sync.Once
	logger     *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcastMsg, 64),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			if h.rooms[c.Room] == nil {
				h.rooms[c.Room] = make(map[*Client]bool)
			}
			h.rooms[c.Room][c] = true

		case c := <-h.unregister:
			if conns := h.rooms[c.Room]; conns[c] {
				delete(conns, c)
				close(c.Send)
				if len(conns) == 0 {
					delete(h.rooms, c.Room)
				}
			}

		case m := <-h.broadcast:
			for c := range h.rooms[m.Room] {
				select {
				case c.Send <- m.Data:
				default:
					// slow consumer; it reloads on reconnect anyway
					close(c.Send)
					delete(h.rooms[m.Room], c)
				}
			}

		case <-h.done:
			for _, conns := range h.rooms {
				for c := range conns {
					close(c.Send)
				}
			}
			h.rooms = nil
			return
		}
	}
}

// Stop ends Run and closes every client's Send channel.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		close(c.Send)
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Publish queues change for every client of sessionID.
func (h *Hub) Publish(sessionID string, change models.Change) {
	data, err := json.Marshal(change)
	if err != nil {
		h.logger.Error("marshal change", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- broadcastMsg{Room: sessionID, Data: data}:
	case <-h.done:
	}
}

var upgrader = websocket.Upgrader{}

// Handler upgrades the request and streams the caller's session changes.
func Handler(hub *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		room := globals.SessionID(r.Context())
		if room == "" {
			http.Error(w, "No session", http.StatusBadRequest)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			hub.logger.Warn("websocket upgrade", zap.Error(err))
			return
		}
		client := &Client{
			Conn: conn,
			Send: make(chan []byte, 16),
			Room: room,
		}

		hub.Register(client)
		go writePump(client)
		go readPump(client, hub)
	}
}

func writePump(c *Client) {
	defer c.Conn.Close()
	for msg := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
	_ = c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// readPump only watches for the peer going away; clients never send.
func readPump(c *Client, hub *Hub) {
	defer func() {
		hub.Unregister(c)
		c.Conn.Close()
	}()
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			return
		}
	}
}
