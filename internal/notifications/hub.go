package notifications

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	viewerSendSize = 16
)

// Message is what admin viewers receive over the socket.
type Message struct {
	Type     string       `json:"type"`
	Snapshot *Snapshot    `json:"snapshot,omitempty"`
	Title    string       `json:"title,omitempty"`
	Body     string       `json:"body,omitempty"`
	Options  *ShowOptions `json:"options,omitempty"`
}

const (
	MessageSnapshot = "notifications"
	MessageAlert    = "alert"
)

type viewer struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub tracks the admin dashboards connected over websocket. A connected
// dashboard is what makes the channel raise alerts.
type Hub struct {
	upgrader   websocket.Upgrader
	viewers    map[*viewer]bool
	register   chan *viewer
	unregister chan *viewer
	broadcast  chan []byte
	stopped    chan struct{}
	count      atomic.Int64
}

func NewHub(checkOrigin func(r *http.Request) bool) *Hub {
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}
	return &Hub{
		upgrader:   websocket.Upgrader{CheckOrigin: checkOrigin},
		viewers:    make(map[*viewer]bool),
		register:   make(chan *viewer),
		unregister: make(chan *viewer),
		broadcast:  make(chan []byte, 32),
		stopped:    make(chan struct{}),
	}
}

// Run owns the viewer set until ctx ends. updates, when non-nil, is
// forwarded to every viewer.
func (h *Hub) Run(ctx context.Context, updates <-chan Snapshot) {
	for {
		select {
		case <-ctx.Done():
			close(h.stopped)
			for v := range h.viewers {
				close(v.send)
				delete(h.viewers, v)
			}
			h.count.Store(0)
			return

		case v := <-h.register:
			h.viewers[v] = true
			h.count.Store(int64(len(h.viewers)))
			log.Printf("[ADMIN WS] viewer connected (%d online)", len(h.viewers))

		case v := <-h.unregister:
			if h.viewers[v] {
				delete(h.viewers, v)
				close(v.send)
			}
			h.count.Store(int64(len(h.viewers)))
			log.Printf("[ADMIN WS] viewer disconnected (%d online)", len(h.viewers))

		case snap, ok := <-updates:
			if !ok {
				updates = nil
				continue
			}
			h.fanOut(encode(Message{Type: MessageSnapshot, Snapshot: &snap}))

		case data := <-h.broadcast:
			h.fanOut(data)
		}
	}
}

func (h *Hub) fanOut(data []byte) {
	if data == nil {
		return
	}
	for v := range h.viewers {
		select {
		case v.send <- data:
		default:
			close(v.send)
			delete(h.viewers, v)
		}
	}
	h.count.Store(int64(len(h.viewers)))
}

func (h *Hub) HasViewers() bool {
	return h.count.Load() > 0
}

func (h *Hub) RequestPermission(context.Context) bool { return true }

// Show pushes an alert to connected dashboards. It drops the alert when the
// hub is saturated.
func (h *Hub) Show(title, body string, opts ShowOptions) {
	data := encode(Message{Type: MessageAlert, Title: title, Body: body, Options: &opts})
	select {
	case h.broadcast <- data:
	default:
		log.Println("[ADMIN WS] [WARN] broadcast queue full, dropping alert:", title)
	}
}

// Serve upgrades the request and streams hub messages to it, starting with
// initial.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, initial Snapshot) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	v := &viewer{conn: conn, send: make(chan []byte, viewerSendSize)}
	v.send <- encode(Message{Type: MessageSnapshot, Snapshot: &initial})

	select {
	case h.register <- v:
	case <-h.stopped:
		conn.Close()
		return nil
	case <-r.Context().Done():
		conn.Close()
		return r.Context().Err()
	}

	go h.writePump(v)
	h.readPump(v)
	return nil
}

// readPump only watches for the dashboard going away.
func (h *Hub) readPump(v *viewer) {
	defer func() {
		select {
		case h.unregister <- v:
		case <-h.stopped:
		}
		v.conn.Close()
	}()

	v.conn.SetReadLimit(1024)
	v.conn.SetReadDeadline(time.Now().Add(pongWait))
	v.conn.SetPongHandler(func(string) error {
		return v.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := v.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(v *viewer) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		v.conn.Close()
	}()

	for {
		select {
		case data, ok := <-v.send:
			v.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				v.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := v.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			if err := v.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func encode(m Message) []byte {
	data, err := json.Marshal(m)
	if err != nil {
		log.Println("[ADMIN WS] [ERROR] encoding message failed:", err)
		return nil
	}
	return data
}
