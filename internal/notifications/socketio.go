package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"farmstore/internal/models"
)

// Engine.IO v4 packet types, sent as the first byte of a text frame.
const (
	eioOpen    = '0'
	eioClose   = '1'
	eioPing    = '2'
	eioPong    = '3'
	eioMessage = '4'
)

// Socket.IO v5 packet types, following eioMessage.
const (
	sioConnect      = '0'
	sioDisconnect   = '1'
	sioEvent        = '2'
	sioConnectError = '4'
)

const (
	defaultSocketPath = "/socket.io/"
	handshakeTimeout  = 10 * time.Second
)

var ErrSocketClosed = errors.New("order socket closed by server")

// SocketIOFeed listens for "newOrder" events on the order service's socket.io
// server, over the websocket transport only.
type SocketIOFeed struct {
	// URL is the server origin, e.g. http://localhost:5500.
	URL string
	// Path defaults to /socket.io/.
	Path string
	// Namespace defaults to "/".
	Namespace string
	Header    http.Header
	Dialer    *websocket.Dialer
}

type engineOpen struct {
	SID          string `json:"sid"`
	PingInterval int    `json:"pingInterval"`
	PingTimeout  int    `json:"pingTimeout"`
}

func (f *SocketIOFeed) endpoint() (string, error) {
	u, err := url.Parse(strings.TrimSpace(f.URL))
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported socket url scheme %q", u.Scheme)
	}

	path := f.Path
	if path == "" {
		path = defaultSocketPath
	}
	u.Path = path
	q := u.Query()
	q.Set("EIO", "4")
	q.Set("transport", "websocket")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (f *SocketIOFeed) namespace() string {
	if f.Namespace == "" || f.Namespace == "/" {
		return "/"
	}
	return f.Namespace
}

// Subscribe performs the Engine.IO open and namespace connect handshakes,
// then forwards newOrder events until ctx ends or the server goes away.
func (f *SocketIOFeed) Subscribe(ctx context.Context) (<-chan models.OrderEvent, error) {
	endpoint, err := f.endpoint()
	if err != nil {
		return nil, err
	}
	dialer := f.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	conn, _, err := dialer.DialContext(ctx, endpoint, f.Header)
	if err != nil {
		return nil, err
	}

	open, err := f.handshake(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	log.Printf("[NOTIFY] [INFO] order socket connected (sid=%s)", open.SID)

	// The server pings every pingInterval; silence beyond that plus
	// pingTimeout means the connection is gone.
	idle := time.Duration(open.PingInterval+open.PingTimeout) * time.Millisecond
	if idle <= 0 {
		idle = 45 * time.Second
	}

	out := make(chan models.OrderEvent)
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		conn.Close()
	}()
	go func() {
		defer close(out)
		defer close(done)
		for {
			conn.SetReadDeadline(time.Now().Add(idle))
			_, data, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() == nil {
					log.Println("[NOTIFY] [WARN] order socket read failed:", err)
				}
				return
			}

			ev, ok, err := f.handlePacket(conn, string(data))
			if err != nil {
				if ctx.Err() == nil {
					log.Println("[NOTIFY] [WARN] order socket ended:", err)
				}
				return
			}
			if !ok {
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (f *SocketIOFeed) handshake(conn *websocket.Conn) (engineOpen, error) {
	var open engineOpen

	conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	defer conn.SetReadDeadline(time.Time{})

	_, data, err := conn.ReadMessage()
	if err != nil {
		return open, fmt.Errorf("reading engine.io open packet: %w", err)
	}
	if len(data) == 0 || data[0] != eioOpen {
		return open, fmt.Errorf("unexpected engine.io packet %q", data)
	}
	if err := json.Unmarshal(data[1:], &open); err != nil {
		return open, fmt.Errorf("malformed engine.io open packet: %w", err)
	}

	connect := string([]byte{eioMessage, sioConnect})
	if ns := f.namespace(); ns != "/" {
		connect += ns + ","
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte(connect)); err != nil {
		return open, err
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return open, fmt.Errorf("waiting for namespace connect: %w", err)
		}
		packet := string(data)
		switch {
		case packet == string(eioPing):
			if err := conn.WriteMessage(websocket.TextMessage, []byte{eioPong}); err != nil {
				return open, err
			}
		case len(packet) >= 2 && packet[0] == eioMessage && packet[1] == sioConnect:
			return open, nil
		case len(packet) >= 2 && packet[0] == eioMessage && packet[1] == sioConnectError:
			return open, fmt.Errorf("namespace connect refused: %s", strings.TrimPrefix(packet[2:], f.namespacePrefix()))
		default:
			return open, fmt.Errorf("unexpected packet during connect %q", packet)
		}
	}
}

func (f *SocketIOFeed) namespacePrefix() string {
	if ns := f.namespace(); ns != "/" {
		return ns + ","
	}
	return ""
}

// handlePacket answers pings and decodes newOrder events. A non-nil error
// means the server closed the session.
func (f *SocketIOFeed) handlePacket(conn *websocket.Conn, packet string) (models.OrderEvent, bool, error) {
	if packet == "" {
		return models.OrderEvent{}, false, nil
	}

	switch packet[0] {
	case eioPing:
		return models.OrderEvent{}, false, conn.WriteMessage(websocket.TextMessage, []byte{eioPong})
	case eioClose:
		return models.OrderEvent{}, false, ErrSocketClosed
	case eioMessage:
	default:
		return models.OrderEvent{}, false, nil
	}

	if len(packet) < 2 {
		return models.OrderEvent{}, false, nil
	}
	switch packet[1] {
	case sioDisconnect:
		return models.OrderEvent{}, false, ErrSocketClosed
	case sioEvent:
	default:
		return models.OrderEvent{}, false, nil
	}

	name, args, ok := parseEvent(packet[2:], f.namespace())
	if !ok || name != EventNewOrder || len(args) == 0 {
		return models.OrderEvent{}, false, nil
	}

	var ev models.OrderEvent
	if err := json.Unmarshal(args[0], &ev); err != nil {
		log.Println("[NOTIFY] [WARN] malformed newOrder payload:", err)
		return models.OrderEvent{}, false, nil
	}
	return ev, true, nil
}

// parseEvent decodes the body of an EVENT packet:
// [<namespace>,][<ack id>]["name",arg...]. Events for other namespaces are
// skipped.
func parseEvent(body, namespace string) (string, []json.RawMessage, bool) {
	ns := "/"
	if strings.HasPrefix(body, "/") {
		comma := strings.IndexByte(body, ',')
		if comma < 0 {
			return "", nil, false
		}
		ns, body = body[:comma], body[comma+1:]
	}
	if ns != namespace {
		return "", nil, false
	}

	body = strings.TrimLeft(body, "0123456789")

	var parts []json.RawMessage
	if err := json.Unmarshal([]byte(body), &parts); err != nil || len(parts) == 0 {
		return "", nil, false
	}
	var name string
	if err := json.Unmarshal(parts[0], &name); err != nil {
		return "", nil, false
	}
	return name, parts[1:], true
}
