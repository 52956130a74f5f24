package notifications

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const openPacket = `0{"sid":"eio-1","upgrades":[],"pingInterval":25000,"pingTimeout":20000,"maxPayload":1000000}`

// socketServer runs the socket.io side of one connection through script.
func socketServer(t *testing.T, script func(conn *websocket.Conn)) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/socket.io/" || r.URL.Query().Get("EIO") != "4" || r.URL.Query().Get("transport") != "websocket" {
			http.Error(w, "bad handshake", http.StatusBadRequest)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		script(conn)
	}))
}

func readText(conn *websocket.Conn) string {
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		return ""
	}
	return string(data)
}

func writeText(conn *websocket.Conn, packet string) {
	conn.WriteMessage(websocket.TextMessage, []byte(packet))
}

func TestSocketIOFeedForwardsNewOrders(t *testing.T) {
	got := make(chan []string, 1)
	srv := socketServer(t, func(conn *websocket.Conn) {
		var received []string
		writeText(conn, openPacket)
		received = append(received, readText(conn))
		writeText(conn, `40{"sid":"sio-1"}`)

		writeText(conn, "2")
		received = append(received, readText(conn))

		writeText(conn, `42["orderUpdated",{"orderId":"x"}]`)
		writeText(conn, `42/admin,["newOrder",{"orderId":"other-ns"}]`)
		writeText(conn, `42["newOrder",{"orderId":"o-1","orderNumber":17,"customerName":"Amani","totalAmount":505,"deliveryType":"Livraison"}]`)
		writeText(conn, `4213["newOrder",{"_id":"o-2","orderNumber":"18","customerName":"Bora","totalAmount":20}]`)
		got <- received
		readText(conn)
	})
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feed := &SocketIOFeed{URL: srv.URL}
	events, err := feed.Subscribe(ctx)
	require.NoError(t, err)

	for _, want := range []struct{ number, customer string }{{"17", "Amani"}, {"18", "Bora"}} {
		select {
		case ev := <-events:
			assert.Equal(t, want.number, ev.OrderNumber.String())
			assert.Equal(t, want.customer, ev.CustomerName)
		case <-time.After(2 * time.Second):
			t.Fatalf("expected order #%s", want.number)
		}
	}

	select {
	case received := <-got:
		assert.Equal(t, []string{"40", "3"}, received)
	case <-time.After(2 * time.Second):
		t.Fatal("server script did not finish")
	}

	cancel()
	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("expected the feed to close after cancel")
	}
}

func TestSocketIOFeedConnectsToNamespace(t *testing.T) {
	connect := make(chan string, 1)
	srv := socketServer(t, func(conn *websocket.Conn) {
		writeText(conn, openPacket)
		connect <- readText(conn)
		writeText(conn, `40/admin,{"sid":"sio-2"}`)
		writeText(conn, `42["newOrder",{"orderId":"default-ns"}]`)
		writeText(conn, `42/admin,["newOrder",{"orderId":"o-3","orderNumber":3}]`)
		readText(conn)
	})
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feed := &SocketIOFeed{URL: srv.URL, Namespace: "/admin"}
	events, err := feed.Subscribe(ctx)
	require.NoError(t, err)
	assert.Equal(t, "40/admin,", <-connect)

	select {
	case ev := <-events:
		assert.Equal(t, "o-3", ev.OrderID.String())
	case <-time.After(2 * time.Second):
		t.Fatal("expected the namespaced order")
	}
}

func TestSocketIOFeedClosesOnServerDisconnect(t *testing.T) {
	srv := socketServer(t, func(conn *websocket.Conn) {
		writeText(conn, openPacket)
		readText(conn)
		writeText(conn, "40")
		writeText(conn, "41")
		readText(conn)
	})
	defer srv.Close()

	events, err := (&SocketIOFeed{URL: srv.URL}).Subscribe(context.Background())
	require.NoError(t, err)

	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("expected the feed to close after a server disconnect")
	}
}

func TestSocketIOFeedConnectRefused(t *testing.T) {
	srv := socketServer(t, func(conn *websocket.Conn) {
		writeText(conn, openPacket)
		readText(conn)
		writeText(conn, `44{"message":"unauthorized"}`)
		readText(conn)
	})
	defer srv.Close()

	_, err := (&SocketIOFeed{URL: srv.URL}).Subscribe(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unauthorized")
}

func TestSocketIOFeedDialFailure(t *testing.T) {
	_, err := (&SocketIOFeed{URL: "http://127.0.0.1:1"}).Subscribe(context.Background())
	assert.Error(t, err)

	_, err = (&SocketIOFeed{URL: "ftp://example.com"}).Subscribe(context.Background())
	assert.Error(t, err)
}

func TestSocketIOEndpoint(t *testing.T) {
	endpoint, err := (&SocketIOFeed{URL: "https://orders.example.com"}).endpoint()
	require.NoError(t, err)
	assert.Equal(t, "wss://orders.example.com/socket.io/?EIO=4&transport=websocket", endpoint)
}

func TestParseEvent(t *testing.T) {
	name, args, ok := parseEvent(`7["newOrder",{"a":1},2]`, "/")
	require.True(t, ok)
	assert.Equal(t, "newOrder", name)
	assert.Len(t, args, 2)

	_, _, ok = parseEvent(`/admin,["newOrder",{}]`, "/")
	assert.False(t, ok)

	_, _, ok = parseEvent(`not json`, "/")
	assert.False(t, ok)
}
