package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmstore/internal/models"
)

func wsURL(httpURL string) string {
	return "ws" + strings.TrimPrefix(httpURL, "http")
}

func TestHubStreamsSnapshotsAndAlerts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil)
	updates := make(chan Snapshot, 1)
	go hub.Run(ctx, updates)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Serve(w, r, Snapshot{Notifications: []models.Notification{}, UnreadCount: 0})
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv.URL), nil)
	require.NoError(t, err)
	defer conn.Close()

	var first Message
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, MessageSnapshot, first.Type)

	require.Eventually(t, hub.HasViewers, 2*time.Second, 10*time.Millisecond)

	updates <- Snapshot{Notifications: []models.Notification{{ID: "1", OrderNumber: "9"}}, UnreadCount: 1}
	var update Message
	require.NoError(t, conn.ReadJSON(&update))
	require.NotNil(t, update.Snapshot)
	assert.Equal(t, 1, update.Snapshot.UnreadCount)

	hub.Show("🛒 Nouvelle commande #9", "Amani - 10 FC", ShowOptions{Tag: "order-9"})
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var alert Message
	require.NoError(t, json.Unmarshal(raw, &alert))
	assert.Equal(t, MessageAlert, alert.Type)
	assert.Equal(t, "order-9", alert.Options.Tag)

	conn.Close()
	require.Eventually(t, func() bool { return !hub.HasViewers() }, 2*time.Second, 10*time.Millisecond)
}
