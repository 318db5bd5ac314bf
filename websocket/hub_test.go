package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialTestHub(t *testing.T, hub *Hub, handle string) *gws.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Register(&Client{Handle: handle, Conn: conn})
	}))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := gws.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool {
		return hub.Connected(handle)
	}, time.Second, 10*time.Millisecond, "client never registered")

	return conn
}

func TestHubSendToHandle(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	conn := dialTestHub(t, hub, "testape")

	require.NoError(t, hub.SendToHandle("testape", Event{
		Type:    "notification",
		Message: "new like",
	}))

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var event Event
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "notification", event.Type)
	assert.Equal(t, "new like", event.Message)
}

func TestHubSendToOfflineHandle(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	err := hub.SendToHandle("ghost", Event{Type: "notification"})
	assert.Error(t, err)
}

func TestHubUnregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	conn := dialTestHub(t, hub, "testape")
	_ = conn

	hub.mu.RLock()
	var client *Client
	for c := range hub.clients["testape"] {
		client = c
	}
	hub.mu.RUnlock()
	require.NotNil(t, client)

	hub.Unregister(client)

	require.Eventually(t, func() bool {
		return !hub.Connected("testape")
	}, time.Second, 10*time.Millisecond)
}
