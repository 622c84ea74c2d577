package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skywatch/orbitrack/pkg/logger"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	s := NewServer(logger.NewNop())
	go s.Run()

	ts := httptest.NewServer(http.HandlerFunc(s.HandleConnection))
	t.Cleanup(ts.Close)
	return s, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func clientCount(s *Server) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func waitForClients(t *testing.T, s *Server, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if clientCount(s) == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("client count never reached %d (have %d)", want, clientCount(s))
}

func TestServerBroadcastDelivery(t *testing.T) {
	s, ts := newTestServer(t)

	conn := dial(t, ts)
	defer conn.Close()
	waitForClients(t, s, 1)

	s.Broadcast(&Message{
		Type: MessageTypeSceneUpdate,
		Data: map[string]any{"tick": float64(1)},
	})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, MessageTypeSceneUpdate, msg.Type)
	assert.Equal(t, float64(1), msg.Data["tick"])
}

func TestServerUnregistersDisconnectedClient(t *testing.T) {
	s, ts := newTestServer(t)

	conn := dial(t, ts)
	waitForClients(t, s, 1)

	// Client hangs up; the read pump must unregister it
	conn.Close()
	waitForClients(t, s, 0)

	// Broadcasting with no clients must not block or panic
	s.Broadcast(&Message{Type: MessageTypeSceneUpdate, Data: map[string]any{}})
}

func TestServerHandlesIncomingMessage(t *testing.T) {
	s, ts := newTestServer(t)

	s.SetMessageHandler(messageHandlerFunc(func(client *Client, messageType string, data map[string]any) error {
		if messageType == MessageTypeTrackBulkRequest {
			client.SendMessage(&Message{
				Type: MessageTypeTrackBulkResponse,
				Data: map[string]any{"count": float64(0)},
			})
		}
		return nil
	}))

	conn := dial(t, ts)
	defer conn.Close()
	waitForClients(t, s, 1)

	require.NoError(t, conn.WriteJSON(Message{Type: MessageTypeTrackBulkRequest}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, MessageTypeTrackBulkResponse, msg.Type)
	assert.Equal(t, float64(0), msg.Data["count"])
}

func TestClientSendMessageWhenClosed(t *testing.T) {
	c := &Client{send: make(chan *Message, 1), closed: true}
	assert.False(t, c.SendMessage(&Message{Type: MessageTypeSceneUpdate}))
}

func TestClientSendMessageBufferFull(t *testing.T) {
	c := &Client{send: make(chan *Message)} // no buffer, no reader
	assert.False(t, c.SendMessage(&Message{Type: MessageTypeSceneUpdate}))
}

// messageHandlerFunc adapts a function to the MessageHandler interface
type messageHandlerFunc func(client *Client, messageType string, data map[string]any) error

func (f messageHandlerFunc) HandleMessage(client *Client, messageType string, data map[string]any) error {
	return f(client, messageType, data)
}
