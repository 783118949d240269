package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"storyspark-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h := NewHub(nil, logger.NewNopLogger())
	go h.Run(ctx)
	return h
}

func attach(t *testing.T, h *Hub, sessionID string, buffer int) *Client {
	t.Helper()
	c := &Client{Hub: h, SessionID: sessionID, Send: make(chan []byte, buffer)}
	h.register <- c
	require.Eventually(t, func() bool {
		h.mu.RLock()
		defer h.mu.RUnlock()
		for _, registered := range h.clients[sessionID] {
			if registered == c {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)
	return c
}

func TestSendToSessionTargetsOnlyThatSession(t *testing.T) {
	h := startHub(t)
	a1 := attach(t, h, "a", 4)
	a2 := attach(t, h, "a", 4)
	b := attach(t, h, "b", 4)

	h.SendToSession("a", Message{Type: "status", Data: map[string]string{"phase": "IDLE"}})

	for _, c := range []*Client{a1, a2} {
		select {
		case raw := <-c.Send:
			var msg Message
			require.NoError(t, json.Unmarshal(raw, &msg))
			assert.Equal(t, "status", msg.Type)
		case <-time.After(time.Second):
			t.Fatal("message not delivered")
		}
	}
	assert.Empty(t, b.Send)
	assert.Equal(t, 2, h.ClientCount("a"))
}

func TestUnregisterClosesSendOnce(t *testing.T) {
	h := startHub(t)
	c := attach(t, h, "a", 1)

	h.unregister <- c
	h.unregister <- c

	require.Eventually(t, func() bool { return h.ClientCount("a") == 0 }, time.Second, 5*time.Millisecond)
	_, open := <-c.Send
	assert.False(t, open)
}

func TestSlowClientIsDropped(t *testing.T) {
	h := startHub(t)
	c := attach(t, h, "a", 1)

	h.SendToSession("a", Message{Type: "one"})
	h.SendToSession("a", Message{Type: "two"})

	require.Eventually(t, func() bool { return h.ClientCount("a") == 0 }, time.Second, 5*time.Millisecond)
	<-c.Send // the buffered first message
	_, open := <-c.Send
	assert.False(t, open)
}
