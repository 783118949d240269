package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs registers the connection for sessionID and blocks until the peer
// goes away. first, if not nil, is queued before any broadcast.
func ServeWs(hub *Hub, c *websocket.Conn, sessionID string, first *Message) {
	client := &Client{Hub: hub, Conn: c, SessionID: sessionID, Send: make(chan []byte, sendBuffer)}
	if first != nil {
		if data, err := encode(*first); err == nil {
			client.Send <- data
		}
	}
	client.Hub.register <- client

	go client.writePump()
	client.readPump() // Run readPump in current goroutine (handler)
}
