package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"storyspark-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	logModule    = "Hub"
	redisChannel = "storyspark:session_events"
)

// Message is the frame pushed to WebSocket clients.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

type clusterEnvelope struct {
	Origin    string          `json:"origin"`
	SessionID string          `json:"session_id"`
	Message   json.RawMessage `json:"message"`
}

type Hub struct {
	// Registered clients: SessionID -> connections (several tabs may watch one session)
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Redis connection for cross-instance delivery, nil when running alone
	rdb *redis.Client

	// instanceID tags what this process publishes so it can skip its own echoes
	instanceID string

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		instanceID: uuid.NewString(),
		logger:     log,
	}
}

// Run serves registrations until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.SessionID] = append(h.clients[client.SessionID], client)
			h.mu.Unlock()
			h.logger.Info(logModule, "Client registered", map[string]interface{}{"session_id": client.SessionID})

		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.clients[client.SessionID]
	for i, c := range clients {
		if c == client {
			h.clients[client.SessionID] = append(clients[:i], clients[i+1:]...)
			close(client.Send)
			break
		}
	}
	if len(h.clients[client.SessionID]) == 0 {
		delete(h.clients, client.SessionID)
		h.logger.Info(logModule, "Session has no more clients", map[string]interface{}{"session_id": client.SessionID})
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, clients := range h.clients {
		for _, c := range clients {
			close(c.Send)
		}
		delete(h.clients, id)
	}
}

// SendToSession delivers msg to every client watching the session, here and
// on other instances.
func (h *Hub) SendToSession(sessionID string, msg Message) {
	data, err := encode(msg)
	if err != nil {
		h.logger.Error(logModule, "Failed to encode message", map[string]interface{}{"error": err.Error()})
		return
	}

	h.deliver(sessionID, data)

	if h.rdb != nil {
		payload, _ := json.Marshal(clusterEnvelope{Origin: h.instanceID, SessionID: sessionID, Message: data})
		if err := h.rdb.Publish(context.Background(), redisChannel, payload).Err(); err != nil {
			h.logger.Warn(logModule, "Redis publish failed", map[string]interface{}{"error": err.Error()})
		}
	}
}

// ClientCount returns the number of local connections for a session.
func (h *Hub) ClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}

func (h *Hub) deliver(sessionID string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients[sessionID] {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn(logModule, "Client Send buffer full, dropping client", map[string]interface{}{"session_id": sessionID})
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, redisChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env clusterEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				h.logger.Warn(logModule, "Redis msg parse error", map[string]interface{}{"error": err.Error()})
				continue
			}
			if env.Origin == h.instanceID {
				continue
			}
			h.deliver(env.SessionID, env.Message)
		}
	}
}

func encode(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
