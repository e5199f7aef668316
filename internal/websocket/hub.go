package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"healthlink-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Hub is the process-wide connection registry: it maps a user identity to the
// single live connection allowed for that user and pushes serialized frames
// to it. Entries exist only in memory; they are created on connect, replaced
// on reconnect (last write wins) and removed on disconnect.
type Hub struct {
	// Registered clients map: UserID -> active Client (single connection)
	clients map[uuid.UUID]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance push fan-out
	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if prev, ok := h.clients[client.UserID]; ok && prev != client {
				// Reconnect: the newer connection silently replaces the old
				// one. Closing Send terminates the stale write pump.
				close(prev.Send)
				h.logger.Info("Hub", "Replacing existing connection", map[string]interface{}{"user_id": client.UserID})
			}
			h.clients[client.UserID] = client
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserID})

		case client := <-h.unregister:
			h.mu.Lock()
			if current, ok := h.clients[client.UserID]; ok && current == client {
				delete(h.clients, client.UserID)
				close(client.Send)
				h.logger.Info("Hub", "Client unregistered", map[string]interface{}{"user_id": client.UserID})
			}
			// A stale client (already replaced) unregistering is a no-op.
			h.mu.Unlock()
		}
	}
}

// IsConnected reports whether the user currently has a registered connection.
func (h *Hub) IsConnected(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

// Send pushes a payload to the user's live connection if one is registered on
// this instance and reports whether the local push happened. When the user is
// not connected here, the payload is published to Redis so a sibling instance
// holding the connection can deliver it.
func (h *Hub) Send(userID uuid.UUID, payload []byte) bool {
	// The read lock must cover the channel send itself: Run only closes a
	// client's Send channel while holding the write lock, so a push can never
	// overlap a close. The unregister handoff happens after the unlock because
	// Run needs the write lock to process it.
	h.mu.RLock()
	client, localFound := h.clients[userID]

	delivered := false
	var full *Client
	if localFound {
		select {
		case client.Send <- payload:
			delivered = true
		default:
			full = client
		}
	}
	h.mu.RUnlock()

	if full != nil {
		h.logger.Warn("Hub", "Client send buffer full, dropping connection", map[string]interface{}{"user_id": userID})
		h.unregister <- full
	}

	if !delivered && h.rdb != nil {
		wrapper := map[string]interface{}{
			"target_user_id": userID.String(),
			"message":        json.RawMessage(payload),
		}
		jsonPayload, _ := json.Marshal(wrapper)
		h.rdb.Publish(context.Background(), "cluster_events", jsonPayload)
	}

	return delivered
}

func (h *Hub) subscribeToRedis() {
	// Every instance subscribes to cluster_events; payloads carry the target
	// user id, and instances forward only to users they hold locally.
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, "cluster_events")
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		var payload struct {
			TargetUserID string          `json:"target_user_id"`
			Message      json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			h.logger.Warn("Hub", "Redis msg parse error", map[string]interface{}{"error": err.Error()})
			continue
		}

		uid, err := uuid.Parse(payload.TargetUserID)
		if err != nil {
			continue
		}

		// Same locking discipline as Send: keep the read lock over the
		// channel send so a racing close under the write lock is impossible.
		h.mu.RLock()
		client, ok := h.clients[uid]

		var full *Client
		if ok {
			select {
			case client.Send <- payload.Message:
			default:
				full = client
			}
		}
		h.mu.RUnlock()

		if full != nil {
			h.unregister <- full
		}
	}
}
