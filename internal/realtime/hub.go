// Package realtime pushes notifications to connected browsers over websockets.
// Delivery is best effort: a slow client misses messages and the inbox
// endpoints stay the source of truth.
package realtime

import (
	"encoding/json"
	"errors"
	"sync"

	"doctor-appointment-server/internal/models"

	"github.com/rs/zerolog"
)

const (
	EventNotification  = "notification"
	EventNotifications = "notifications"

	sendBuffer = 64
)

var errBufferFull = errors.New("client buffer full")

// Event is the frame written to clients.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Client is one websocket connection of one user.
type Client struct {
	ID     string
	UserID string
	Send   chan []byte
}

func NewClient(id, userID string) *Client {
	return &Client{ID: id, UserID: userID, Send: make(chan []byte, sendBuffer)}
}

// queue writes event to a client that is not registered yet.
func (c *Client) queue(event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	select {
	case c.Send <- data:
		return nil
	default:
		return errBufferFull
	}
}

// Hub tracks connected clients per user. A user may hold several connections.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
	log     zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		log:     log.With().Str("component", "realtime").Logger(),
	}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[client.UserID] == nil {
		h.clients[client.UserID] = make(map[*Client]struct{})
	}
	h.clients[client.UserID][client] = struct{}{}
}

// Unregister removes the client and closes its Send channel. Calling it twice is safe.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.clients[client.UserID]
	if !ok {
		return
	}
	if _, ok := conns[client]; !ok {
		return
	}
	delete(conns, client)
	if len(conns) == 0 {
		delete(h.clients, client.UserID)
	}
	close(client.Send)
}

// SendTo queues event for every connection of userID and reports how many accepted it.
func (h *Hub) SendTo(userID string, event Event) int {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error().Err(err).Str("type", event.Type).Msg("failed to marshal event")
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for client := range h.clients[userID] {
		select {
		case client.Send <- data:
			delivered++
		default:
			h.log.Debug().Str("client_id", client.ID).Str("user_id", userID).Msg("client buffer full, dropping event")
		}
	}
	return delivered
}

// PublishNotification pushes a freshly stored notification to its recipient.
func (h *Hub) PublishNotification(userID string, n *models.Notification) {
	h.SendTo(userID, Event{Type: EventNotification, Data: n})
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, conns := range h.clients {
		total += len(conns)
	}
	return total
}

// UserCount is the number of distinct users with at least one open connection.
func (h *Hub) UserCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) UserConnections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
