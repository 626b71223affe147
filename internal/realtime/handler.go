package realtime

import (
	"context"
	"net/http"
	"strings"
	"time"

	"doctor-appointment-server/internal/models"
	"doctor-appointment-server/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// UnreadSource returns a user's unread notifications, newest first.
type UnreadSource interface {
	Unread(ctx context.Context, userID string) ([]models.Notification, error)
}

// Handler upgrades authenticated requests and attaches them to the hub.
type Handler struct {
	hub      *Hub
	inbox    UnreadSource
	secret   string
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// NewHandler builds the websocket endpoint. Browsers are only accepted from
// allowedOrigin; an empty value or "*" accepts any origin.
func NewHandler(hub *Hub, inbox UnreadSource, jwtSecret, allowedOrigin string, log zerolog.Logger) *Handler {
	return &Handler{
		hub:    hub,
		inbox:  inbox,
		secret: jwtSecret,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowedOrigin == "" || allowedOrigin == "*" || origin == allowedOrigin
			},
		},
		log: log.With().Str("component", "realtime").Logger(),
	}
}

// Connect authenticates with the token query parameter (browsers cannot set
// headers on a websocket handshake) or a bearer header, then streams events.
func (h *Handler) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	}
	if token == "" {
		utils.Unauthorized(c, "Token required")
		return
	}
	claims, err := utils.ValidateToken(token, h.secret)
	if err != nil {
		utils.Unauthorized(c, "Invalid token")
		return
	}

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already answered the request.
		h.log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	// Register before reading the snapshot: a notification stored in between
	// is then pushed live and may also appear in the snapshot, but is never lost.
	client := NewClient(uuid.NewString(), claims.UserID)
	h.hub.Register(client)
	h.log.Debug().Str("client_id", client.ID).Str("user_id", client.UserID).Msg("websocket connected")

	unread, err := h.inbox.Unread(c.Request.Context(), claims.UserID)
	if err != nil {
		h.log.Warn().Err(err).Str("user_id", claims.UserID).Msg("could not load unread notifications")
	}
	if unread == nil {
		unread = []models.Notification{}
	}
	if err := client.queue(Event{Type: EventNotifications, Data: unread}); err != nil {
		h.log.Warn().Err(err).Str("user_id", claims.UserID).Msg("could not queue unread snapshot")
	}

	go h.writePump(client, ws)
	go h.readPump(client, ws)
}

// ConnectionStats is the admin view of the push channel.
type ConnectionStats struct {
	Connections int `json:"connections"`
	Users       int `json:"users"`
}

// Status reports how many sockets are open. Mounted behind the admin role.
func (h *Handler) Status(c *gin.Context) {
	utils.Success(c, "Realtime status fetched successfully", ConnectionStats{
		Connections: h.hub.ClientCount(),
		Users:       h.hub.UserCount(),
	})
}

// readPump only watches for the close frame and pongs; clients send nothing else.
func (h *Handler) readPump(client *Client, ws *websocket.Conn) {
	defer func() {
		h.hub.Unregister(client)
		ws.Close()
	}()

	ws.SetReadLimit(512)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Handler) writePump(client *Client, ws *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ws.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send:
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := ws.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
