package websocket

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/socialape/backend/middleware"
	"github.com/socialape/backend/repositories"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler upgrades authenticated HTTP requests to WebSocket connections
type Handler struct {
	hub      *Hub
	userRepo *repositories.UserRepository
}

// NewHandler creates a WebSocket handler backed by the given hub
func NewHandler(hub *Hub, db *mongo.Client) *Handler {
	return &Handler{
		hub:      hub,
		userRepo: repositories.NewUserRepository(db),
	}
}

// HandleConnection authenticates the token query parameter, resolves the
// user's handle and keeps the connection registered until it closes.
func (h *Handler) HandleConnection(c echo.Context) error {
	tokenString := c.QueryParam("token")
	if tokenString == "" {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Unauthorized"})
	}

	claims, err := middleware.ParseToken(tokenString)
	if err != nil {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Unauthorized"})
	}

	user, err := h.userRepo.FindByUserID(c.Request().Context(), claims.UserID)
	if err != nil {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Unauthorized"})
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return err
	}

	client := &Client{Handle: user.Handle, Conn: conn}
	h.hub.Register(client)

	go h.readPump(client)
	return nil
}

// readPump drains incoming frames so control messages are processed and
// unregisters the client when the connection drops.
func (h *Handler) readPump(client *Client) {
	defer h.hub.Unregister(client)
	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			return
		}
	}
}
