package notification

import (
	"net/http"

	"weddinghub/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WSHandler struct {
	hub        *Hub
	jwtService *jwt.Service
}

func NewWSHandler(hub *Hub, jwtService *jwt.Service) *WSHandler {
	return &WSHandler{hub: hub, jwtService: jwtService}
}

// HandleWebSocket subscribes an operator client to the event stream.
//
// Endpoint: GET /ws/events?token=JWT_TOKEN
// Auth goes through the query because websocket clients cannot set headers.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Token is required. Use ?token=YOUR_JWT_TOKEN",
		})
		return
	}

	claims, err := h.jwtService.ValidateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	h.hub.Register(claims.UserID, conn)
	defer h.hub.Unregister(claims.UserID)

	// Drain the connection so close frames are processed; clients only
	// listen on this stream.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
