package notification

import (
	"log"
	"net/http"

	"maroctour/internal/pkg/jwt"
	"maroctour/internal/pkg/messages"
	"maroctour/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// WSHandler upgrades authenticated clients onto the hub.
type WSHandler struct {
	hub        *Hub
	jwtService *jwt.Service
}

func NewWSHandler(hub *Hub, jwtService *jwt.Service) *WSHandler {
	return &WSHandler{hub: hub, jwtService: jwtService}
}

// HandleWebSocket serves GET /ws/notifications?token=JWT. Browsers cannot
// set headers on a websocket handshake, so the token travels in the query.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.CustomError(c, http.StatusUnauthorized, "UNAUTHORIZED", messages.ErrUnauthorized)
		return
	}
	claims, err := h.jwtService.ValidateToken(token)
	if err != nil {
		response.CustomError(c, http.StatusUnauthorized, "INVALID_TOKEN", messages.ErrSessionExpired)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("level=warn msg=\"websocket upgrade failed\" user_id=%s err=%v", claims.UserID, err)
		return
	}
	log.Printf("level=info msg=\"websocket connected\" user_id=%s", claims.UserID)
	h.hub.ServeWS(conn, claims.UserID)
	log.Printf("level=info msg=\"websocket disconnected\" user_id=%s", claims.UserID)
}
