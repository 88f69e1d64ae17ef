package notification

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	notifGroup := protected.Group("/notifications")
	{
		notifGroup.GET("", h.GetNotifications)
		notifGroup.PATCH("/read-all", h.MarkAllAsRead)
		notifGroup.PATCH("/:id/read", h.MarkAsRead)
	}
}

// RegisterRoutes mounts the websocket endpoint; authentication happens in
// the handler.
func (h *WSHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/ws/notifications", h.HandleWebSocket)
}
