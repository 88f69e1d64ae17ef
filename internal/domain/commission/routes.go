package commission

import "github.com/gin-gonic/gin"

// RegisterRoutes expects admin to be behind JWTAuth and AdminOnly.
func (h *Handler) RegisterRoutes(admin *gin.RouterGroup) {
	commissions := admin.Group("/commissions")
	{
		commissions.GET("", h.List)
		commissions.GET("/summary", h.Summary)
		commissions.GET("/export", h.Export)
		commissions.PATCH("/:payment_id/toggle", h.TogglePaid)
	}
}
