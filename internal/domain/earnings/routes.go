package earnings

import "github.com/gin-gonic/gin"

// RegisterRoutes expects protected to be behind JWTAuth; partner guards
// the self-service routes.
func (h *Handler) RegisterRoutes(protected *gin.RouterGroup, partner gin.HandlerFunc) {
	mine := protected.Group("/earnings/me", partner)
	{
		mine.GET("", h.MyBalance)
		mine.GET("/entries", h.MyEntries)
	}
}

func (h *Handler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	admin.GET("/partners/:id/earnings", h.PartnerBalance)
	admin.GET("/partners/:id/earnings/entries", h.PartnerEntries)
	admin.POST("/partners/:id/payouts", h.Payout)
}
