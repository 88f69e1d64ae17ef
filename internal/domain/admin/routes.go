package admin

import "github.com/gin-gonic/gin"

// RegisterRoutes expects admin to be behind JWTAuth and AdminOnly.
func (h *Handler) RegisterRoutes(admin *gin.RouterGroup) {
	users := admin.Group("/users")
	{
		users.GET("", h.ListUsers)
		users.PATCH("/:id/role", h.ChangeRole)
		users.PATCH("/:id/verify", h.ToggleUserVerification)
		users.DELETE("/:id", h.DeleteUser)
	}

	partners := admin.Group("/partners")
	{
		partners.GET("", h.ListPartners)
		partners.GET("/stats", h.PartnerStats)
		partners.POST("", h.CreatePartner)
		partners.PUT("/:id", h.UpdatePartner)
		partners.PATCH("/:id/verify", h.TogglePartnerVerification)
		partners.DELETE("/:id", h.DeletePartner)
	}
}
