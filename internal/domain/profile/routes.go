package profile

import "github.com/gin-gonic/gin"

// RegisterRoutes expects rg to be behind JWTAuth.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	profiles := rg.Group("/profiles")
	{
		profiles.GET("/me", h.GetMe)
		profiles.PUT("/me", h.UpdateMe)
		profiles.GET("/me/destination", h.Destination)
	}
}
