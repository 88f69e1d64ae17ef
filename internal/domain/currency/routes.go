package currency

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	g := v1.Group("/currency")
	{
		g.GET("/rates", h.GetRates)
		g.GET("/convert", h.Convert)
	}
}

// RegisterAdminRoutes expects admin to be behind JWTAuth and AdminOnly.
func (h *Handler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	admin.PUT("/currency/rates", h.UpdateRates)
}
