package upload

import "github.com/gin-gonic/gin"

// RegisterRoutes expects protected to be behind JWTAuth.
func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	protected.POST("/profiles/me/avatar", h.UploadAvatar)

	uploads := protected.Group("/uploads")
	{
		uploads.GET("", h.ListMy)
		uploads.DELETE("/:id", h.Delete)
	}
}

// RegisterStatic serves stored files.
func (h *Handler) RegisterStatic(r gin.IRoutes) {
	r.Static(h.service.StaticBase(), h.service.BaseDir())
}
