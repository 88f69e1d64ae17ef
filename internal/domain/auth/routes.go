package auth

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/signup", h.SignUp)
		authGroup.POST("/signin", h.SignIn)
		authGroup.POST("/magic-link", h.MagicLink)
		authGroup.POST("/verify", h.Verify)
		authGroup.POST("/resend", h.Resend)
		authGroup.POST("/recover", h.Recover)
		authGroup.POST("/reset-password", h.ResetPassword)
		authGroup.POST("/refresh", h.Refresh)
		authGroup.POST("/signout", h.SignOut)
		authGroup.GET("/oauth/:provider", h.OAuthStart)
		authGroup.POST("/oauth/callback", h.OAuthCallback)
	}
}

// RegisterProtectedRoutes expects protected to be behind JWTAuth; admin
// guards the invite route.
func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup, admin gin.HandlerFunc) {
	authGroup := protected.Group("/auth")
	{
		authGroup.PUT("/password", h.UpdatePassword)
		authGroup.PUT("/email", h.UpdateEmail)
		authGroup.POST("/invite", admin, h.Invite)
	}
}
