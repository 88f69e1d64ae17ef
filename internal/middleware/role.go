package middleware

import (
	"net/http"
	"strings"

	"maroctour/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// RequireRole ensures that the authenticated user has one of the given roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return requireRoleFunc(func(role string) bool { return allowed[role] })
}

// AdminOnly middleware requires admin role
func AdminOnly() gin.HandlerFunc {
	return RequireRole("admin")
}

// PartnerOnly accepts "partner" and every "partner_*" role.
func PartnerOnly() gin.HandlerFunc {
	return requireRoleFunc(func(role string) bool {
		return role == "partner" || strings.HasPrefix(role, "partner_")
	})
}

func requireRoleFunc(ok func(role string) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(CtxRole)
		if role == "" {
			response.CustomError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Role not found in token")
			c.Abort()
			return
		}

		if !ok(role) {
			response.CustomError(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
			c.Abort()
			return
		}

		c.Next()
	}
}
