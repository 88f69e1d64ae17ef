package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"maroctour/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func roleRouter(role string, guard gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if role != "" {
			c.Set(CtxRole, role)
		}
		c.Next()
	})
	r.GET("/x", guard, func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func doGet(r http.Handler) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	return w
}

func TestAdminOnly(t *testing.T) {
	assert.Equal(t, http.StatusOK, doGet(roleRouter("admin", AdminOnly())).Code)
	assert.Equal(t, http.StatusForbidden, doGet(roleRouter("partner_hotel", AdminOnly())).Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(roleRouter("", AdminOnly())).Code)
}

func TestPartnerOnly(t *testing.T) {
	for _, role := range []string{"partner", "partner_hotel", "partner_car", "partner_tour", "partner_new"} {
		assert.Equal(t, http.StatusOK, doGet(roleRouter(role, PartnerOnly())).Code, role)
	}
	assert.Equal(t, http.StatusForbidden, doGet(roleRouter("client", PartnerOnly())).Code)
	assert.Equal(t, http.StatusForbidden, doGet(roleRouter("partners", PartnerOnly())).Code)
}

func TestRequireRole_Multiple(t *testing.T) {
	guard := RequireRole("admin", "client")
	assert.Equal(t, http.StatusOK, doGet(roleRouter("client", guard)).Code)
	assert.Equal(t, http.StatusForbidden, doGet(roleRouter("partner", guard)).Code)
}

func TestRateLimit_PassThroughWithoutRedis(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: true, Capacity: 1}
	r := gin.New()
	r.Use(RateLimit(cfg, nil))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, doGet(r).Code)
	}
}

func TestBuildRateKey(t *testing.T) {
	r := gin.New()
	var key string
	r.GET("/api/v1/items/:id", func(c *gin.Context) {
		c.Set(CtxUserID, "u1")
		key = buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user"}, c)
		c.Status(http.StatusOK)
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/items/9", nil))
	assert.Equal(t, "rl:user:u1", key)
}
