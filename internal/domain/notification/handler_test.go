package notification

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_Routes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, _ := setupTestService(t)
	n, err := svc.Create(context.Background(), "user-1", TypePaymentFailed, "Échec du paiement", "ko", nil)
	require.NoError(t, err)

	r := gin.New()
	protected := r.Group("/api/v1")
	protected.Use(func(c *gin.Context) { c.Set("user_id", "user-1") })
	NewHandler(svc).RegisterRoutes(protected)

	do := func(method, path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
		return w
	}

	w := do(http.MethodGet, "/api/v1/notifications")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"unread_count":1`)

	w = do(http.MethodPatch, "/api/v1/notifications/missing/read")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(http.MethodPatch, "/api/v1/notifications/"+n.ID+"/read")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(http.MethodPatch, "/api/v1/notifications/read-all")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"updated":0`)
}
