package upload

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc, _ := setupTestService(t)
	h := NewHandler(svc)

	r := gin.New()
	h.RegisterStatic(r)
	protected := r.Group("/api/v1")
	protected.Use(func(c *gin.Context) {
		c.Set("user_id", "user-1")
		c.Next()
	})
	h.RegisterRoutes(protected)
	return r
}

func postFile(r *gin.Engine, name string, content []byte) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, _ := w.CreateFormFile("file", name)
	_, _ = part.Write(content)
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/profiles/me/avatar", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandler_UploadAvatar(t *testing.T) {
	r := setupTestRouter(t)

	w := postFile(r, "avatar.png", pngHeader)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "/static/uploads/avatar/")

	w = postFile(r, "avatar.png", []byte("plain text"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_FILE")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/profiles/me/avatar", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_DeleteUnknown(t *testing.T) {
	r := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/uploads/missing", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
