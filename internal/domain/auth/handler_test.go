package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRouter(t *testing.T) (*gin.Engine, *testEnv) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := setupTestService(t, false)
	h := NewHandler(env.svc, CookieConfig{SameSite: "Lax", Path: "/api/v1/auth", MaxAge: 24 * time.Hour})

	r := gin.New()
	v1 := r.Group("/api/v1")
	h.RegisterPublicRoutes(v1)
	return r, env
}

func postJSON(r *gin.Engine, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func refreshCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, ck := range w.Result().Cookies() {
		if ck.Name == refreshCookieName {
			return ck
		}
	}
	return nil
}

func TestHandler_SignUpSignInRefresh(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := postJSON(r, "/api/v1/auth/signup", map[string]any{"email": "h@example.ma", "password": strongPassword})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = postJSON(r, "/api/v1/auth/signin", map[string]any{"email": "h@example.ma", "password": strongPassword})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "refresh_token\":")

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Session struct {
				AccessToken  string `json:"access_token"`
				RedirectPath string `json:"redirect_path"`
			} `json:"session"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.NotEmpty(t, body.Data.Session.AccessToken)
	assert.Equal(t, "/", body.Data.Session.RedirectPath)

	ck := refreshCookie(w)
	require.NotNil(t, ck)
	assert.True(t, ck.HttpOnly)

	w = postJSON(r, "/api/v1/auth/refresh", nil, ck)
	assert.Equal(t, http.StatusOK, w.Code)

	// replaying the rotated cookie is reuse
	w = postJSON(r, "/api/v1/auth/refresh", nil, ck)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "REFRESH_TOKEN_REUSED")
}

func TestHandler_ErrorMapping(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := postJSON(r, "/api/v1/auth/signup", map[string]any{"email": "w@example.ma", "password": "weak"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "WEAK_PASSWORD")

	w = postJSON(r, "/api/v1/auth/signin", map[string]any{"email": "none@example.ma", "password": strongPassword})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_CREDENTIALS")

	w = postJSON(r, "/api/v1/auth/verify", map[string]any{"token": "nope", "type": "signup"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TOKEN")

	w = postJSON(r, "/api/v1/auth/refresh", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_MagicLinkIsMasked(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := postJSON(r, "/api/v1/auth/magic-link", map[string]any{"email": "unknown@example.ma"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "accepted")
}

func TestHandler_SignOutClearsCookie(t *testing.T) {
	r, _ := setupTestRouter(t)
	w := postJSON(r, "/api/v1/auth/signup", map[string]any{"email": "out@example.ma", "password": strongPassword})
	require.Equal(t, http.StatusCreated, w.Code)
	ck := refreshCookie(w)
	require.NotNil(t, ck)

	w = postJSON(r, "/api/v1/auth/signout", nil, ck)
	assert.Equal(t, http.StatusNoContent, w.Code)
	cleared := refreshCookie(w)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
}
