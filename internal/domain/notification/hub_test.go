package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"maroctour/internal/database/dbtest"
	"maroctour/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebSocket_PushesNewNotifications(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub()
	svc := NewService(NewRepository(dbtest.Open(t, &Notification{})), nil, hub, nil)
	jwtService := jwt.New("test-secret", time.Hour)

	r := gin.New()
	NewWSHandler(hub, jwtService).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	defer srv.Close()

	token, err := jwtService.GenerateToken("user-1", "client", "u@example.ma")
	require.NoError(t, err)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/notifications?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Connected("user-1") == 1 }, time.Second, 10*time.Millisecond)

	_, err = svc.Create(context.Background(), "user-1", TypePaymentSucceeded, "Paiement confirmé", "ok", nil)
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var evt struct {
		Type    string       `json:"type"`
		Payload Notification `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(raw, &evt))
	assert.Equal(t, EventNotification, evt.Type)
	assert.Equal(t, "Paiement confirmé", evt.Payload.Title)

	assert.False(t, hub.SendToUser("user-2", &WSEvent{Type: EventNotification}))
}

func TestWebSocket_RequiresToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewWSHandler(NewHub(), jwt.New("test-secret", time.Hour)).RegisterRoutes(r)

	for _, path := range []string{"/ws/notifications", "/ws/notifications?token=garbage"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
}
