package payment

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"maroctour/internal/pkg/messages"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRouter(t *testing.T) (*gin.Engine, *fakeProcessor) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc, proc, _ := setupTestService(t)
	r := gin.New()
	api := r.Group("/api")
	NewForwardHandler(proc, "MAD").RegisterRoutes(api)

	v1 := api.Group("/v1")
	NewHandler(svc).RegisterWebhookRoutes(v1)
	protected := v1.Group("")
	protected.Use(func(c *gin.Context) {
		c.Set("user_id", c.GetHeader("X-Test-User"))
		c.Set("role", c.GetHeader("X-Test-Role"))
		c.Next()
	})
	deny := func(role string) gin.HandlerFunc {
		return func(c *gin.Context) {
			if c.GetString("role") != role {
				c.AbortWithStatus(http.StatusForbidden)
			}
		}
	}
	NewHandler(svc).RegisterRoutes(protected, deny("admin"), deny("partner_hotel"))
	return r, proc
}

func doJSON(r *gin.Engine, method, path, user, role string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", user)
	req.Header.Set("X-Test-Role", role)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestForward_MethodNotAllowed(t *testing.T) {
	r, _ := setupTestRouter(t)

	for _, path := range []string{"/api/create-payment-intent", "/api/refund-payment"} {
		w := doJSON(r, http.MethodGet, path, "", "", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
		assert.JSONEq(t, `{"message":"Method not allowed"}`, w.Body.String())
	}
}

func TestForward_CreatePaymentIntent(t *testing.T) {
	r, proc := setupTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/create-payment-intent", "", "", map[string]any{"amount": 25000})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		ClientSecret string `json:"clientSecret"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "pi_1_secret", body.ClientSecret)
	assert.Equal(t, "MAD", proc.lastReq.Currency)
	assert.Equal(t, int64(25000), proc.lastReq.Amount)

	w = doJSON(r, http.MethodPost, "/api/create-payment-intent", "", "", map[string]any{"amount": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestForward_RefundPayment(t *testing.T) {
	r, proc := setupTestRouter(t)

	for _, amount := range []int64{-500, 0} {
		w := doJSON(r, http.MethodPost, "/api/refund-payment", "", "", map[string]any{"paymentIntentId": "pi_1", "amount": amount})
		assert.Equal(t, http.StatusBadRequest, w.Code, amount)
		assert.Contains(t, w.Body.String(), messages.PaymentMissingInfo)
	}
	assert.Empty(t, proc.refunds)

	w := doJSON(r, http.MethodPost, "/api/refund-payment", "", "", map[string]any{"paymentIntentId": "pi_1", "amount": 1500})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = doJSON(r, http.MethodPost, "/api/refund-payment", "", "", map[string]any{"paymentIntentId": "pi_1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []int64{1500, 0}, proc.refunds)
}

func TestHandler_CreateConfirmDecline(t *testing.T) {
	r, proc := setupTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/v1/payments/intents", "client-1", "client", map[string]any{
		"booking_id": "booking-7",
		"amount":     "450.00",
		"partner_id": "partner-1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Data struct {
			ClientSecret string `json:"client_secret"`
			Payment      struct {
				PaymentIntentID string `json:"payment_intent_id"`
			} `json:"payment"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	intentID := created.Data.Payment.PaymentIntentID
	require.NotEmpty(t, intentID)

	proc.confirmErr = &ProcessorError{Code: "card_declined", DeclineCode: "expired_card", Message: "Your card has expired."}
	w = doJSON(r, http.MethodPost, "/api/v1/payments/intents/"+intentID+"/confirm", "client-1", "client", map[string]any{
		"payment_method_id": "pm_x",
	})
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Contains(t, w.Body.String(), "PAYMENT_FAILED")
	assert.Contains(t, w.Body.String(), "expired_card")
	assert.Contains(t, w.Body.String(), "Votre carte a été refusée")

	w = doJSON(r, http.MethodGet, "/api/v1/payments/intents/"+intentID, "stranger", "client", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, http.MethodPost, "/api/v1/payments/intents/"+intentID+"/refund", "client-1", "client", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, http.MethodPost, "/api/v1/payments/intents/"+intentID+"/refund", "admin-1", "admin", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_REFUNDABLE")
}

func TestHandler_CreateValidation(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/v1/payments/intents", "client-1", "client", map[string]any{"amount": "10"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/api/v1/payments/intents", "client-1", "client", map[string]any{
		"booking_id": "b-1", "amount": "10", "currency": "JPY",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "UNSUPPORTED_CURRENCY")
}

func TestHandler_WebhookBadSignature(t *testing.T) {
	r, proc := setupTestRouter(t)
	proc.webhookErr = ErrInvalidSignature

	w := doJSON(r, http.MethodPost, "/api/v1/payments/stripe/webhook", "", "", map[string]any{"id": "evt"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_WebhookTooLarge(t *testing.T) {
	r, proc := setupTestRouter(t)
	proc.webhook = &WebhookEvent{ID: "evt_big", Type: "payment_intent.created"}

	body := bytes.Repeat([]byte("x"), maxWebhookBody+1)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/stripe/webhook", bytes.NewReader(body))
	req.Header.Set("Stripe-Signature", "t=1,v1=sig")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "PAYLOAD_TOO_LARGE")

	req = httptest.NewRequest(http.MethodPost, "/api/v1/payments/stripe/webhook", bytes.NewReader(body[:maxWebhookBody]))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
