package payment

import (
	"errors"
	"net/http"
	"strings"

	"maroctour/internal/pkg/messages"

	"github.com/gin-gonic/gin"
)

// ForwardHandler exposes the bare processor calls the checkout page uses.
// Nothing is recorded here; responses are the processor objects without the
// usual envelope.
type ForwardHandler struct {
	processor       Processor
	defaultCurrency string
}

func NewForwardHandler(processor Processor, defaultCurrency string) *ForwardHandler {
	return &ForwardHandler{processor: processor, defaultCurrency: defaultCurrency}
}

type forwardIntentRequest struct {
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Customer    string            `json:"customer"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata"`
}

// Amount is in minor units; omitted refunds the whole charge.
type forwardRefundRequest struct {
	PaymentIntentID string `json:"paymentIntentId"`
	Amount          *int64 `json:"amount"`
}

// CreatePaymentIntent expects the amount in minor units.
func (h *ForwardHandler) CreatePaymentIntent(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"message": messages.PaymentMethodNotAllow})
		return
	}
	var req forwardIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": messages.PaymentMissingInfo})
		return
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = h.defaultCurrency
	}

	intent, err := h.processor.CreateIntent(c.Request.Context(), IntentRequest{
		Amount:         req.Amount,
		Currency:       currency,
		CustomerID:     req.Customer,
		Description:    req.Description,
		Metadata:       req.Metadata,
		IdempotencyKey: c.GetHeader("Idempotency-Key"),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": forwardMessage(err, "Error creating payment intent")})
		return
	}
	c.JSON(http.StatusOK, gin.H{"clientSecret": intent.ClientSecret, "paymentIntent": intent})
}

func (h *ForwardHandler) RefundPayment(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"message": messages.PaymentMethodNotAllow})
		return
	}
	var req forwardRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.PaymentIntentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": messages.PaymentMissingInfo})
		return
	}
	var amount int64
	if req.Amount != nil {
		if *req.Amount <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": messages.PaymentMissingInfo})
			return
		}
		amount = *req.Amount
	}

	refund, err := h.processor.Refund(c.Request.Context(), req.PaymentIntentID, amount)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": forwardMessage(err, "Error processing refund")})
		return
	}
	c.JSON(http.StatusOK, refund)
}

func forwardMessage(err error, fallback string) string {
	var perr *ProcessorError
	if errors.As(err, &perr) && perr.Message != "" {
		return perr.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
