package payment

import (
	"errors"
	"io"
	"net/http"

	"maroctour/internal/pkg/messages"
	"maroctour/internal/pkg/pagination"
	"maroctour/internal/pkg/response"
	"maroctour/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

// maxWebhookBody caps processor notifications; larger bodies get 413.
const maxWebhookBody = 1 << 20

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CreateIntent starts a checkout for a booking.
// @Summary		Create payment intent
// @Tags		Payments
// @Accept		json
// @Produce		json
// @Security	BearerAuth
// @Param		Idempotency-Key	header	string				false	"idempotency key"
// @Param		body			body	CreateIntentRequest	true	"payload"
// @Success		201	{object}	CreateIntentResult
// @Router		/payments/intents [post]
func (h *Handler) CreateIntent(c *gin.Context) {
	var req CreateIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "VALIDATION_ERROR", messages.PaymentMissingInfo)
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", messages.PaymentMissingInfo, errs)
		return
	}

	result, err := h.service.CreateIntent(c.Request.Context(), callerFrom(c), req, c.GetHeader("Idempotency-Key"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, result)
}

// Confirm confirms an intent with a tokenized payment method.
// @Summary		Confirm payment
// @Tags		Payments
// @Accept		json
// @Produce		json
// @Security	BearerAuth
// @Param		id		path	string			true	"payment intent id"
// @Param		body	body	ConfirmRequest	true	"payload"
// @Success		200	{object}	Payment
// @Failure		402	{object}	map[string]interface{}
// @Router		/payments/intents/{id}/confirm [post]
func (h *Handler) Confirm(c *gin.Context) {
	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "VALIDATION_ERROR", messages.PaymentMissingInfo)
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", messages.PaymentMissingInfo, errs)
		return
	}

	p, err := h.service.Confirm(c.Request.Context(), callerFrom(c), c.Param("id"), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	body := gin.H{"payment": p}
	if p.Status == StatusSucceeded {
		body["message"] = messages.PaymentSuccess
	}
	response.Success(c, http.StatusOK, body)
}

// Refund refunds a succeeded payment (admin).
// @Summary		Refund payment
// @Tags		Payments
// @Accept		json
// @Produce		json
// @Security	BearerAuth
// @Param		id		path	string			true	"payment intent id"
// @Param		body	body	RefundRequest	false	"payload"
// @Success		200	{object}	map[string]interface{}
// @Router		/payments/intents/{id}/refund [post]
func (h *Handler) Refund(c *gin.Context) {
	var req RefundRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.CustomError(c, http.StatusBadRequest, "VALIDATION_ERROR", messages.ErrFormValidation)
			return
		}
	}

	p, refund, err := h.service.Refund(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	body := gin.H{"payment": p, "refund": refund}
	if p.Status == StatusRefunded {
		body["message"] = messages.PaymentRefunded
	}
	response.Success(c, http.StatusOK, body)
}

// Get returns one payment by intent id.
// @Summary		Get payment
// @Tags		Payments
// @Produce		json
// @Security	BearerAuth
// @Param		id	path	string	true	"payment intent id"
// @Success		200	{object}	Payment
// @Router		/payments/intents/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	p, err := h.service.Get(c.Request.Context(), callerFrom(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

// Sync mirrors the processor status of an intent.
// @Summary		Sync payment status
// @Tags		Payments
// @Produce		json
// @Security	BearerAuth
// @Param		id	path	string	true	"payment intent id"
// @Success		200	{object}	Payment
// @Router		/payments/intents/{id}/sync [post]
func (h *Handler) Sync(c *gin.Context) {
	p, err := h.service.SyncFromProcessor(c.Request.Context(), callerFrom(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

// ListMine lists the caller's payments.
// @Summary		My payments
// @Tags		Payments
// @Produce		json
// @Security	BearerAuth
// @Param		page	query	int	false	"page"
// @Param		perPage	query	int	false	"page size"
// @Success		200	{object}	map[string]interface{}
// @Router		/payments/me [get]
func (h *Handler) ListMine(c *gin.Context) {
	page := pagination.Parse(c.Query("page"), c.Query("perPage"))
	items, total, err := h.service.ListMine(c.Request.Context(), c.GetString("user_id"), page)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Paginated(c, http.StatusOK, items, page.Meta(total))
}

// ListForPartner lists payments for the calling partner's services.
// @Summary		Partner payments
// @Tags		Payments
// @Produce		json
// @Security	BearerAuth
// @Success		200	{object}	map[string]interface{}
// @Router		/payments/partner [get]
func (h *Handler) ListForPartner(c *gin.Context) {
	page := pagination.Parse(c.Query("page"), c.Query("perPage"))
	items, total, err := h.service.ListForPartner(c.Request.Context(), c.GetString("user_id"), page)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Paginated(c, http.StatusOK, items, page.Meta(total))
}

// Webhook receives processor notifications.
// @Summary		Stripe webhook
// @Tags		Payments
// @Accept		json
// @Success		200
// @Router		/payments/stripe/webhook [post]
func (h *Handler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.CustomError(c, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", messages.ErrDefault)
			return
		}
		response.CustomError(c, http.StatusServiceUnavailable, "READ_FAILED", messages.ErrDefault)
		return
	}

	if err := h.service.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var perr *ProcessorError
	switch {
	case errors.As(err, &perr):
		response.ErrorWithDetails(c, http.StatusPaymentRequired, "PAYMENT_FAILED", perr.UserMessage(), gin.H{
			"code":         perr.Code,
			"decline_code": perr.DeclineCode,
		})
	case errors.Is(err, ErrPaymentNotFound):
		response.CustomError(c, http.StatusNotFound, "PAYMENT_NOT_FOUND", messages.ErrNotFound)
	case errors.Is(err, ErrForbidden):
		response.CustomError(c, http.StatusForbidden, "FORBIDDEN", messages.ErrForbidden)
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrBookingRequired):
		response.CustomError(c, http.StatusBadRequest, "VALIDATION_ERROR", messages.PaymentMissingInfo)
	case errors.Is(err, ErrUnsupportedCurrency):
		response.CustomError(c, http.StatusBadRequest, "UNSUPPORTED_CURRENCY", messages.PaymentMissingInfo)
	case errors.Is(err, ErrNotRefundable):
		response.CustomError(c, http.StatusConflict, "NOT_REFUNDABLE", messages.PaymentError)
	case errors.Is(err, ErrInvalidSignature):
		response.CustomError(c, http.StatusBadRequest, "INVALID_SIGNATURE", "invalid signature")
	case errors.Is(err, ErrProcessorDisabled):
		response.CustomError(c, http.StatusServiceUnavailable, "PROCESSOR_DISABLED", messages.PaymentGenericFailure)
	default:
		_ = c.Error(err)
		response.CustomError(c, http.StatusInternalServerError, "INTERNAL_ERROR", messages.PaymentGenericFailure)
	}
}

func callerFrom(c *gin.Context) Caller {
	return Caller{UserID: c.GetString("user_id"), Email: c.GetString("email"), Role: c.GetString("role")}
}
