package currency

import (
	"errors"
	"net/http"

	"maroctour/internal/pkg/messages"
	"maroctour/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetRates godoc
// @Summary		Exchange rates
// @Tags		Currency
// @Produce		json
// @Success		200	{object}	Rates
// @Router		/currency/rates [get]
func (h *Handler) GetRates(c *gin.Context) {
	rates, err := h.service.Rates(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, rates)
}

type ConvertResponse struct {
	Amount    decimal.Decimal `json:"amount"`
	From      string          `json:"from"`
	To        string          `json:"to"`
	Result    decimal.Decimal `json:"result"`
	Formatted string          `json:"formatted"`
}

// Convert godoc
// @Summary		Convert an amount
// @Tags		Currency
// @Produce		json
// @Param		amount	query	string	true	"amount"
// @Param		from	query	string	true	"MAD | EUR"
// @Param		to		query	string	true	"MAD | EUR"
// @Success		200	{object}	ConvertResponse
// @Router		/currency/convert [get]
func (h *Handler) Convert(c *gin.Context) {
	amount, err := decimal.NewFromString(c.Query("amount"))
	if err != nil {
		response.CustomError(c, http.StatusBadRequest, "VALIDATION_ERROR", messages.ErrFormValidation)
		return
	}
	from, to := normalize(c.Query("from")), normalize(c.Query("to"))

	result, err := h.service.Convert(c.Request.Context(), amount, from, to)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, ConvertResponse{
		Amount:    amount,
		From:      from,
		To:        to,
		Result:    result,
		Formatted: Format(result, to),
	})
}

type UpdateRatesRequest struct {
	EURRate decimal.Decimal `json:"eur_rate"`
}

// UpdateRates godoc
// @Summary		Update exchange rates
// @Tags		Admin Currency
// @Accept		json
// @Produce		json
// @Security	BearerAuth
// @Param		body	body	UpdateRatesRequest	true	"payload"
// @Success		200	{object}	Rates
// @Router		/admin/currency/rates [put]
func (h *Handler) UpdateRates(c *gin.Context) {
	var req UpdateRatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "VALIDATION_ERROR", messages.ErrFormValidation)
		return
	}
	rates, err := h.service.UpdateRates(c.Request.Context(), req.EURRate, c.GetString("user_id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"rates": rates, "message": messages.CurrencyRatesUpdated})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrUnsupportedCurrency):
		response.CustomError(c, http.StatusBadRequest, "UNSUPPORTED_CURRENCY", messages.CurrencyUnsupported)
	case errors.Is(err, ErrInvalidRate):
		response.CustomError(c, http.StatusBadRequest, "INVALID_RATE", messages.ErrFormValidation)
	default:
		_ = c.Error(err)
		response.CustomError(c, http.StatusInternalServerError, "INTERNAL_ERROR", messages.ErrDefault)
	}
}
