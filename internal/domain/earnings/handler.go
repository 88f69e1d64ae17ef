package earnings

import (
	"errors"
	"net/http"

	"maroctour/internal/pkg/messages"
	"maroctour/internal/pkg/pagination"
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

// MyBalance godoc
// @Summary		Partner earnings balance
// @Tags		Earnings
// @Security	BearerAuth
// @Produce		json
// @Success		200	{object}	Balance
// @Router		/earnings/me [get]
func (h *Handler) MyBalance(c *gin.Context) {
	h.balance(c, c.GetString("user_id"))
}

// MyEntries godoc
// @Summary		Partner earnings ledger
// @Tags		Earnings
// @Security	BearerAuth
// @Produce		json
// @Param		page	query	int	false	"page"
// @Param		perPage	query	int	false	"page size"
// @Success		200	{array}	Entry
// @Router		/earnings/me/entries [get]
func (h *Handler) MyEntries(c *gin.Context) {
	h.entries(c, c.GetString("user_id"))
}

// PartnerBalance godoc
// @Summary		Earnings balance of a partner
// @Tags		Admin Partners
// @Security	BearerAuth
// @Param		id	path	string	true	"partner id"
// @Success		200	{object}	Balance
// @Router		/admin/partners/{id}/earnings [get]
func (h *Handler) PartnerBalance(c *gin.Context) {
	h.balance(c, c.Param("id"))
}

// PartnerEntries godoc
// @Summary		Earnings ledger of a partner
// @Tags		Admin Partners
// @Security	BearerAuth
// @Param		id	path	string	true	"partner id"
// @Success		200	{array}	Entry
// @Router		/admin/partners/{id}/earnings/entries [get]
func (h *Handler) PartnerEntries(c *gin.Context) {
	h.entries(c, c.Param("id"))
}

type PayoutRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note"`
}

// Payout godoc
// @Summary		Record a payout to a partner
// @Tags		Admin Partners
// @Security	BearerAuth
// @Accept		json
// @Produce		json
// @Param		id		path	string			true	"partner id"
// @Param		body	body	PayoutRequest	true	"payload"
// @Success		201	{object}	map[string]interface{}
// @Router		/admin/partners/{id}/payouts [post]
func (h *Handler) Payout(c *gin.Context) {
	var req PayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "VALIDATION_ERROR", messages.ErrRequiredFields)
		return
	}
	entry, balance, err := h.service.Payout(c.Request.Context(), c.Param("id"), req.Amount, c.GetString("user_id"), req.Note)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"entry": entry, "balance": balance, "message": messages.EarningsPayoutRecorded})
}

func (h *Handler) balance(c *gin.Context, partnerID string) {
	b, err := h.service.Balance(c.Request.Context(), partnerID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

func (h *Handler) entries(c *gin.Context, partnerID string) {
	page := pagination.Parse(c.Query("page"), c.Query("perPage"))
	items, total, err := h.service.Entries(c.Request.Context(), partnerID, page)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Paginated(c, http.StatusOK, items, page.Meta(total))
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrPartnerNotFound):
		response.CustomError(c, http.StatusNotFound, "NOT_FOUND", messages.ErrNotFound)
	case errors.Is(err, ErrInvalidAmount):
		response.CustomError(c, http.StatusBadRequest, "INVALID_AMOUNT", messages.ErrFormValidation)
	case errors.Is(err, ErrInsufficientPending):
		response.CustomError(c, http.StatusConflict, "INSUFFICIENT_PENDING", messages.EarningsInsufficientPending)
	default:
		_ = c.Error(err)
		response.CustomError(c, http.StatusInternalServerError, "INTERNAL_ERROR", messages.ErrDefault)
	}
}
