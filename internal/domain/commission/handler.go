package commission

import (
	"bytes"
	"errors"
	"net/http"

	"maroctour/internal/pkg/messages"
	"maroctour/internal/pkg/pagination"
	"maroctour/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func filterFrom(c *gin.Context) (Filter, error) {
	return ParseFilter(c.Query("date_from"), c.Query("date_to"), c.Query("status"), c.Query("service_type"))
}

// List godoc
// @Summary		Commission report
// @Tags		Admin Commissions
// @Produce		json
// @Security	BearerAuth
// @Param		date_from		query	string	false	"YYYY-MM-DD"
// @Param		date_to			query	string	false	"YYYY-MM-DD"
// @Param		status			query	string	false	"all | paid | unpaid"
// @Param		service_type	query	string	false	"all | hotel | car | tourism"
// @Param		page			query	int		false	"page"
// @Param		perPage			query	int		false	"page size"
// @Success		200	{object}	map[string]interface{}
// @Router		/admin/commissions [get]
func (h *Handler) List(c *gin.Context) {
	f, err := filterFrom(c)
	if err != nil {
		h.writeError(c, err)
		return
	}
	page := pagination.Parse(c.Query("page"), c.Query("perPage"))
	f.Offset, f.Limit = page.Offset(), page.Limit()

	rows, total, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Paginated(c, http.StatusOK, rows, page.Meta(total))
}

// Summary godoc
// @Summary		Commission totals
// @Tags		Admin Commissions
// @Produce		json
// @Security	BearerAuth
// @Success		200	{object}	Summary
// @Router		/admin/commissions/summary [get]
func (h *Handler) Summary(c *gin.Context) {
	f, err := filterFrom(c)
	if err != nil {
		h.writeError(c, err)
		return
	}
	sum, err := h.service.Summary(c.Request.Context(), f)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, sum)
}

// TogglePaid godoc
// @Summary		Toggle commission paid
// @Tags		Admin Commissions
// @Produce		json
// @Security	BearerAuth
// @Param		payment_id	path	string	true	"payment id"
// @Success		200	{object}	map[string]interface{}
// @Router		/admin/commissions/{payment_id}/toggle [patch]
func (h *Handler) TogglePaid(c *gin.Context) {
	p, err := h.service.TogglePaid(c.Request.Context(), c.Param("payment_id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	msg := messages.CommissionMarkedPending
	if p.IsCommissionPaid {
		msg = messages.CommissionMarkedPaid
	}
	response.Success(c, http.StatusOK, gin.H{
		"payment_id":         p.ID,
		"is_commission_paid": p.IsCommissionPaid,
		"commission_paid_at": p.CommissionPaidAt,
		"message":            msg,
	})
}

// Export godoc
// @Summary		Export commissions as CSV
// @Tags		Admin Commissions
// @Produce		text/csv
// @Security	BearerAuth
// @Success		200	{file}	file
// @Router		/admin/commissions/export [get]
func (h *Handler) Export(c *gin.Context) {
	f, err := filterFrom(c)
	if err != nil {
		h.writeError(c, err)
		return
	}
	var buf bytes.Buffer
	name, err := h.service.ExportCSV(c.Request.Context(), f, &buf)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidFilter):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", messages.ErrFormValidation, err.Error())
	case errors.Is(err, ErrPaymentNotFound):
		response.CustomError(c, http.StatusNotFound, "PAYMENT_NOT_FOUND", messages.ErrNotFound)
	case errors.Is(err, ErrNotEligible):
		response.CustomError(c, http.StatusConflict, "NOT_ELIGIBLE", messages.CommissionNotEligible)
	default:
		_ = c.Error(err)
		response.CustomError(c, http.StatusInternalServerError, "INTERNAL_ERROR", messages.ErrDefault)
	}
}
