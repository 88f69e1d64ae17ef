package admin

import (
	"errors"
	"net/http"

	"maroctour/internal/domain/auth"
	"maroctour/internal/domain/profile"
	"maroctour/internal/pkg/messages"
	"maroctour/internal/pkg/pagination"
	"maroctour/internal/pkg/response"
	"maroctour/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ListUsers godoc
// @Summary		List users
// @Tags		Admin Users
// @Security	BearerAuth
// @Produce		json
// @Param		search	query	string	false	"email, name, company or phone"
// @Param		role	query	string	false	"role filter"
// @Param		page	query	int		false	"page"
// @Param		perPage	query	int		false	"page size"
// @Success		200	{object}	map[string]interface{}
// @Router		/admin/users [get]
func (h *Handler) ListUsers(c *gin.Context) {
	page := pagination.Parse(c.Query("page"), c.Query("perPage"))
	users, total, err := h.service.ListUsers(c.Request.Context(), UserFilter{
		Search: c.Query("search"),
		Role:   c.Query("role"),
	}, page)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Paginated(c, http.StatusOK, users, page.Meta(total))
}

type ChangeRoleRequest struct {
	Role profile.Role `json:"role" binding:"required"`
}

// ChangeRole godoc
// @Summary		Change user role
// @Tags		Admin Users
// @Security	BearerAuth
// @Accept		json
// @Produce		json
// @Param		id		path	string				true	"user id"
// @Param		body	body	ChangeRoleRequest	true	"payload"
// @Success		200	{object}	profile.Profile
// @Router		/admin/users/{id}/role [patch]
func (h *Handler) ChangeRole(c *gin.Context) {
	var req ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "VALIDATION_ERROR", messages.ErrRequiredFields)
		return
	}
	p, err := h.service.ChangeRole(c.Request.Context(), c.Param("id"), req.Role)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"profile": p, "message": messages.AdminSaveSuccess})
}

// ToggleUserVerification godoc
// @Summary		Toggle user verification
// @Tags		Admin Users
// @Security	BearerAuth
// @Param		id	path	string	true	"user id"
// @Success		200	{object}	profile.Profile
// @Router		/admin/users/{id}/verify [patch]
func (h *Handler) ToggleUserVerification(c *gin.Context) {
	p, err := h.service.ToggleVerification(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"profile": p, "message": messages.AdminSaveSuccess})
}

// DeleteUser godoc
// @Summary		Delete user
// @Tags		Admin Users
// @Security	BearerAuth
// @Param		id	path	string	true	"user id"
// @Success		200	{object}	map[string]interface{}
// @Router		/admin/users/{id} [delete]
func (h *Handler) DeleteUser(c *gin.Context) {
	if err := h.service.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": messages.AdminDeleteSuccess})
}

func partnerFilter(c *gin.Context) PartnerFilter {
	return PartnerFilter{Search: c.Query("search"), Status: c.Query("status"), Role: c.Query("role")}
}

// ListPartners godoc
// @Summary		List partners
// @Tags		Admin Partners
// @Security	BearerAuth
// @Produce		json
// @Param		search	query	string	false	"company, phone or city"
// @Param		status	query	string	false	"all | active | inactive | pending"
// @Param		role	query	string	false	"all | partner_hotel | partner_car | partner_tour"
// @Success		200	{object}	map[string]interface{}
// @Router		/admin/partners [get]
func (h *Handler) ListPartners(c *gin.Context) {
	page := pagination.Parse(c.Query("page"), c.Query("perPage"))
	partners, total, err := h.service.ListPartners(c.Request.Context(), partnerFilter(c), page)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Paginated(c, http.StatusOK, partners, page.Meta(total))
}

// PartnerStats godoc
// @Summary		Partner counters
// @Tags		Admin Partners
// @Security	BearerAuth
// @Produce		json
// @Success		200	{object}	PartnerStats
// @Router		/admin/partners/stats [get]
func (h *Handler) PartnerStats(c *gin.Context) {
	stats, err := h.service.PartnerStats(c.Request.Context(), partnerFilter(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

// CreatePartner godoc
// @Summary		Create partner
// @Tags		Admin Partners
// @Security	BearerAuth
// @Accept		json
// @Produce		json
// @Param		body	body	auth.InviteInput	true	"payload"
// @Success		201	{object}	profile.Profile
// @Router		/admin/partners [post]
func (h *Handler) CreatePartner(c *gin.Context) {
	var req auth.InviteInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "VALIDATION_ERROR", messages.ErrRequiredFields)
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", messages.ErrFormValidation, errs)
		return
	}
	p, err := h.service.CreatePartner(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"profile": p, "message": messages.AdminSaveSuccess})
}

// UpdatePartner godoc
// @Summary		Update partner
// @Tags		Admin Partners
// @Security	BearerAuth
// @Accept		json
// @Produce		json
// @Param		id		path	string					true	"partner id"
// @Param		body	body	UpdatePartnerRequest	true	"payload"
// @Success		200	{object}	profile.Profile
// @Router		/admin/partners/{id} [put]
func (h *Handler) UpdatePartner(c *gin.Context) {
	var req UpdatePartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "VALIDATION_ERROR", messages.AdminSaveError)
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", messages.AdminSaveError, errs)
		return
	}
	p, err := h.service.UpdatePartner(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"profile": p, "message": messages.AdminSaveSuccess})
}

// TogglePartnerVerification godoc
// @Summary		Toggle partner verification
// @Tags		Admin Partners
// @Security	BearerAuth
// @Param		id	path	string	true	"partner id"
// @Success		200	{object}	profile.Profile
// @Router		/admin/partners/{id}/verify [patch]
func (h *Handler) TogglePartnerVerification(c *gin.Context) {
	p, err := h.service.TogglePartnerVerification(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"profile": p, "message": messages.AdminSaveSuccess})
}

// DeletePartner godoc
// @Summary		Delete partner
// @Tags		Admin Partners
// @Security	BearerAuth
// @Param		id	path	string	true	"partner id"
// @Success		200	{object}	map[string]interface{}
// @Router		/admin/partners/{id} [delete]
func (h *Handler) DeletePartner(c *gin.Context) {
	if err := h.service.DeletePartner(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": messages.AdminDeleteSuccess})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, profile.ErrProfileNotFound), errors.Is(err, auth.ErrUserNotFound):
		response.CustomError(c, http.StatusNotFound, "NOT_FOUND", messages.ErrNotFound)
	case errors.Is(err, ErrInvalidRole), errors.Is(err, auth.ErrInvalidRole):
		response.CustomError(c, http.StatusBadRequest, "INVALID_ROLE", messages.ErrFormValidation)
	case errors.Is(err, ErrInvalidStatus):
		response.CustomError(c, http.StatusBadRequest, "INVALID_STATUS", messages.ErrFormValidation)
	case errors.Is(err, ErrNotPartner):
		response.CustomError(c, http.StatusBadRequest, "NOT_A_PARTNER", messages.ErrFormValidation)
	case errors.Is(err, ErrSystemAccount):
		response.CustomError(c, http.StatusForbidden, "SYSTEM_ACCOUNT", messages.ErrForbidden)
	case errors.Is(err, auth.ErrEmailAlreadyExists):
		response.CustomError(c, http.StatusConflict, "EMAIL_EXISTS", messages.AuthEmailExists)
	case errors.Is(err, auth.ErrWeakPassword):
		response.CustomError(c, http.StatusBadRequest, "WEAK_PASSWORD", messages.AuthWeakPassword)
	case errors.Is(err, auth.ErrInvalidEmail):
		response.CustomError(c, http.StatusBadRequest, "INVALID_EMAIL", messages.ErrInvalidEmail)
	default:
		_ = c.Error(err)
		response.CustomError(c, http.StatusInternalServerError, "INTERNAL_ERROR", messages.ErrDefault)
	}
}
