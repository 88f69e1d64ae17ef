package profile

import (
	"errors"
	"net/http"

	"maroctour/internal/pkg/messages"
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

// GetMe returns the caller's profile.
// @Summary		Current profile
// @Tags		Profiles
// @Produce		json
// @Security	BearerAuth
// @Success		200	{object}	map[string]interface{}
// @Router		/profiles/me [get]
func (h *Handler) GetMe(c *gin.Context) {
	p, err := h.service.GetByID(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"profile": p})
}

// UpdateMe edits the caller's profile.
// @Summary		Update current profile
// @Tags		Profiles
// @Accept		json
// @Produce		json
// @Security	BearerAuth
// @Param		body	body	UpdateMeRequest	true	"payload"
// @Success		200	{object}	map[string]interface{}
// @Router		/profiles/me [put]
func (h *Handler) UpdateMe(c *gin.Context) {
	var req UpdateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "VALIDATION_ERROR", messages.ErrFormValidation)
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", messages.ProfileUpdateError, errs)
		return
	}

	p, err := h.service.UpdateMe(c.Request.Context(), c.GetString("user_id"), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"profile": p, "message": messages.ProfileUpdateSuccess})
}

// Destination tells the client which dashboard the caller belongs to.
// @Summary		Dashboard destination
// @Tags		Profiles
// @Produce		json
// @Security	BearerAuth
// @Success		200	{object}	Resolution
// @Router		/profiles/me/destination [get]
func (h *Handler) Destination(c *gin.Context) {
	res := h.service.ResolveForUser(c.Request.Context(), c.GetString("user_id"), c.GetString("email"))
	response.Success(c, http.StatusOK, res)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrProfileNotFound):
		response.CustomError(c, http.StatusNotFound, "PROFILE_NOT_FOUND", messages.ErrNotFound)
	default:
		_ = c.Error(err)
		response.CustomError(c, http.StatusInternalServerError, "INTERNAL_ERROR", messages.ErrDefault)
	}
}
