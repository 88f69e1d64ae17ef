package upload

import (
	"errors"
	"net/http"

	"maroctour/internal/domain/profile"
	"maroctour/internal/pkg/messages"
	"maroctour/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// UploadAvatar godoc
// @Summary		Upload profile avatar
// @Tags		Uploads
// @Security	BearerAuth
// @Accept		multipart/form-data
// @Produce		json
// @Param		file	formData	file	true	"image (jpeg, png, gif, webp), max 5 MB"
// @Success		201	{object}	Upload
// @Failure		400,413	{object}	map[string]interface{}
// @Router		/profiles/me/avatar [post]
func (h *Handler) UploadAvatar(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.CustomError(c, http.StatusBadRequest, "VALIDATION_ERROR", messages.ErrRequiredFields)
		return
	}
	u, err := h.service.UploadAvatar(c.Request.Context(), c.GetString("user_id"), fh)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, u)
}

// ListMy godoc
// @Summary		List my uploads
// @Tags		Uploads
// @Security	BearerAuth
// @Produce		json
// @Success		200	{array}	Upload
// @Router		/uploads [get]
func (h *Handler) ListMy(c *gin.Context) {
	items, err := h.service.ListByUser(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// Delete godoc
// @Summary		Delete an upload
// @Tags		Uploads
// @Security	BearerAuth
// @Param		id	path	string	true	"upload id"
// @Success		200	{object}	map[string]interface{}
// @Router		/uploads/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), c.GetString("user_id")); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": messages.AdminDeleteSuccess})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrEmptyFile), errors.Is(err, ErrInvalidMimeType):
		response.CustomError(c, http.StatusBadRequest, "INVALID_FILE", messages.UploadInvalidFile)
	case errors.Is(err, ErrFileTooLarge):
		response.CustomError(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", messages.UploadTooLarge)
	case errors.Is(err, ErrUploadNotFound), errors.Is(err, profile.ErrProfileNotFound):
		response.CustomError(c, http.StatusNotFound, "NOT_FOUND", messages.ErrNotFound)
	case errors.Is(err, ErrNotOwner):
		response.CustomError(c, http.StatusForbidden, "FORBIDDEN", messages.ErrForbidden)
	default:
		_ = c.Error(err)
		response.CustomError(c, http.StatusInternalServerError, "INTERNAL_ERROR", messages.ErrDefault)
	}
}
