package notification

import (
	"errors"
	"net/http"
	"strconv"

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

type ListResponse struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int64          `json:"unread_count"`
}

// GetNotifications lists the caller's latest notifications.
// @Summary		List notifications
// @Tags		Notifications
// @Security	BearerAuth
// @Param		limit	query	int	false	"max items (default 20, max 100)"
// @Success		200	{object}	ListResponse
// @Router		/notifications [get]
func (h *Handler) GetNotifications(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	list, unread, err := h.service.List(c.Request.Context(), c.GetString("user_id"), limit)
	if err != nil {
		_ = c.Error(err)
		response.CustomError(c, http.StatusInternalServerError, "FETCH_FAILED", messages.ErrDefault)
		return
	}
	response.Success(c, http.StatusOK, ListResponse{Notifications: list, UnreadCount: unread})
}

// MarkAsRead marks one notification as read.
// @Summary		Mark notification read
// @Tags		Notifications
// @Security	BearerAuth
// @Param		id	path	string	true	"notification id"
// @Success		200	{object}	map[string]interface{}
// @Failure		404	{object}	map[string]interface{}
// @Router		/notifications/{id}/read [patch]
func (h *Handler) MarkAsRead(c *gin.Context) {
	if err := h.service.MarkAsRead(c.Request.Context(), c.Param("id"), c.GetString("user_id")); err != nil {
		if errors.Is(err, ErrNotificationNotFound) {
			response.CustomError(c, http.StatusNotFound, "NOT_FOUND", messages.ErrNotFound)
			return
		}
		_ = c.Error(err)
		response.CustomError(c, http.StatusInternalServerError, "UPDATE_FAILED", messages.ErrDefault)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "read"})
}

// MarkAllAsRead marks every unread notification of the caller as read.
// @Summary		Mark all notifications read
// @Tags		Notifications
// @Security	BearerAuth
// @Success		200	{object}	map[string]interface{}
// @Router		/notifications/read-all [patch]
func (h *Handler) MarkAllAsRead(c *gin.Context) {
	updated, err := h.service.MarkAllAsRead(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		_ = c.Error(err)
		response.CustomError(c, http.StatusInternalServerError, "UPDATE_FAILED", messages.ErrDefault)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "all_read", "updated": updated, "message": messages.NotificationsMarkedRead})
}
