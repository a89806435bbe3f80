package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/myanedu/portal-api/internal/models"
	"github.com/myanedu/portal-api/internal/service"
	"github.com/myanedu/portal-api/pkg/response"
)

// NotificationHandler exposes the notification list and read receipts.
type NotificationHandler struct {
	sessions *service.SessionService
}

// NewNotificationHandler constructs NotificationHandler.
func NewNotificationHandler(sessions *service.SessionService) *NotificationHandler {
	return &NotificationHandler{sessions: sessions}
}

// List godoc
// @Summary List the student's notifications
// @Tags Notifications
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	items, err := h.sessions.Notifications(c.Request.Context(), sessionIDFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"items":        items,
		"unread_count": models.UnreadCount(items),
	}, nil)
}

// MarkRead godoc
// @Summary Mark one notification as read
// @Tags Notifications
// @Produce json
// @Param id path string true "Notification"
// @Success 202 {object} response.Envelope
// @Router /notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	err := h.sessions.MarkNotificationRead(c.Request.Context(), sessionIDFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, gin.H{"message": "accepted"})
}
