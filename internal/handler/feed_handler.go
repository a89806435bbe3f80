package handler

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/myanedu/portal-api/internal/service"
	appErrors "github.com/myanedu/portal-api/pkg/errors"
	"github.com/myanedu/portal-api/pkg/response"
)

// FeedHandler streams live notification and comment updates to the browser
// as server-sent events backed by the polling watchers.
type FeedHandler struct {
	sessions *service.SessionService
	feeds    *service.FeedService
}

// NewFeedHandler constructs FeedHandler.
func NewFeedHandler(sessions *service.SessionService, feeds *service.FeedService) *FeedHandler {
	return &FeedHandler{sessions: sessions, feeds: feeds}
}

// Notifications godoc
// @Summary Stream notification updates
// @Tags Feeds
// @Produce text/event-stream
// @Success 200 {string} string
// @Router /feeds/notifications [get]
func (h *FeedHandler) Notifications(c *gin.Context) {
	sessionID := sessionIDFromContext(c)
	if _, err := h.sessions.Current(c.Request.Context(), sessionID); err != nil {
		response.Error(c, err)
		return
	}

	updates, stop := h.feeds.WatchNotifications(sessionID)
	defer stop()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		select {
		case feed, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent("notifications", feed)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// Comments godoc
// @Summary Stream discussion updates for one lesson
// @Tags Feeds
// @Produce text/event-stream
// @Param lessonId path string true "Lesson"
// @Success 200 {string} string
// @Router /feeds/lessons/{lessonId}/comments [get]
func (h *FeedHandler) Comments(c *gin.Context) {
	lessonID := c.Param("lessonId")
	if lessonID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "lesson id is required"))
		return
	}

	updates, stop := h.feeds.WatchComments(lessonID)
	defer stop()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		select {
		case feed, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent("comments", feed)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
