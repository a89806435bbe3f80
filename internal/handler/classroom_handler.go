package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/myanedu/portal-api/internal/service"
	appErrors "github.com/myanedu/portal-api/pkg/errors"
	"github.com/myanedu/portal-api/pkg/response"
)

// ClassroomHandler exposes lesson content and discussion threads.
type ClassroomHandler struct {
	sessions  *service.SessionService
	classroom *service.ClassroomService
}

// NewClassroomHandler constructs ClassroomHandler.
func NewClassroomHandler(sessions *service.SessionService, classroom *service.ClassroomService) *ClassroomHandler {
	return &ClassroomHandler{sessions: sessions, classroom: classroom}
}

// Lessons godoc
// @Summary Lessons of an enrolled batch
// @Tags Classroom
// @Produce json
// @Param batchId path string true "Batch"
// @Success 200 {object} response.Envelope
// @Router /classroom/{batchId}/lessons [get]
func (h *ClassroomHandler) Lessons(c *gin.Context) {
	sess, err := h.sessions.Current(c.Request.Context(), sessionIDFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	lessons, err := h.classroom.Lessons(c.Request.Context(), sess, c.Param("batchId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lessons, nil)
}

// Comments godoc
// @Summary Discussion under one lesson
// @Tags Classroom
// @Produce json
// @Param lessonId path string true "Lesson"
// @Success 200 {object} response.Envelope
// @Router /lessons/{lessonId}/comments [get]
func (h *ClassroomHandler) Comments(c *gin.Context) {
	comments, err := h.classroom.Comments(c.Request.Context(), c.Param("lessonId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, comments, nil)
}

// PostComment godoc
// @Summary Post a discussion message
// @Tags Classroom
// @Accept json
// @Produce json
// @Param payload body service.CommentInput true "Comment"
// @Success 201 {object} response.Envelope
// @Router /comments [post]
func (h *ClassroomHandler) PostComment(c *gin.Context) {
	sess, err := h.sessions.Current(c.Request.Context(), sessionIDFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	var input service.CommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	if err := h.classroom.PostComment(c.Request.Context(), sess, input); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"message": "comment posted"})
}
