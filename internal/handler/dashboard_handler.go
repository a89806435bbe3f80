package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/myanedu/portal-api/internal/service"
	"github.com/myanedu/portal-api/pkg/response"
)

// DashboardHandler serves the authenticated landing data.
type DashboardHandler struct {
	sessions *service.SessionService
	payments *service.PaymentService
}

// NewDashboardHandler constructs DashboardHandler.
func NewDashboardHandler(sessions *service.SessionService, payments *service.PaymentService) *DashboardHandler {
	return &DashboardHandler{sessions: sessions, payments: payments}
}

// Summary godoc
// @Summary Dashboard stats, access states and payment records
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	sess, err := h.sessions.Current(c.Request.Context(), sessionIDFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	history, err := h.payments.History(c.Request.Context(), sess)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"student": sess.StudentSnapshot,
		"stats":   history.Stats,
		"access":  history.Access,
		"records": history.Records,
	}, nil)
}

// Exams godoc
// @Summary Released exam results
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /exams [get]
func (h *DashboardHandler) Exams(c *gin.Context) {
	exams, err := h.sessions.Exams(c.Request.Context(), sessionIDFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exams, nil)
}
