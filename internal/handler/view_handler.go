package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/myanedu/portal-api/internal/models"
	"github.com/myanedu/portal-api/internal/service"
	appErrors "github.com/myanedu/portal-api/pkg/errors"
	"github.com/myanedu/portal-api/pkg/response"
)

// ViewHandler reconciles the browser's ephemeral view intent with the
// session. All transitions are pure, so the endpoints simply echo back the
// corrected intent.
type ViewHandler struct {
	sessions *service.SessionService
	views    *service.ViewService
}

// NewViewHandler constructs ViewHandler.
func NewViewHandler(sessions *service.SessionService, views *service.ViewService) *ViewHandler {
	return &ViewHandler{sessions: sessions, views: views}
}

type viewEventRequest struct {
	Event   string            `json:"event"`
	Intent  models.ViewIntent `json:"intent"`
	BatchID models.FlexID     `json:"batch_id,omitempty"`
	Anchor  models.NavAnchor  `json:"anchor,omitempty"`
}

// Apply godoc
// @Summary Apply a view transition and return the corrected intent
// @Tags View
// @Accept json
// @Produce json
// @Param payload body viewEventRequest true "Transition"
// @Success 200 {object} response.Envelope
// @Router /view [post]
func (h *ViewHandler) Apply(c *gin.Context) {
	var req viewEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	// A missing or expired session simply downgrades the view to guest.
	sess := models.Session{}
	if sessionID := sessionIDFromContext(c); sessionID != "" {
		if current, err := h.sessions.Current(c.Request.Context(), sessionID); err == nil {
			sess = current
		}
	}

	var intent models.ViewIntent
	switch req.Event {
	case "resolve", "":
		intent = h.views.Resolve(sess, req.Intent)
	case "open_register":
		intent = h.views.RequestRegister(sess, req.Intent)
	case "cancel_register":
		intent = h.views.CancelRegister(sess, req.Intent)
	case "register_success":
		intent = h.views.RegisterSuccess(sess, req.Intent)
	case "select_course":
		intent = h.views.SelectCourse(sess, req.Intent, req.BatchID)
	case "choose_existing_account":
		intent = h.views.ChooseExistingAccount(sess, req.Intent)
	case "choose_new_account":
		intent = h.views.ChooseNewAccount(sess, req.Intent)
	case "navigate":
		intent = h.views.Navigate(sess, req.Intent, req.Anchor)
	case "renew":
		intent = h.views.BeginRenewal(sess, req.Intent, req.BatchID)
	case "clear_enrollment":
		intent = h.views.ClearPendingEnrollment(sess, req.Intent)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown view event"))
		return
	}
	response.JSON(c, http.StatusOK, intent, nil)
}
