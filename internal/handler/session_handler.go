package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/myanedu/portal-api/internal/models"
	"github.com/myanedu/portal-api/internal/service"
	appErrors "github.com/myanedu/portal-api/pkg/errors"
	"github.com/myanedu/portal-api/pkg/response"
)

// SessionHandler exposes session restore, refresh and logout.
type SessionHandler struct {
	sessions *service.SessionService
	views    *service.ViewService
	tokens   *service.TokenService
	feeds    *service.FeedService
}

// NewSessionHandler constructs SessionHandler.
func NewSessionHandler(sessions *service.SessionService, views *service.ViewService, tokens *service.TokenService, feeds *service.FeedService) *SessionHandler {
	return &SessionHandler{sessions: sessions, views: views, tokens: tokens, feeds: feeds}
}

type restoreResponse struct {
	Token     string               `json:"token,omitempty"`
	ExpiresAt time.Time            `json:"token_expires_at,omitempty"`
	View      *service.SessionView `json:"view"`
	Intent    models.ViewIntent    `json:"intent"`
}

// Restore godoc
// @Summary Restore the portal state for a returning browser
// @Tags Session
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /session [get]
func (h *SessionHandler) Restore(c *gin.Context) {
	resp := restoreResponse{}
	sessionID := sessionIDFromContext(c)
	if sessionID == "" {
		token, newID, expiresAt, err := h.tokens.Issue()
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "token issue failed"))
			return
		}
		sessionID = newID
		resp.Token = token
		resp.ExpiresAt = expiresAt
	}

	view, err := h.sessions.Restore(c.Request.Context(), sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	resp.View = view
	resp.Intent = h.views.Resolve(view.Session, models.ViewIntent{Notice: view.Notice})
	response.JSON(c, http.StatusOK, resp, nil)
}

// Refresh godoc
// @Summary Revalidate the session against the backend
// @Tags Session
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /session/refresh [post]
func (h *SessionHandler) Refresh(c *gin.Context) {
	sessionID := sessionIDFromContext(c)
	view, err := h.sessions.Refresh(c.Request.Context(), sessionID)
	if err != nil {
		if appErrors.FromError(err).Code == appErrors.ErrSessionExpired.Code {
			h.feeds.StopSession(sessionID)
		}
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, restoreResponse{
		View:   view,
		Intent: h.views.Resolve(view.Session, models.ViewIntent{Notice: view.Notice}),
	}, nil)
}

// Logout godoc
// @Summary End the portal session
// @Tags Session
// @Produce json
// @Success 204
// @Router /session [delete]
func (h *SessionHandler) Logout(c *gin.Context) {
	sessionID := sessionIDFromContext(c)
	if err := h.sessions.Logout(c.Request.Context(), sessionID); err != nil {
		response.Error(c, err)
		return
	}
	h.feeds.StopSession(sessionID)
	response.NoContent(c)
}
