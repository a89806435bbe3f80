package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/myanedu/portal-api/internal/service"
	appErrors "github.com/myanedu/portal-api/pkg/errors"
	"github.com/myanedu/portal-api/pkg/response"
)

// AuthHandler exposes the guest flows: phone lookup, login and registration.
type AuthHandler struct {
	sessions *service.SessionService
	tokens   *service.TokenService
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(sessions *service.SessionService, tokens *service.TokenService) *AuthHandler {
	return &AuthHandler{sessions: sessions, tokens: tokens}
}

type lookupRequest struct {
	Phone string `json:"phone"`
}

type authenticatedResponse struct {
	Token     string               `json:"token,omitempty"`
	ExpiresAt time.Time            `json:"token_expires_at,omitempty"`
	View      *service.SessionView `json:"view"`
}

// Lookup godoc
// @Summary Find an account by phone number
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body lookupRequest true "Phone to search"
// @Success 200 {object} response.Envelope
// @Router /auth/search [post]
func (h *AuthHandler) Lookup(c *gin.Context) {
	var req lookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	student, err := h.sessions.Lookup(c.Request.Context(), strings.TrimSpace(req.Phone))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Login godoc
// @Summary Log in and bind the account to a portal session
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body service.LoginInput true "Credentials"
// @Success 200 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var input service.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	resp := authenticatedResponse{}
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

	view, err := h.sessions.Login(c.Request.Context(), sessionID, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	resp.View = view
	response.JSON(c, http.StatusOK, resp, nil)
}

// Register godoc
// @Summary Create a new student account and bind it to the session
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body service.RegisterInput true "Registration form"
// @Success 201 {object} response.Envelope
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var input service.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	resp := authenticatedResponse{}
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

	view, err := h.sessions.Register(c.Request.Context(), sessionID, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	resp.View = view
	response.Created(c, resp)
}
