package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/myanedu/portal-api/internal/service"
	appErrors "github.com/myanedu/portal-api/pkg/errors"
	"github.com/myanedu/portal-api/pkg/response"
)

// maxProfileUploadBytes bounds the profile picture size.
const maxProfileUploadBytes = 5 << 20

// ProfileHandler exposes account settings updates.
type ProfileHandler struct {
	sessions *service.SessionService
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(sessions *service.SessionService) *ProfileHandler {
	return &ProfileHandler{sessions: sessions}
}

// Update godoc
// @Summary Update name, address, password or profile picture
// @Tags Profile
// @Accept multipart/form-data
// @Produce json
// @Param name formData string true "Full name"
// @Param address formData string true "Address"
// @Param old_password formData string false "Current password, required to change it"
// @Param new_password formData string false "New password"
// @Param profile_image formData file false "Profile picture"
// @Success 200 {object} response.Envelope
// @Router /profile [put]
func (h *ProfileHandler) Update(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(maxProfileUploadBytes); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid multipart form"))
		return
	}
	input := service.ProfileInput{
		Name:        c.PostForm("name"),
		Address:     c.PostForm("address"),
		OldPassword: c.PostForm("old_password"),
		NewPassword: c.PostForm("new_password"),
	}

	var image io.Reader
	imageName := ""
	if file, header, err := c.Request.FormFile("profile_image"); err == nil {
		defer file.Close() //nolint:errcheck
		image = file
		imageName = header.Filename
	}

	view, err := h.sessions.UpdateProfile(c.Request.Context(), sessionIDFromContext(c), input, imageName, image)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}
