package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/myanedu/portal-api/internal/service"
	appErrors "github.com/myanedu/portal-api/pkg/errors"
	"github.com/myanedu/portal-api/pkg/response"
)

// ReceiptHandler exposes receipt rendering and signed downloads.
type ReceiptHandler struct {
	sessions *service.SessionService
	receipts *service.ReceiptService
}

// NewReceiptHandler constructs ReceiptHandler.
func NewReceiptHandler(sessions *service.SessionService, receipts *service.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{sessions: sessions, receipts: receipts}
}

type receiptRequest struct {
	PaymentID string `json:"payment_id"`
}

// Request godoc
// @Summary Queue a receipt render for a verified payment
// @Tags Receipts
// @Accept json
// @Produce json
// @Param payload body receiptRequest true "Payment to render"
// @Success 202 {object} response.Envelope
// @Router /receipts [post]
func (h *ReceiptHandler) Request(c *gin.Context) {
	sess, err := h.sessions.Current(c.Request.Context(), sessionIDFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	var req receiptRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.PaymentID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "payment_id is required"))
		return
	}
	record, err := h.receipts.Request(c.Request.Context(), sess, req.PaymentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, record)
}

// Status godoc
// @Summary Check a receipt render job
// @Tags Receipts
// @Produce json
// @Param id path string true "Receipt"
// @Success 200 {object} response.Envelope
// @Router /receipts/{id} [get]
func (h *ReceiptHandler) Status(c *gin.Context) {
	record, err := h.receipts.Status(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Download godoc
// @Summary Download a rendered receipt with a signed token
// @Tags Receipts
// @Produce application/pdf
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Router /downloads/receipt [get]
func (h *ReceiptHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	reader, err := h.receipts.Open(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer reader.Close() //nolint:errcheck

	c.Header("Content-Disposition", `attachment; filename="receipt.pdf"`)
	c.Header("Content-Type", "application/pdf")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		_ = c.Error(err)
	}
}
