package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/myanedu/portal-api/internal/service"
	appErrors "github.com/myanedu/portal-api/pkg/errors"
	"github.com/myanedu/portal-api/pkg/response"
)

// maxReceiptUploadBytes bounds the payment proof image size.
const maxReceiptUploadBytes = 10 << 20

// PaymentHandler exposes payment methods, history, submission and export.
type PaymentHandler struct {
	sessions *service.SessionService
	payments *service.PaymentService
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(sessions *service.SessionService, payments *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{sessions: sessions, payments: payments}
}

// Methods godoc
// @Summary List accepted transfer channels
// @Tags Payments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /payments/methods [get]
func (h *PaymentHandler) Methods(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.payments.Methods(), nil)
}

// History godoc
// @Summary Payment history with derived access states
// @Tags Payments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /payments [get]
func (h *PaymentHandler) History(c *gin.Context) {
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
	response.JSON(c, http.StatusOK, history, nil)
}

// Submit godoc
// @Summary Submit a payment proof
// @Tags Payments
// @Accept multipart/form-data
// @Produce json
// @Param batch_id formData string true "Batch"
// @Param amount formData string true "Amount"
// @Param payment_method formData string true "KPay, Wave or CB"
// @Param transaction_id formData string true "Transfer transaction id"
// @Param receipt_image formData file true "Transfer screenshot"
// @Success 201 {object} response.Envelope
// @Router /payments [post]
func (h *PaymentHandler) Submit(c *gin.Context) {
	sess, err := h.sessions.Current(c.Request.Context(), sessionIDFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := c.Request.ParseMultipartForm(maxReceiptUploadBytes); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid multipart form"))
		return
	}
	input := service.PaymentInput{
		BatchID:       c.PostForm("batch_id"),
		Amount:        c.PostForm("amount"),
		PaymentMethod: c.PostForm("payment_method"),
		TransactionID: c.PostForm("transaction_id"),
	}
	file, header, err := c.Request.FormFile("receipt_image")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "receipt image is required"))
		return
	}
	defer file.Close() //nolint:errcheck

	if err := h.payments.Submit(c.Request.Context(), sess, input, header.Filename, file); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"message": "Payment submitted successfully"})
}

// Export godoc
// @Summary Download the payment history as CSV
// @Tags Payments
// @Produce text/csv
// @Success 200 {string} string
// @Router /payments/export [get]
func (h *PaymentHandler) Export(c *gin.Context) {
	sess, err := h.sessions.Current(c.Request.Context(), sessionIDFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	raw, err := h.payments.ExportHistory(c.Request.Context(), sess)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="payment-history.csv"`)
	c.Data(http.StatusOK, "text/csv", raw)
}
