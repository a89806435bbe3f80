package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/myanedu/portal-api/internal/models"
	"github.com/myanedu/portal-api/internal/upstream"
	appErrors "github.com/myanedu/portal-api/pkg/errors"
	"github.com/myanedu/portal-api/pkg/export"
)

// PaymentMethod describes one accepted transfer channel and the school
// account the student transfers to.
type PaymentMethod struct {
	Name          string `json:"name"`
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
}

// paymentMethods is the fixed list of transfer channels the school accepts.
var paymentMethods = []PaymentMethod{
	{Name: "KPay", AccountNumber: "09123456789", AccountName: "U Kyaw Kyaw"},
	{Name: "Wave", AccountNumber: "09987654321", AccountName: "Daw Mya Mya"},
	{Name: "CB", AccountNumber: "001122334455", AccountName: "U Ba Maung"},
}

// PaymentInput carries a payment proof submission from the browser. The
// receipt image itself travels alongside as a stream.
type PaymentInput struct {
	BatchID       string `json:"batch_id" validate:"required"`
	Amount        string `json:"amount" validate:"required,numeric"`
	PaymentMethod string `json:"payment_method" validate:"required,oneof=KPay Wave CB"`
	TransactionID string `json:"transaction_id" validate:"required"`
}

// paymentGateway is the slice of the backend client the payment flow uses.
type paymentGateway interface {
	Payments(ctx context.Context, phone string) ([]models.PaymentRecord, error)
	SubmitPayment(ctx context.Context, sub upstream.PaymentSubmission) error
}

// PaymentHistory bundles the enrollment view derived from raw payments.
type PaymentHistory struct {
	Records []models.PaymentRecord `json:"records"`
	Access  []models.AccessState   `json:"access"`
	Stats   models.DashboardStats  `json:"stats"`
}

// PaymentService handles payment submission and presents the payment-derived
// dashboard data.
type PaymentService struct {
	upstream paymentGateway
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
}

func NewPaymentService(gateway paymentGateway, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		upstream: gateway,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
	}
}

// Methods lists the accepted transfer channels.
func (s *PaymentService) Methods() []PaymentMethod {
	out := make([]PaymentMethod, len(paymentMethods))
	copy(out, paymentMethods)
	return out
}

// History returns the student's payments with derived access states and
// dashboard stats.
func (s *PaymentService) History(ctx context.Context, sess models.Session) (*PaymentHistory, error) {
	if !sess.Authenticated() {
		return nil, appErrors.ErrSessionExpired
	}
	payments, err := s.upstream.Payments(ctx, sess.Phone)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstreamUnreachable.Code, appErrors.ErrUpstreamUnreachable.Status, appErrors.ErrUpstreamUnreachable.Message)
	}
	if payments == nil {
		payments = []models.PaymentRecord{}
	}
	now := s.now()
	return &PaymentHistory{
		Records: payments,
		Access:  DeriveAccessStates(payments, now),
		Stats:   Stats(payments, now),
	}, nil
}

// Submit forwards a payment proof to the backend. The student's phone comes
// from the session, never from the form.
func (s *PaymentService) Submit(ctx context.Context, sess models.Session, input PaymentInput, receiptName string, receipt io.Reader) error {
	if !sess.Authenticated() {
		return appErrors.ErrSessionExpired
	}
	if err := s.validate.Struct(input); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}
	if receipt == nil {
		return appErrors.Clone(appErrors.ErrValidation, "receipt image is required")
	}
	err := s.upstream.SubmitPayment(ctx, upstream.PaymentSubmission{
		Phone:           sess.Phone,
		BatchID:         input.BatchID,
		Amount:          input.Amount,
		PaymentMethod:   input.PaymentMethod,
		TransactionID:   input.TransactionID,
		ReceiptFilename: receiptName,
		Receipt:         receipt,
	})
	if err != nil {
		return mapPaymentErr(err)
	}
	s.logger.Info("payment submitted",
		zap.String("batch_id", input.BatchID),
		zap.String("method", input.PaymentMethod))
	return nil
}

// ExportHistory renders the payment history as a CSV download.
func (s *PaymentService) ExportHistory(ctx context.Context, sess models.Session) ([]byte, error) {
	history, err := s.History(ctx, sess)
	if err != nil {
		return nil, err
	}
	dataset := export.Dataset{
		Headers: []string{"Receipt No", "Course", "Batch", "Amount", "Method", "Status", "Payment Date", "Expire Date"},
	}
	for _, rec := range history.Records {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Receipt No":   rec.DisplayID(),
			"Course":       rec.CourseName,
			"Batch":        rec.BatchName,
			"Amount":       fmt.Sprintf("%.0f", float64(rec.Amount)),
			"Method":       rec.PaymentMethod,
			"Status":       string(rec.Status),
			"Payment Date": formatDate(rec.PaymentDate),
			"Expire Date":  formatDate(rec.ExpireDate),
		})
	}
	return export.NewCSVExporter().Render(dataset)
}

func formatDate(t models.FlexTime) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func mapPaymentErr(err error) error {
	var statusErr *upstream.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode >= 400 && statusErr.StatusCode < 500 {
		return appErrors.Clone(appErrors.ErrValidation, statusErr.Message)
	}
	return appErrors.Wrap(err, appErrors.ErrUpstreamUnreachable.Code, appErrors.ErrUpstreamUnreachable.Status, appErrors.ErrUpstreamUnreachable.Message)
}
