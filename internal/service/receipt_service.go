package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/myanedu/portal-api/internal/models"
	appErrors "github.com/myanedu/portal-api/pkg/errors"
	"github.com/myanedu/portal-api/pkg/export"
	"github.com/myanedu/portal-api/pkg/jobs"
	"github.com/myanedu/portal-api/pkg/storage"
)

// ReceiptStatus tracks a render job through its lifecycle.
type ReceiptStatus string

const (
	ReceiptStatusQueued ReceiptStatus = "queued"
	ReceiptStatusReady  ReceiptStatus = "ready"
	ReceiptStatusFailed ReceiptStatus = "failed"
)

// ReceiptRecord is the caller-visible state of one render request.
type ReceiptRecord struct {
	ID          string        `json:"id"`
	PaymentID   string        `json:"payment_id"`
	Status      ReceiptStatus `json:"status"`
	DownloadURL string        `json:"download_url,omitempty"`
	ExpiresAt   time.Time     `json:"expires_at,omitempty"`
	RequestedAt time.Time     `json:"requested_at"`
}

type receiptJobPayload struct {
	receiptID string
	document  export.Receipt
}

// ReceiptService renders official payment receipts in the background and
// hands out signed, expiring download links. Only verified payments earn a
// receipt.
type ReceiptService struct {
	payments *PaymentService
	queue    *jobs.Queue
	renderer *export.ReceiptRenderer
	store    *storage.LocalStorage
	signer   *storage.SignedURLSigner
	metrics  *MetricsService
	logger   *zap.Logger
	now      func() time.Time

	mu      sync.RWMutex
	records map[string]*ReceiptRecord
}

// ReceiptQueueConfig bounds the render worker pool.
type ReceiptQueueConfig struct {
	Workers    int
	MaxRetries int
}

func NewReceiptService(payments *PaymentService, store *storage.LocalStorage, signer *storage.SignedURLSigner, metrics *MetricsService, cfg ReceiptQueueConfig, logger *zap.Logger) *ReceiptService {
	s := &ReceiptService{
		payments: payments,
		renderer: export.NewReceiptRenderer(),
		store:    store,
		signer:   signer,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
		records:  make(map[string]*ReceiptRecord),
	}
	s.queue = jobs.NewQueue("receipt-render", s.handleRenderJob, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		Logger:     logger,
	})
	return s
}

// Start launches the render workers.
func (s *ReceiptService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the render workers.
func (s *ReceiptService) Stop() {
	s.queue.Stop()
}

// Request queues a receipt render for one of the caller's payments. The
// payment must exist, belong to the session, and be verified.
func (s *ReceiptService) Request(ctx context.Context, sess models.Session, paymentID string) (*ReceiptRecord, error) {
	history, err := s.payments.History(ctx, sess)
	if err != nil {
		return nil, err
	}
	var payment *models.PaymentRecord
	for i := range history.Records {
		if history.Records[i].ID.String() == paymentID {
			payment = &history.Records[i]
			break
		}
	}
	if payment == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
	}
	if payment.Status != models.PaymentStatusVerified {
		return nil, appErrors.ErrReceiptUnavailable
	}

	record := &ReceiptRecord{
		ID:          uuid.NewString(),
		PaymentID:   paymentID,
		Status:      ReceiptStatusQueued,
		RequestedAt: s.now().UTC(),
	}
	s.mu.Lock()
	s.records[record.ID] = record
	s.mu.Unlock()

	document := export.Receipt{
		ReceiptID:     payment.DisplayID(),
		StudentName:   sess.StudentSnapshot.Name,
		StudentPhone:  sess.Phone,
		CourseName:    payment.CourseName,
		BatchName:     payment.BatchName,
		Amount:        fmt.Sprintf("%.0f MMK", float64(payment.Amount)),
		PaymentMethod: payment.PaymentMethod,
		PaymentDate:   formatDate(payment.PaymentDate),
	}
	err = s.queue.Enqueue(jobs.Job{
		ID:      record.ID,
		Payload: receiptJobPayload{receiptID: record.ID, document: document},
	})
	if err != nil {
		s.fail(record.ID)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "receipt queue unavailable")
	}
	s.metrics.ReceiptJobEnqueued()
	return s.snapshot(record.ID), nil
}

// Status reports the state of a render request, including the signed
// download link once the document is ready.
func (s *ReceiptService) Status(receiptID string) (*ReceiptRecord, error) {
	record := s.snapshot(receiptID)
	if record == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "receipt not found")
	}
	return record, nil
}

// Open validates a signed token and returns the rendered document.
func (s *ReceiptService) Open(token string) (io.ReadCloser, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid or expired download link")
	}
	file, err := s.store.Open(relPath)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "receipt file no longer available")
	}
	return file, nil
}

// CleanupLoop periodically removes rendered documents older than ttl. It
// blocks until ctx is cancelled.
func (s *ReceiptService) CleanupLoop(ctx context.Context, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := s.store.CleanupOlderThan(ttl)
			if err != nil {
				s.logger.Warn("receipt cleanup failed", zap.Error(err))
				continue
			}
			if len(deleted) > 0 {
				s.logger.Info("expired receipts removed", zap.Int("count", len(deleted)))
			}
		}
	}
}

func (s *ReceiptService) handleRenderJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(receiptJobPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", job.Payload)
	}
	pdf, err := s.renderer.Render(payload.document)
	if err != nil {
		s.fail(payload.receiptID)
		return fmt.Errorf("render receipt %s: %w", payload.receiptID, err)
	}
	relPath := fmt.Sprintf("%s.pdf", payload.receiptID)
	if _, err := s.store.Save(relPath, pdf); err != nil {
		s.fail(payload.receiptID)
		return fmt.Errorf("store receipt %s: %w", payload.receiptID, err)
	}
	token, expiresAt, err := s.signer.Generate(payload.receiptID, relPath)
	if err != nil {
		s.fail(payload.receiptID)
		return fmt.Errorf("sign receipt url %s: %w", payload.receiptID, err)
	}

	s.mu.Lock()
	if record, exists := s.records[payload.receiptID]; exists {
		record.Status = ReceiptStatusReady
		record.DownloadURL = "/downloads/receipt?token=" + token
		record.ExpiresAt = expiresAt
	}
	s.mu.Unlock()
	return nil
}

func (s *ReceiptService) fail(receiptID string) {
	s.mu.Lock()
	if record, exists := s.records[receiptID]; exists {
		record.Status = ReceiptStatusFailed
	}
	s.mu.Unlock()
}

func (s *ReceiptService) snapshot(receiptID string) *ReceiptRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, exists := s.records[receiptID]
	if !exists {
		return nil
	}
	copied := *record
	return &copied
}
