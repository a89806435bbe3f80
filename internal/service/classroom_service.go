package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/myanedu/portal-api/internal/models"
	"github.com/myanedu/portal-api/internal/upstream"
	appErrors "github.com/myanedu/portal-api/pkg/errors"
)

// classroomGateway is the slice of the backend client the classroom uses.
type classroomGateway interface {
	Payments(ctx context.Context, phone string) ([]models.PaymentRecord, error)
	Lessons(ctx context.Context, batchID string) ([]models.Lesson, error)
	Comments(ctx context.Context, lessonID string) ([]models.Comment, error)
	PostComment(ctx context.Context, req upstream.CommentRequest) error
}

// CommentInput carries a new discussion message from the browser.
type CommentInput struct {
	LessonID string `json:"lesson_id" validate:"required"`
	Message  string `json:"message" validate:"required,max=2000"`
}

// ClassroomService guards lesson content behind the payment-derived entry
// decision and proxies the lesson discussion threads.
type ClassroomService struct {
	upstream classroomGateway
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
}

func NewClassroomService(gateway classroomGateway, logger *zap.Logger) *ClassroomService {
	return &ClassroomService{
		upstream: gateway,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
	}
}

// Lessons returns the lesson list for a batch the student may enter. The
// entry decision is recomputed from live payments on every call, so a
// revoked payment locks the classroom immediately.
func (s *ClassroomService) Lessons(ctx context.Context, sess models.Session, batchID string) ([]models.Lesson, error) {
	if !sess.Authenticated() {
		return nil, appErrors.ErrSessionExpired
	}
	if batchID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "batch_id is required")
	}
	payments, err := s.upstream.Payments(ctx, sess.Phone)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstreamUnreachable.Code, appErrors.ErrUpstreamUnreachable.Status, appErrors.ErrUpstreamUnreachable.Message)
	}
	decision := CanEnter(payments, batchID, s.now())
	if !decision.Allowed {
		return nil, entryError(decision.Reason)
	}
	lessons, err := s.upstream.Lessons(ctx, batchID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstreamUnreachable.Code, appErrors.ErrUpstreamUnreachable.Status, appErrors.ErrUpstreamUnreachable.Message)
	}
	if lessons == nil {
		lessons = []models.Lesson{}
	}
	return lessons, nil
}

// Comments lists the discussion under one lesson.
func (s *ClassroomService) Comments(ctx context.Context, lessonID string) ([]models.Comment, error) {
	if lessonID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "lesson_id is required")
	}
	comments, err := s.upstream.Comments(ctx, lessonID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstreamUnreachable.Code, appErrors.ErrUpstreamUnreachable.Status, appErrors.ErrUpstreamUnreachable.Message)
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	return comments, nil
}

// PostComment publishes a message under the student's own name. The name is
// taken from the session snapshot, never from the request body.
func (s *ClassroomService) PostComment(ctx context.Context, sess models.Session, input CommentInput) error {
	if !sess.Authenticated() {
		return appErrors.ErrSessionExpired
	}
	if err := s.validate.Struct(input); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid comment payload")
	}
	err := s.upstream.PostComment(ctx, upstream.CommentRequest{
		LessonID: input.LessonID,
		UserName: sess.StudentSnapshot.Name,
		Message:  input.Message,
	})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstreamUnreachable.Code, appErrors.ErrUpstreamUnreachable.Status, appErrors.ErrUpstreamUnreachable.Message)
	}
	return nil
}

// entryError maps a denial reason onto the portal error surfaced to the
// browser.
func entryError(reason models.EntryDenialReason) error {
	switch reason {
	case models.DenialExpired:
		return appErrors.ErrAccessExpired
	case models.DenialRevoked:
		return appErrors.ErrAccessRevoked
	default:
		return appErrors.ErrAccessNotVerified
	}
}
