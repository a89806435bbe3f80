package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/myanedu/portal-api/internal/models"
	"github.com/myanedu/portal-api/internal/upstream"
	appErrors "github.com/myanedu/portal-api/pkg/errors"
)

type fakeClassroomGateway struct {
	payments []models.PaymentRecord
	lessons  []models.Lesson
	comments []models.Comment
	posted   []upstream.CommentRequest
}

func (f *fakeClassroomGateway) Payments(ctx context.Context, phone string) ([]models.PaymentRecord, error) {
	return f.payments, nil
}

func (f *fakeClassroomGateway) Lessons(ctx context.Context, batchID string) ([]models.Lesson, error) {
	return f.lessons, nil
}

func (f *fakeClassroomGateway) Comments(ctx context.Context, lessonID string) ([]models.Comment, error) {
	return f.comments, nil
}

func (f *fakeClassroomGateway) PostComment(ctx context.Context, req upstream.CommentRequest) error {
	f.posted = append(f.posted, req)
	return nil
}

func newClassroomService(gateway *fakeClassroomGateway) *ClassroomService {
	svc := NewClassroomService(gateway, zap.NewNop())
	svc.now = func() time.Time { return accessNow }
	return svc
}

func TestLessonsRequireVerifiedPayment(t *testing.T) {
	gateway := &fakeClassroomGateway{
		payments: []models.PaymentRecord{verifiedPayment("1", "B1", accessNow.Add(24*time.Hour))},
		lessons:  []models.Lesson{{ID: "L1", Title: "Introduction"}},
	}
	svc := newClassroomService(gateway)

	lessons, err := svc.Lessons(context.Background(), authedSession(), "B1")
	require.NoError(t, err)
	require.Len(t, lessons, 1)
}

func TestLessonsDeniedForPendingPayment(t *testing.T) {
	gateway := &fakeClassroomGateway{
		payments: []models.PaymentRecord{{ID: "1", BatchID: "B1", Status: models.PaymentStatusPending}},
	}
	svc := newClassroomService(gateway)

	_, err := svc.Lessons(context.Background(), authedSession(), "B1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAccessNotVerified.Code, appErrors.FromError(err).Code)
}

func TestLessonsDeniedAfterExpiry(t *testing.T) {
	gateway := &fakeClassroomGateway{
		payments: []models.PaymentRecord{verifiedPayment("1", "B1", accessNow.Add(-24*time.Hour))},
	}
	svc := newClassroomService(gateway)

	_, err := svc.Lessons(context.Background(), authedSession(), "B1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAccessExpired.Code, appErrors.FromError(err).Code)
}

func TestLessonsDeniedWhenPaymentRejected(t *testing.T) {
	gateway := &fakeClassroomGateway{
		payments: []models.PaymentRecord{{ID: "1", BatchID: "B1", Status: models.PaymentStatusRejected}},
	}
	svc := newClassroomService(gateway)

	_, err := svc.Lessons(context.Background(), authedSession(), "B1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAccessRevoked.Code, appErrors.FromError(err).Code)
}

func TestLessonsRejectGuests(t *testing.T) {
	svc := newClassroomService(&fakeClassroomGateway{})

	_, err := svc.Lessons(context.Background(), guestSession(), "B1")
	assert.ErrorIs(t, err, appErrors.ErrSessionExpired)
}

func TestPostCommentUsesSnapshotName(t *testing.T) {
	gateway := &fakeClassroomGateway{}
	svc := newClassroomService(gateway)

	err := svc.PostComment(context.Background(), authedSession(), CommentInput{
		LessonID: "L1",
		Message:  "Great lesson!",
	})
	require.NoError(t, err)
	require.Len(t, gateway.posted, 1)
	assert.Equal(t, "Aye Chan", gateway.posted[0].UserName)
	assert.Equal(t, "L1", gateway.posted[0].LessonID)
}

func TestPostCommentValidatesMessage(t *testing.T) {
	svc := newClassroomService(&fakeClassroomGateway{})

	err := svc.PostComment(context.Background(), authedSession(), CommentInput{LessonID: "L1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
