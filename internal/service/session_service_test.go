package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/myanedu/portal-api/internal/models"
	"github.com/myanedu/portal-api/internal/session"
	"github.com/myanedu/portal-api/internal/upstream"
	appErrors "github.com/myanedu/portal-api/pkg/errors"
)

type fakeGateway struct {
	student     *models.Student
	studentErr  error
	findCalls   int32
	loginErr    error
	registerErr error

	payments    []models.PaymentRecord
	paymentsErr error
	exams       []models.ExamResult
	examsErr    error

	notifications  []models.Notification
	markedRead     chan string
	profileUpdates []upstream.ProfileUpdate
}

func (f *fakeGateway) FindStudent(ctx context.Context, phone string) (*models.Student, error) {
	atomic.AddInt32(&f.findCalls, 1)
	if f.studentErr != nil {
		return nil, f.studentErr
	}
	return f.student, nil
}

func (f *fakeGateway) Login(ctx context.Context, req upstream.LoginRequest) (*models.Student, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.student, nil
}

func (f *fakeGateway) Register(ctx context.Context, req upstream.RegisterRequest) error {
	return f.registerErr
}

func (f *fakeGateway) Payments(ctx context.Context, phone string) ([]models.PaymentRecord, error) {
	return f.payments, f.paymentsErr
}

func (f *fakeGateway) Exams(ctx context.Context, phone string) ([]models.ExamResult, error) {
	return f.exams, f.examsErr
}

func (f *fakeGateway) Notifications(ctx context.Context, studentID string) ([]models.Notification, error) {
	return f.notifications, nil
}

func (f *fakeGateway) MarkNotificationRead(ctx context.Context, notificationID string) error {
	if f.markedRead != nil {
		f.markedRead <- notificationID
	}
	return nil
}

func (f *fakeGateway) UpdateProfile(ctx context.Context, upd upstream.ProfileUpdate) error {
	f.profileUpdates = append(f.profileUpdates, upd)
	return nil
}

func testStudent() *models.Student {
	return &models.Student{ID: "42", Name: "Aye Chan", PhonePrimary: "0912345678"}
}

func seedSession(t *testing.T, store session.Store, sessionID string, student *models.Student) {
	t.Helper()
	snapshot, err := json.Marshal(student)
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), sessionID, session.Record{
		Phone:    "0912345678",
		Snapshot: snapshot,
	}))
}

func newSessionService(store session.Store, gateway *fakeGateway) *SessionService {
	return NewSessionService(store, gateway, zap.NewNop())
}

func TestRestoreAbsentRecordYieldsGuest(t *testing.T) {
	svc := newSessionService(session.NewMemoryStore(), &fakeGateway{})

	view, err := svc.Restore(context.Background(), "sid-1")
	require.NoError(t, err)
	assert.True(t, view.Session.Empty())
	assert.False(t, view.Session.Authenticated())
}

func TestRestoreCorruptSnapshotKeepsPhoneAndRefreshesOnce(t *testing.T) {
	store := session.NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), "sid-1", session.Record{
		Phone:    "0912345678",
		Snapshot: []byte(`{"broken`),
	}))
	gateway := &fakeGateway{student: testStudent()}
	svc := newSessionService(store, gateway)

	view, err := svc.Restore(context.Background(), "sid-1")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&gateway.findCalls))
	assert.Equal(t, "0912345678", view.Session.Phone)
	require.NotNil(t, view.Session.StudentSnapshot)
	assert.Equal(t, "42", view.Session.StudentSnapshot.ID.String())

	// The healed snapshot is persisted.
	rec, err := store.Load(context.Background(), "sid-1")
	require.NoError(t, err)
	assert.Contains(t, string(rec.Snapshot), `"Aye Chan"`)
}

func TestRefreshNotFoundInvalidatesSession(t *testing.T) {
	store := session.NewMemoryStore()
	seedSession(t, store, "sid-1", testStudent())
	gateway := &fakeGateway{studentErr: upstream.ErrNotFound}
	svc := newSessionService(store, gateway)

	_, err := svc.Refresh(context.Background(), "sid-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrSessionExpired)

	_, err = store.Load(context.Background(), "sid-1")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestRefreshTransportErrorKeepsStaleSession(t *testing.T) {
	store := session.NewMemoryStore()
	seedSession(t, store, "sid-1", testStudent())
	gateway := &fakeGateway{studentErr: errors.New("connection refused")}
	svc := newSessionService(store, gateway)

	view, err := svc.Refresh(context.Background(), "sid-1")
	require.NoError(t, err)
	assert.Equal(t, NoticeConnectionError, view.Notice)
	assert.True(t, view.Session.Authenticated())
	assert.Empty(t, view.Payments)
	assert.Empty(t, view.Exams)

	// Session survives the outage.
	_, err = store.Load(context.Background(), "sid-1")
	require.NoError(t, err)
}

func TestRefreshFetchesPaymentsAndExams(t *testing.T) {
	store := session.NewMemoryStore()
	seedSession(t, store, "sid-1", testStudent())
	gateway := &fakeGateway{
		student: testStudent(),
		payments: []models.PaymentRecord{
			{ID: "1", BatchID: "B1", Status: models.PaymentStatusVerified},
		},
		exams: []models.ExamResult{{ID: "e1", ExamTitle: "Midterm"}},
	}
	svc := newSessionService(store, gateway)

	view, err := svc.Refresh(context.Background(), "sid-1")
	require.NoError(t, err)
	assert.Empty(t, view.Notice)
	require.Len(t, view.Payments, 1)
	require.Len(t, view.Exams, 1)
}

func TestRefreshPaymentFailureDegradesToEmptyList(t *testing.T) {
	store := session.NewMemoryStore()
	seedSession(t, store, "sid-1", testStudent())
	gateway := &fakeGateway{
		student:     testStudent(),
		paymentsErr: errors.New("boom"),
		exams:       []models.ExamResult{{ID: "e1"}},
	}
	svc := newSessionService(store, gateway)

	view, err := svc.Refresh(context.Background(), "sid-1")
	require.NoError(t, err)
	assert.NotNil(t, view.Payments)
	assert.Empty(t, view.Payments)
	assert.Len(t, view.Exams, 1)
}

func TestLoginPersistsSessionAndLoadsData(t *testing.T) {
	store := session.NewMemoryStore()
	gateway := &fakeGateway{student: testStudent()}
	svc := newSessionService(store, gateway)

	view, err := svc.Login(context.Background(), "sid-1", LoginInput{Phone: "0912345678", Password: "secret1"})
	require.NoError(t, err)
	assert.True(t, view.Session.Authenticated())

	rec, err := store.Load(context.Background(), "sid-1")
	require.NoError(t, err)
	assert.Equal(t, "0912345678", rec.Phone)
	assert.NotEmpty(t, rec.Snapshot)
}

func TestLoginSurfacesBackendRejection(t *testing.T) {
	gateway := &fakeGateway{loginErr: &upstream.StatusError{StatusCode: 401, Message: "Incorrect password"}}
	svc := newSessionService(session.NewMemoryStore(), gateway)

	_, err := svc.Login(context.Background(), "sid-1", LoginInput{Phone: "0912345678", Password: "nope123"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
	assert.Equal(t, "Incorrect password", appErr.Message)
}

func TestLoginValidatesInput(t *testing.T) {
	svc := newSessionService(session.NewMemoryStore(), &fakeGateway{})

	_, err := svc.Login(context.Background(), "sid-1", LoginInput{Phone: "0912345678"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRegisterBindsSessionWithoutSeparateLogin(t *testing.T) {
	store := session.NewMemoryStore()
	gateway := &fakeGateway{student: testStudent()}
	svc := newSessionService(store, gateway)

	view, err := svc.Register(context.Background(), "sid-reg", RegisterInput{
		Name:        "Aye Chan",
		Phone:       "0912345678",
		DateOfBirth: "2001-05-14",
		Address:     "Yangon",
		Password:    "secret1",
	})
	require.NoError(t, err)
	assert.True(t, view.Session.Authenticated())
	assert.Equal(t, "0912345678", view.Session.Phone)

	rec, err := store.Load(context.Background(), "sid-reg")
	require.NoError(t, err)
	assert.Equal(t, "0912345678", rec.Phone)
	assert.NotEmpty(t, rec.Snapshot)
}

func TestRegisterKeepsPhoneWhenFirstRefreshUnreachable(t *testing.T) {
	store := session.NewMemoryStore()
	gateway := &fakeGateway{studentErr: errors.New("connection refused")}
	svc := newSessionService(store, gateway)

	view, err := svc.Register(context.Background(), "sid-reg", RegisterInput{
		Name:        "Aye Chan",
		Phone:       "0912345678",
		DateOfBirth: "2001-05-14",
		Address:     "Yangon",
		Password:    "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, NoticeConnectionError, view.Notice)
	assert.Equal(t, "0912345678", view.Session.Phone)

	// The phone is persisted before the refresh, so a later refresh can
	// still bind the snapshot.
	rec, err := store.Load(context.Background(), "sid-reg")
	require.NoError(t, err)
	assert.Equal(t, "0912345678", rec.Phone)
}

func TestRegisterBackendRejectionLeavesStoreEmpty(t *testing.T) {
	store := session.NewMemoryStore()
	gateway := &fakeGateway{registerErr: &upstream.StatusError{StatusCode: 422, Message: "Phone already registered"}}
	svc := newSessionService(store, gateway)

	_, err := svc.Register(context.Background(), "sid-reg", RegisterInput{
		Name:        "Aye Chan",
		Phone:       "0912345678",
		DateOfBirth: "2001-05-14",
		Address:     "Yangon",
		Password:    "secret1",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, "Phone already registered", appErr.Message)

	_, err = store.Load(context.Background(), "sid-reg")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestLogoutClearsStore(t *testing.T) {
	store := session.NewMemoryStore()
	seedSession(t, store, "sid-1", testStudent())
	svc := newSessionService(store, &fakeGateway{})

	require.NoError(t, svc.Logout(context.Background(), "sid-1"))
	_, err := store.Load(context.Background(), "sid-1")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestUpdateProfileRefreshesSnapshot(t *testing.T) {
	store := session.NewMemoryStore()
	seedSession(t, store, "sid-1", testStudent())
	updated := testStudent()
	updated.Name = "Aye Chan Moe"
	gateway := &fakeGateway{student: updated}
	svc := newSessionService(store, gateway)

	view, err := svc.UpdateProfile(context.Background(), "sid-1", ProfileInput{
		Name:    "Aye Chan Moe",
		Address: "Mandalay",
	}, "", nil)
	require.NoError(t, err)
	require.Len(t, gateway.profileUpdates, 1)
	assert.Equal(t, "42", gateway.profileUpdates[0].StudentID)
	require.NotNil(t, view.Session.StudentSnapshot)
	assert.Equal(t, "Aye Chan Moe", view.Session.StudentSnapshot.Name)
}

func TestUpdateProfileRequiresOldPasswordWithNew(t *testing.T) {
	store := session.NewMemoryStore()
	seedSession(t, store, "sid-1", testStudent())
	svc := newSessionService(store, &fakeGateway{student: testStudent()})

	_, err := svc.UpdateProfile(context.Background(), "sid-1", ProfileInput{
		Name:        "Aye Chan",
		Address:     "Yangon",
		NewPassword: "newsecret",
	}, "", nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestMarkNotificationReadIsFireAndForget(t *testing.T) {
	store := session.NewMemoryStore()
	seedSession(t, store, "sid-1", testStudent())
	gateway := &fakeGateway{markedRead: make(chan string, 1)}
	svc := newSessionService(store, gateway)

	require.NoError(t, svc.MarkNotificationRead(context.Background(), "sid-1", "n-9"))

	select {
	case id := <-gateway.markedRead:
		assert.Equal(t, "n-9", id)
	case <-time.After(2 * time.Second):
		t.Fatal("mark-read call never reached the backend")
	}
}
