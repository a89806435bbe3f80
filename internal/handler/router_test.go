package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/myanedu/portal-api/internal/models"
	"github.com/myanedu/portal-api/internal/service"
	"github.com/myanedu/portal-api/internal/session"
	"github.com/myanedu/portal-api/internal/upstream"
	"github.com/myanedu/portal-api/pkg/config"
	"github.com/myanedu/portal-api/pkg/storage"
)

// fakeBackend satisfies every upstream gateway slice the services consume.
type fakeBackend struct {
	student  *models.Student
	payments []models.PaymentRecord
	batches  []models.Batch
	lessons  []models.Lesson
}

func (f *fakeBackend) FindStudent(ctx context.Context, phone string) (*models.Student, error) {
	if f.student == nil {
		return nil, upstream.ErrNotFound
	}
	return f.student, nil
}

func (f *fakeBackend) Login(ctx context.Context, req upstream.LoginRequest) (*models.Student, error) {
	if f.student == nil || req.Password != "secret1" {
		return nil, &upstream.StatusError{StatusCode: http.StatusUnauthorized, Message: "Incorrect password"}
	}
	return f.student, nil
}

func (f *fakeBackend) Register(ctx context.Context, req upstream.RegisterRequest) error { return nil }

func (f *fakeBackend) Payments(ctx context.Context, phone string) ([]models.PaymentRecord, error) {
	return f.payments, nil
}

func (f *fakeBackend) Exams(ctx context.Context, phone string) ([]models.ExamResult, error) {
	return nil, nil
}

func (f *fakeBackend) Notifications(ctx context.Context, studentID string) ([]models.Notification, error) {
	return []models.Notification{{ID: "n1", Message: "Payment verified"}}, nil
}

func (f *fakeBackend) MarkNotificationRead(ctx context.Context, notificationID string) error {
	return nil
}

func (f *fakeBackend) UpdateProfile(ctx context.Context, upd upstream.ProfileUpdate) error {
	return nil
}

func (f *fakeBackend) ActiveBatches(ctx context.Context) ([]models.Batch, error) {
	return f.batches, nil
}

func (f *fakeBackend) PromotedCourses(ctx context.Context) ([]models.PromotedCourse, error) {
	return nil, nil
}

func (f *fakeBackend) Instructors(ctx context.Context) ([]models.Instructor, error) {
	return nil, nil
}

func (f *fakeBackend) Lessons(ctx context.Context, batchID string) ([]models.Lesson, error) {
	return f.lessons, nil
}

func (f *fakeBackend) Comments(ctx context.Context, lessonID string) ([]models.Comment, error) {
	return nil, nil
}

func (f *fakeBackend) PostComment(ctx context.Context, req upstream.CommentRequest) error {
	return nil
}

func (f *fakeBackend) SubmitPayment(ctx context.Context, sub upstream.PaymentSubmission) error {
	return nil
}

func buildPortalRouter(t *testing.T, backend *fakeBackend) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	store := session.NewMemoryStore()
	sessions := service.NewSessionService(store, backend, logger)
	tokens := service.NewTokenService(config.SessionConfig{TokenSecret: "test-secret", TokenTTL: time.Hour})
	views := service.NewViewService()
	cache := service.NewCacheService(nil, nil, time.Minute, logger, false)
	catalog := service.NewCatalogService(backend, cache, time.Minute, logger)
	classroom := service.NewClassroomService(backend, logger)
	payments := service.NewPaymentService(backend, logger)
	feeds := service.NewFeedService(sessions, classroom, config.FeedsConfig{}, nil, logger)
	t.Cleanup(feeds.Shutdown)

	localStore, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Minute)
	receipts := service.NewReceiptService(payments, localStore, signer, nil, service.ReceiptQueueConfig{Workers: 1}, logger)
	ctx, cancel := context.WithCancel(context.Background())
	receipts.Start(ctx)
	t.Cleanup(func() {
		cancel()
		receipts.Stop()
	})

	router := gin.New()
	Register(router, "", Services{
		Sessions:  sessions,
		Tokens:    tokens,
		Views:     views,
		Catalog:   catalog,
		Classroom: classroom,
		Payments:  payments,
		Receipts:  receipts,
		Feeds:     feeds,
	})
	return router
}

func perform(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func decodeData(t *testing.T, body []byte) map[string]interface{} {
	t.Helper()
	var envelope struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &envelope))
	return envelope.Data
}

func portalStudent() *models.Student {
	return &models.Student{ID: "42", Name: "Aye Chan", PhonePrimary: "0912345678"}
}

func TestSessionRestoreIssuesTokenForNewBrowser(t *testing.T) {
	router := buildPortalRouter(t, &fakeBackend{})

	req, _ := http.NewRequest(http.MethodGet, "/session", nil)
	resp := perform(router, req)
	require.Equal(t, http.StatusOK, resp.Code)

	data := decodeData(t, resp.Body.Bytes())
	assert.NotEmpty(t, data["token"])
	intent := data["intent"].(map[string]interface{})
	assert.Equal(t, string(models.ViewGuestSearch), intent["screen"])
}

func TestLoginThenDashboard(t *testing.T) {
	backend := &fakeBackend{
		student: portalStudent(),
		payments: []models.PaymentRecord{{
			ID:         "1",
			BatchID:    "B1",
			Status:     models.PaymentStatusVerified,
			Amount:     45000,
			ExpireDate: models.FlexTime{Time: time.Now().Add(48 * time.Hour)},
		}},
	}
	router := buildPortalRouter(t, backend)

	payload, _ := json.Marshal(map[string]string{"phone": "0912345678", "password": "secret1"})
	req, _ := http.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := perform(router, req)
	require.Equal(t, http.StatusOK, resp.Code)

	data := decodeData(t, resp.Body.Bytes())
	token := data["token"].(string)
	require.NotEmpty(t, token)

	req, _ = http.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp = perform(router, req)
	require.Equal(t, http.StatusOK, resp.Code)

	dash := decodeData(t, resp.Body.Bytes())
	stats := dash["stats"].(map[string]interface{})
	assert.Equal(t, float64(1), stats["active_courses"])
}

func TestRegisterBindsSessionAndResolvesDashboard(t *testing.T) {
	router := buildPortalRouter(t, &fakeBackend{student: portalStudent()})

	payload, _ := json.Marshal(map[string]string{
		"name":          "Aye Chan",
		"phone":         "0912345678",
		"date_of_birth": "2001-05-14",
		"address":       "Yangon",
		"password":      "secret1",
	})
	req, _ := http.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := perform(router, req)
	require.Equal(t, http.StatusCreated, resp.Code)

	data := decodeData(t, resp.Body.Bytes())
	token, _ := data["token"].(string)
	require.NotEmpty(t, token)

	// The new account is already bound; the dashboard opens without a
	// separate login.
	req, _ = http.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp = perform(router, req)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Aye Chan")
}

func TestLoginRejectsBadPassword(t *testing.T) {
	router := buildPortalRouter(t, &fakeBackend{student: portalStudent()})

	payload, _ := json.Marshal(map[string]string{"phone": "0912345678", "password": "wrong12"})
	req, _ := http.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := perform(router, req)
	require.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Contains(t, resp.Body.String(), "Incorrect password")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := buildPortalRouter(t, &fakeBackend{})

	for _, path := range []string{"/dashboard", "/payments", "/notifications", "/exams"} {
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		resp := perform(router, req)
		assert.Equal(t, http.StatusUnauthorized, resp.Code, path)
	}
}

func TestCatalogIsPublic(t *testing.T) {
	router := buildPortalRouter(t, &fakeBackend{batches: []models.Batch{{ID: "B1", CourseName: "Go Basics"}}})

	req, _ := http.NewRequest(http.MethodGet, "/catalog/batches", nil)
	resp := perform(router, req)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Go Basics")
}

func TestViewEventDowngradesGuestDashboardClaim(t *testing.T) {
	router := buildPortalRouter(t, &fakeBackend{})

	payload, _ := json.Marshal(map[string]interface{}{
		"event":  "resolve",
		"intent": map[string]interface{}{"screen": "dashboard"},
	})
	req, _ := http.NewRequest(http.MethodPost, "/view", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := perform(router, req)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), string(models.ViewGuestSearch))
}
