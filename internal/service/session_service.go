package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/myanedu/portal-api/internal/models"
	"github.com/myanedu/portal-api/internal/session"
	"github.com/myanedu/portal-api/internal/upstream"
	appErrors "github.com/myanedu/portal-api/pkg/errors"
)

// NoticeConnectionError is surfaced on the dashboard when the backend could
// not be reached and the session keeps showing its last known state.
const NoticeConnectionError = "Connection error. Showing your last saved data."

const markReadTimeout = 10 * time.Second

// studentGateway is the slice of the backend client the session service
// depends on.
type studentGateway interface {
	FindStudent(ctx context.Context, phone string) (*models.Student, error)
	Login(ctx context.Context, req upstream.LoginRequest) (*models.Student, error)
	Register(ctx context.Context, req upstream.RegisterRequest) error
	Payments(ctx context.Context, phone string) ([]models.PaymentRecord, error)
	Exams(ctx context.Context, phone string) ([]models.ExamResult, error)
	Notifications(ctx context.Context, studentID string) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, notificationID string) error
	UpdateProfile(ctx context.Context, upd upstream.ProfileUpdate) error
}

// SessionView is everything a returning browser needs to paint the portal:
// the session itself plus the data that hangs off it. Notice is set when the
// view is served from a stale snapshot.
type SessionView struct {
	Session  models.Session         `json:"session"`
	Payments []models.PaymentRecord `json:"payments"`
	Exams    []models.ExamResult    `json:"exams"`
	Notice   string                 `json:"notice,omitempty"`
}

// LoginInput carries portal login credentials.
type LoginInput struct {
	Phone    string `json:"phone" validate:"required,min=6"`
	Password string `json:"password" validate:"required,min=6"`
}

// RegisterInput carries the new-account form.
type RegisterInput struct {
	Name        string `json:"name" validate:"required"`
	Phone       string `json:"phone" validate:"required,min=6"`
	DateOfBirth string `json:"date_of_birth" validate:"required"`
	Address     string `json:"address" validate:"required"`
	Password    string `json:"password" validate:"required,min=6"`
}

// SessionService owns the lifecycle of a portal session: restoring it on
// page load, refreshing it against the backend, and tearing it down.
type SessionService struct {
	store    session.Store
	upstream studentGateway
	validate *validator.Validate
	logger   *zap.Logger
}

func NewSessionService(store session.Store, gateway studentGateway, logger *zap.Logger) *SessionService {
	return &SessionService{
		store:    store,
		upstream: gateway,
		validate: validator.New(),
		logger:   logger,
	}
}

// Restore rebuilds the portal view for a returning session. An absent record
// yields an empty guest view. A corrupt student snapshot is discarded while
// the phone is kept, then the record is refreshed against the backend. The
// backend is consulted exactly once per call.
func (s *SessionService) Restore(ctx context.Context, sessionID string) (*SessionView, error) {
	rec, err := s.store.Load(ctx, sessionID)
	if errors.Is(err, session.ErrNotFound) {
		return &SessionView{Session: models.Session{}}, nil
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "session load failed")
	}
	if rec.Phone == "" {
		return &SessionView{Session: models.Session{}}, nil
	}
	stale := s.decodeSession(rec)
	return s.refresh(ctx, sessionID, stale)
}

// Refresh revalidates a session against the backend and returns the fresh
// view. A definitive not-found invalidates the session; a transport failure
// preserves it and serves the stale snapshot with a notice.
func (s *SessionService) Refresh(ctx context.Context, sessionID string) (*SessionView, error) {
	rec, err := s.store.Load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, appErrors.ErrSessionExpired
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "session load failed")
	}
	if rec.Phone == "" {
		return nil, appErrors.ErrSessionExpired
	}
	return s.refresh(ctx, sessionID, s.decodeSession(rec))
}

func (s *SessionService) refresh(ctx context.Context, sessionID string, stale models.Session) (*SessionView, error) {
	student, err := s.upstream.FindStudent(ctx, stale.Phone)
	if err != nil {
		if errors.Is(err, upstream.ErrNotFound) {
			if delErr := s.store.Delete(ctx, sessionID); delErr != nil {
				s.logger.Warn("failed to clear invalidated session", zap.Error(delErr))
			}
			return nil, appErrors.ErrSessionExpired
		}
		s.logger.Warn("student refresh unreachable, serving stale session",
			zap.String("session_id", sessionID), zap.Error(err))
		return &SessionView{
			Session:  stale,
			Payments: []models.PaymentRecord{},
			Exams:    []models.ExamResult{},
			Notice:   NoticeConnectionError,
		}, nil
	}

	if err := s.persist(ctx, sessionID, stale.Phone, student); err != nil {
		return nil, err
	}

	view := &SessionView{Session: models.Session{Phone: stale.Phone, StudentSnapshot: student}}
	s.loadPortalData(ctx, view)
	return view, nil
}

// loadPortalData fetches payments and exams concurrently. Either fetch
// failing degrades that list to empty without failing the view.
func (s *SessionService) loadPortalData(ctx context.Context, view *SessionView) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		payments, err := s.upstream.Payments(ctx, view.Session.Phone)
		if err != nil {
			s.logger.Warn("payments fetch failed", zap.Error(err))
			payments = nil
		}
		if payments == nil {
			payments = []models.PaymentRecord{}
		}
		view.Payments = payments
	}()
	go func() {
		defer wg.Done()
		exams, err := s.upstream.Exams(ctx, view.Session.Phone)
		if err != nil {
			s.logger.Warn("exams fetch failed", zap.Error(err))
			exams = nil
		}
		if exams == nil {
			exams = []models.ExamResult{}
		}
		view.Exams = exams
	}()
	wg.Wait()
}

// Lookup finds a student by phone during the guest search flow.
func (s *SessionService) Lookup(ctx context.Context, phone string) (*models.Student, error) {
	if phone == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "phone is required")
	}
	student, err := s.upstream.FindStudent(ctx, phone)
	if err != nil {
		if errors.Is(err, upstream.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "No account found for this phone number")
		}
		return nil, s.mapUpstreamErr(err)
	}
	return student, nil
}

// Login authenticates a phone/password pair and binds the result to the
// session, returning the full portal view.
func (s *SessionService) Login(ctx context.Context, sessionID string, input LoginInput) (*SessionView, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}
	student, err := s.upstream.Login(ctx, upstream.LoginRequest{Phone: input.Phone, Password: input.Password})
	if err != nil {
		return nil, s.mapUpstreamErr(err)
	}
	if err := s.persist(ctx, sessionID, input.Phone, student); err != nil {
		return nil, err
	}
	view := &SessionView{Session: models.Session{Phone: input.Phone, StudentSnapshot: student}}
	s.loadPortalData(ctx, view)
	return view, nil
}

// Register creates a new student account upstream and binds it to the
// session: the phone is persisted first, then a refresh pulls the fresh
// snapshot so the dashboard resolves without a separate login.
func (s *SessionService) Register(ctx context.Context, sessionID string, input RegisterInput) (*SessionView, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}
	err := s.upstream.Register(ctx, upstream.RegisterRequest{
		Name:        input.Name,
		Phone:       input.Phone,
		DateOfBirth: input.DateOfBirth,
		Address:     input.Address,
		Password:    input.Password,
	})
	if err != nil {
		return nil, s.mapUpstreamErr(err)
	}
	if err := s.store.Save(ctx, sessionID, session.Record{Phone: input.Phone}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "session save failed")
	}
	return s.refresh(ctx, sessionID, models.Session{Phone: input.Phone})
}

// Logout clears the session record.
func (s *SessionService) Logout(ctx context.Context, sessionID string) error {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "logout failed")
	}
	return nil
}

// Current returns the session as stored, without consulting the backend.
func (s *SessionService) Current(ctx context.Context, sessionID string) (models.Session, error) {
	rec, err := s.store.Load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return models.Session{}, appErrors.ErrSessionExpired
		}
		return models.Session{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "session load failed")
	}
	sess := s.decodeSession(rec)
	if !sess.Authenticated() {
		return models.Session{}, appErrors.ErrSessionExpired
	}
	return sess, nil
}

// Exams lists the logged-in student's released exam results.
func (s *SessionService) Exams(ctx context.Context, sessionID string) ([]models.ExamResult, error) {
	sess, err := s.Current(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	exams, err := s.upstream.Exams(ctx, sess.Phone)
	if err != nil {
		return nil, s.mapUpstreamErr(err)
	}
	if exams == nil {
		exams = []models.ExamResult{}
	}
	return exams, nil
}

// Notifications lists the logged-in student's notifications.
func (s *SessionService) Notifications(ctx context.Context, sessionID string) ([]models.Notification, error) {
	sess, err := s.Current(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	items, err := s.upstream.Notifications(ctx, sess.StudentSnapshot.ID.String())
	if err != nil {
		return nil, s.mapUpstreamErr(err)
	}
	if items == nil {
		items = []models.Notification{}
	}
	return items, nil
}

// MarkNotificationRead flips the read flag in the background. The caller
// gets an immediate acknowledgement; failures are logged only, since the
// next notification poll reconciles the flag anyway.
func (s *SessionService) MarkNotificationRead(ctx context.Context, sessionID, notificationID string) error {
	if _, err := s.Current(ctx, sessionID); err != nil {
		return err
	}
	go func() {
		bg, cancel := context.WithTimeout(context.Background(), markReadTimeout)
		defer cancel()
		if err := s.upstream.MarkNotificationRead(bg, notificationID); err != nil {
			s.logger.Warn("mark notification read failed",
				zap.String("notification_id", notificationID), zap.Error(err))
		}
	}()
	return nil
}

// ProfileInput carries an account settings change. Password fields must be
// provided together or not at all.
type ProfileInput struct {
	Name        string `json:"name" validate:"required"`
	Address     string `json:"address" validate:"required"`
	OldPassword string `json:"old_password" validate:"required_with=NewPassword"`
	NewPassword string `json:"new_password" validate:"omitempty,min=6"`
}

// UpdateProfile pushes an account change to the backend and refreshes the
// stored snapshot so the portal reflects it immediately.
func (s *SessionService) UpdateProfile(ctx context.Context, sessionID string, input ProfileInput, imageName string, image io.Reader) (*SessionView, error) {
	sess, err := s.Current(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}
	err = s.upstream.UpdateProfile(ctx, upstream.ProfileUpdate{
		StudentID:     sess.StudentSnapshot.ID.String(),
		Name:          input.Name,
		Address:       input.Address,
		OldPassword:   input.OldPassword,
		NewPassword:   input.NewPassword,
		ImageFilename: imageName,
		Image:         image,
	})
	if err != nil {
		return nil, s.mapUpstreamErr(err)
	}
	return s.refresh(ctx, sessionID, sess)
}

// persist writes the phone and the refreshed snapshot as one atomic record.
func (s *SessionService) persist(ctx context.Context, sessionID, phone string, student *models.Student) error {
	snapshot, err := json.Marshal(student)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "snapshot encode failed")
	}
	if err := s.store.Save(ctx, sessionID, session.Record{Phone: phone, Snapshot: snapshot}); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "session save failed")
	}
	return nil
}

// decodeSession rebuilds a Session from a stored record. An unparseable or
// id-less snapshot is dropped so the record heals on the next save.
func (s *SessionService) decodeSession(rec session.Record) models.Session {
	sess := models.Session{Phone: rec.Phone}
	if len(rec.Snapshot) == 0 {
		return sess
	}
	var student models.Student
	if err := json.Unmarshal(rec.Snapshot, &student); err != nil || !student.Valid() {
		s.logger.Warn("discarding unreadable session snapshot", zap.Error(err))
		return sess
	}
	sess.StudentSnapshot = &student
	return sess
}

// mapUpstreamErr converts backend client errors into portal errors,
// preserving backend validation messages.
func (s *SessionService) mapUpstreamErr(err error) error {
	var statusErr *upstream.StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusUnauthorized:
			return appErrors.Clone(appErrors.ErrUnauthorized, statusErr.Message)
		case statusErr.StatusCode >= 400 && statusErr.StatusCode < 500:
			return appErrors.Clone(appErrors.ErrValidation, statusErr.Message)
		}
	}
	return appErrors.Wrap(err, appErrors.ErrUpstreamUnreachable.Code, appErrors.ErrUpstreamUnreachable.Status, appErrors.ErrUpstreamUnreachable.Message)
}
