package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/myanedu/portal-api/internal/models"
	"github.com/myanedu/portal-api/pkg/config"
)

// ErrNotFound reports a definitive negative answer from the backend, as
// opposed to a transport failure. Callers must treat the two differently:
// not-found invalidates a session, a transport failure never does.
var ErrNotFound = errors.New("upstream: resource not found")

// StatusError carries a non-2xx backend response with its user-facing
// message, surfaced verbatim for validation failures.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.StatusCode, e.Message)
}

// CallObserver receives one backend round trip for instrumentation.
type CallObserver func(endpoint string, failed bool, duration time.Duration)

// Client is the typed HTTP client for the remote admin backend. It owns all
// defensive decoding: identity-field checks on records, list-or-empty
// defaulting, and optional-field normalisation.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
	observe CallObserver
}

// New constructs a Client from configuration.
func New(cfg config.UpstreamConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

// SetObserver installs the round-trip instrumentation hook.
func (c *Client) SetObserver(observer CallObserver) {
	c.observe = observer
}

// do executes the request and reports the round trip to the observer.
func (c *Client) do(req *http.Request, endpoint string) (*http.Response, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if c.observe != nil {
		c.observe(endpoint, err != nil, time.Since(start))
	}
	return resp, err
}

// FindStudent looks a student up by phone. Returns ErrNotFound when the
// backend reports no such student.
func (c *Client) FindStudent(ctx context.Context, phone string) (*models.Student, error) {
	var student models.Student
	query := url.Values{"phone": {phone}}
	if err := c.getJSON(ctx, "/students/search", query, &student); err != nil {
		return nil, err
	}
	if !student.Valid() {
		return nil, fmt.Errorf("student record missing id: %w", ErrNotFound)
	}
	return &student, nil
}

// LoginRequest carries guest login credentials, passed through verbatim.
type LoginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// Login authenticates against the backend and returns the student record.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*models.Student, error) {
	var body struct {
		User    models.Student `json:"user"`
		Message string         `json:"message"`
	}
	if err := c.postJSON(ctx, "/public/login", req, &body); err != nil {
		return nil, err
	}
	if !body.User.Valid() {
		return nil, &StatusError{StatusCode: http.StatusUnauthorized, Message: "Login failed"}
	}
	return &body.User, nil
}

// RegisterRequest carries the new-student registration payload.
type RegisterRequest struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	DateOfBirth string `json:"date_of_birth"`
	Address     string `json:"address"`
	Password    string `json:"password"`
}

// Register creates a student account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	var body struct {
		Message string `json:"message"`
	}
	return c.postJSON(ctx, "/public/register", req, &body)
}

// Payments returns the payment records for a phone, empty when the response
// is not a valid list.
func (c *Client) Payments(ctx context.Context, phone string) ([]models.PaymentRecord, error) {
	var records []models.PaymentRecord
	query := url.Values{"phone": {phone}}
	if err := c.getList(ctx, "/students/payments", query, &records); err != nil {
		return nil, err
	}
	for i := range records {
		records[i].Normalize()
	}
	return records, nil
}

// Exams returns released exam results for a phone.
func (c *Client) Exams(ctx context.Context, phone string) ([]models.ExamResult, error) {
	var results []models.ExamResult
	query := url.Values{"phone": {phone}}
	if err := c.getList(ctx, "/students/exams", query, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// ActiveBatches lists batches currently accepting enrollment payments.
func (c *Client) ActiveBatches(ctx context.Context) ([]models.Batch, error) {
	var batches []models.Batch
	if err := c.getList(ctx, "/students/active-batches", nil, &batches); err != nil {
		return nil, err
	}
	return batches, nil
}

// PromotedCourses lists the guest landing page promotions.
func (c *Client) PromotedCourses(ctx context.Context) ([]models.PromotedCourse, error) {
	var courses []models.PromotedCourse
	if err := c.getList(ctx, "/public/promo-courses", nil, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// Instructors lists public teacher profiles.
func (c *Client) Instructors(ctx context.Context) ([]models.Instructor, error) {
	var instructors []models.Instructor
	if err := c.getList(ctx, "/public/instructors", nil, &instructors); err != nil {
		return nil, err
	}
	return instructors, nil
}

// Lessons lists the lessons of one batch.
func (c *Client) Lessons(ctx context.Context, batchID string) ([]models.Lesson, error) {
	var lessons []models.Lesson
	query := url.Values{"batch_id": {batchID}}
	if err := c.getList(ctx, "/public/lessons", query, &lessons); err != nil {
		return nil, err
	}
	return lessons, nil
}

// Comments lists the discussion under one lesson.
func (c *Client) Comments(ctx context.Context, lessonID string) ([]models.Comment, error) {
	var comments []models.Comment
	query := url.Values{"lesson_id": {lessonID}}
	if err := c.getList(ctx, "/public/comments", query, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// CommentRequest carries a new discussion message.
type CommentRequest struct {
	LessonID string `json:"lesson_id"`
	UserName string `json:"user_name"`
	Message  string `json:"message"`
}

// PostComment submits a discussion message.
func (c *Client) PostComment(ctx context.Context, req CommentRequest) error {
	var body struct {
		Message string `json:"message"`
	}
	return c.postJSON(ctx, "/students/comments", req, &body)
}

// PaymentSubmission carries a payment proof upload.
type PaymentSubmission struct {
	Phone           string
	BatchID         string
	Amount          string
	PaymentMethod   string
	TransactionID   string
	ReceiptFilename string
	Receipt         io.Reader
}

// SubmitPayment uploads a payment proof as multipart form data.
func (c *Client) SubmitPayment(ctx context.Context, sub PaymentSubmission) error {
	fields := map[string]string{
		"phone":          sub.Phone,
		"batch_id":       sub.BatchID,
		"amount":         sub.Amount,
		"payment_method": sub.PaymentMethod,
		"transaction_id": sub.TransactionID,
	}
	return c.postMultipart(ctx, http.MethodPost, "/students/payments", fields, "receipt_image", sub.ReceiptFilename, sub.Receipt)
}

// ProfileUpdate carries an account settings change. Password fields and the
// image are optional.
type ProfileUpdate struct {
	StudentID     string
	Name          string
	Address       string
	OldPassword   string
	NewPassword   string
	ImageFilename string
	Image         io.Reader
}

// UpdateProfile updates name/address and optionally password and picture.
func (c *Client) UpdateProfile(ctx context.Context, upd ProfileUpdate) error {
	fields := map[string]string{
		"name":    upd.Name,
		"address": upd.Address,
	}
	if upd.OldPassword != "" {
		fields["old_password"] = upd.OldPassword
	}
	if upd.NewPassword != "" {
		fields["new_password"] = upd.NewPassword
	}
	path := fmt.Sprintf("/students/profile/%s", url.PathEscape(upd.StudentID))
	return c.postMultipart(ctx, http.MethodPut, path, fields, "profile_image", upd.ImageFilename, upd.Image)
}

// Notifications lists a student's notifications.
func (c *Client) Notifications(ctx context.Context, studentID string) ([]models.Notification, error) {
	var items []models.Notification
	path := fmt.Sprintf("/students/%s/notifications", url.PathEscape(studentID))
	if err := c.getList(ctx, path, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// MarkNotificationRead flips one notification's read flag.
func (c *Client) MarkNotificationRead(ctx context.Context, notificationID string) error {
	path := fmt.Sprintf("/students/notifications/%s/read", url.PathEscape(notificationID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.do(req, "/students/notifications/:id/read")
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	return c.checkStatus(resp)
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.do(req, path)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if err := c.checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// getList decodes a JSON array, substituting an empty list when the payload
// is not actually a list. Transport and HTTP errors still propagate.
func (c *Client) getList(ctx context.Context, path string, query url.Values, out interface{}) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")
	resp, err := c.do(req, path)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if err := c.checkStatus(resp); err != nil {
		return err
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		c.logger.Sugar().Warnw("upstream returned non-list payload, defaulting to empty", "path", path)
		return nil
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		c.logger.Sugar().Warnw("upstream list failed to decode, defaulting to empty", "path", path, "error", err)
		return nil
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, in, out interface{}) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.do(req, path)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if err := c.checkStatus(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) postMultipart(ctx context.Context, method, path string, fields map[string]string, fileField, filename string, file io.Reader) error {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return fmt.Errorf("write form field %s: %w", key, err)
		}
	}
	if file != nil {
		part, err := writer.CreateFormFile(fileField, filename)
		if err != nil {
			return fmt.Errorf("create form file: %w", err)
		}
		if _, err := io.Copy(part, file); err != nil {
			return fmt.Errorf("copy upload: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, buf)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := c.do(req, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", strings.ToLower(method), path, err)
	}
	defer resp.Body.Close() //nolint:errcheck
	return c.checkStatus(resp)
}

// checkStatus maps non-2xx responses onto ErrNotFound or StatusError,
// extracting the backend's message field when present.
func (c *Client) checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	message := readErrorMessage(resp.Body)
	if resp.StatusCode == http.StatusNotFound {
		if message == "" {
			return ErrNotFound
		}
		return fmt.Errorf("%s: %w", message, ErrNotFound)
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}
	return &StatusError{StatusCode: resp.StatusCode, Message: message}
}

func readErrorMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 1<<16))
	if err != nil {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.Message)
}
