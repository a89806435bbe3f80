package upstream

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/myanedu/portal-api/pkg/config"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := New(config.UpstreamConfig{BaseURL: server.URL, Timeout: 5 * time.Second}, zap.NewNop())
	return client, server
}

func TestFindStudentSuccess(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/students/search", r.URL.Path)
		assert.Equal(t, "0912345678", r.URL.Query().Get("phone"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id": 42, "name": "Aye Chan", "phone_primary": "0912345678"}`)
	}))

	student, err := client.FindStudent(context.Background(), "0912345678")
	require.NoError(t, err)
	assert.Equal(t, "42", student.ID.String())
	assert.Equal(t, "Aye Chan", student.Name)
}

func TestFindStudentNotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message": "Student not found"}`)
	}))

	_, err := client.FindStudent(context.Background(), "0000")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFindStudentMissingIDIsNotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"name": "ghost"}`)
	}))

	_, err := client.FindStudent(context.Background(), "0912345678")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFindStudentTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()
	client := New(config.UpstreamConfig{BaseURL: server.URL, Timeout: time.Second}, zap.NewNop())

	_, err := client.FindStudent(context.Background(), "0912345678")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestLoginSurfacesBackendMessage(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message": "Incorrect password"}`)
	}))

	_, err := client.Login(context.Background(), LoginRequest{Phone: "0912345678", Password: "wrong"})
	require.Error(t, err)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.Equal(t, "Incorrect password", statusErr.Message)
}

func TestPaymentsDecodesAndNormalizes(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[
			{"id": 7, "batch_id": "B1", "status": "verified", "amount": "45000", "transaction_id": "null"},
			{"id": 8, "batch_id": "B2", "status": "pending", "amount": 30000, "transaction_id": "TX-88"}
		]`)
	}))

	records, err := client.Payments(context.Background(), "0912345678")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "#7", records[0].DisplayID())
	assert.Equal(t, "TX-88", records[1].DisplayID())
}

func TestPaymentsNonListDefaultsEmpty(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"error": "oops"}`)
	}))

	records, err := client.Payments(context.Background(), "0912345678")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSubmitPaymentSendsMultipart(t *testing.T) {
	var gotFields map[string]string
	var gotFilename string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/students/payments", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotFields = map[string]string{}
		for key, values := range r.MultipartForm.Value {
			gotFields[key] = values[0]
		}
		file, header, err := r.FormFile("receipt_image")
		require.NoError(t, err)
		defer file.Close() //nolint:errcheck
		gotFilename = header.Filename
		w.WriteHeader(http.StatusCreated)
	}))

	err := client.SubmitPayment(context.Background(), PaymentSubmission{
		Phone:           "0912345678",
		BatchID:         "B1",
		Amount:          "45000",
		PaymentMethod:   "KPay",
		TransactionID:   "TX-1",
		ReceiptFilename: "proof.jpg",
		Receipt:         strings.NewReader("jpegbytes"),
	})
	require.NoError(t, err)
	assert.Equal(t, "0912345678", gotFields["phone"])
	assert.Equal(t, "B1", gotFields["batch_id"])
	assert.Equal(t, "KPay", gotFields["payment_method"])
	assert.Equal(t, "proof.jpg", gotFilename)
}

func TestUpdateProfileOmitsEmptyPasswordFields(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/students/profile/42", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.NotContains(t, r.MultipartForm.Value, "old_password")
		assert.NotContains(t, r.MultipartForm.Value, "new_password")
		assert.Equal(t, "New Name", r.MultipartForm.Value["name"][0])
	}))

	err := client.UpdateProfile(context.Background(), ProfileUpdate{
		StudentID: "42",
		Name:      "New Name",
		Address:   "Yangon",
	})
	require.NoError(t, err)
}

func TestMarkNotificationRead(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/students/notifications/n-9/read", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))

	require.NoError(t, client.MarkNotificationRead(context.Background(), "n-9"))
}

func TestObserverReportsRoundTrips(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[]`)
	}))

	var endpoint string
	var failed bool
	client.SetObserver(func(ep string, f bool, d time.Duration) {
		endpoint = ep
		failed = f
	})

	_, err := client.Payments(context.Background(), "0912345678")
	require.NoError(t, err)
	assert.Equal(t, "/students/payments", endpoint)
	assert.False(t, failed)

	broken := New(config.UpstreamConfig{BaseURL: "http://127.0.0.1:1", Timeout: time.Second}, zap.NewNop())
	broken.SetObserver(func(ep string, f bool, d time.Duration) { failed = f })
	_, err = broken.Payments(context.Background(), "0912345678")
	require.Error(t, err)
	assert.True(t, failed)
}
