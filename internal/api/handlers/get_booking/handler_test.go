package get_booking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andmv/LDM-BookingService/internal/api/handlers"
	"github.com/andmv/LDM-BookingService/internal/api/middleware"
	"github.com/andmv/LDM-BookingService/internal/service/bookings"
	"github.com/andmv/LDM-BookingService/internal/service/bookings/models"
)

type mockService struct {
	booking    *models.BookingResponse
	err        error
	lastID     int64
	lastUserID int64
}

func (m *mockService) GetByID(_ context.Context, id int64, userID int64) (*models.BookingResponse, error) {
	m.lastID = id
	m.lastUserID = userID
	return m.booking, m.err
}

type noopLogger struct{}

func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}

func doRequest(t *testing.T, svc *mockService, url, userIDHeader string) *httptest.ResponseRecorder {
	t.Helper()

	h := NewHandler(svc, noopLogger{})
	r := mux.NewRouter()
	protected := r.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)
	protected.HandleFunc("/api/v1/bookings/{bookingId}", h.Handle).Methods(http.MethodGet)

	req := httptest.NewRequest(http.MethodGet, url, nil)
	if userIDHeader != "" {
		req.Header.Set(middleware.HeaderUserID, userIDHeader)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandle_ReturnsBooking(t *testing.T) {
	svc := &mockService{booking: &models.BookingResponse{ID: 42, CustomerID: 7, Status: "confirmed"}}

	rec := doRequest(t, svc, "/api/v1/bookings/42", "7")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(42), svc.lastID)
	assert.Equal(t, int64(7), svc.lastUserID)

	var body models.BookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(42), body.ID)
	assert.Equal(t, "confirmed", body.Status)
}

func TestHandle_RejectsBadBookingID(t *testing.T) {
	for _, id := range []string{"abc", "0", "-5"} {
		rec := doRequest(t, &mockService{}, "/api/v1/bookings/"+id, "7")
		assert.Equal(t, http.StatusBadRequest, rec.Code, id)
	}
}

func TestHandle_MissingUserHeader(t *testing.T) {
	rec := doRequest(t, &mockService{}, "/api/v1/bookings/42", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedMsg  string
	}{
		{"not found", bookings.ErrBookingNotFound, http.StatusNotFound, msgNotFound},
		{"access denied", bookings.ErrAccessDenied, http.StatusForbidden, msgForbidden},
		{"internal", bookings.ErrInternal, http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, &mockService{err: tt.err}, "/api/v1/bookings/42", "7")

			assert.Equal(t, tt.expectedCode, rec.Code)
			if tt.expectedMsg != "" {
				var body handlers.ErrorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, tt.expectedMsg, body.Error)
			}
		})
	}
}
