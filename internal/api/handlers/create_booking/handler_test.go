package create_booking

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ClubBooking/internal/api/middleware"
	createBooking "github.com/m04kA/SMC-ClubBooking/internal/usecase/create_booking"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeUseCase struct {
	got  *createBooking.Request
	resp *createBooking.Response
	err  error
}

func (f *fakeUseCase) Execute(_ context.Context, req *createBooking.Request) (*createBooking.Response, error) {
	f.got = req
	return f.resp, f.err
}

const validBody = `{"facilityId":1,"startTime":"2026-05-04T09:00:00+03:00","endTime":"2026-05-04T10:00:00+03:00","notes":"doubles"}`

func newRequest(body string, userID int64) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	if userID > 0 {
		req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	}
	return req
}

func TestHandle_Created(t *testing.T) {
	start := time.Date(2026, 5, 4, 6, 0, 0, 0, time.UTC)
	uc := &fakeUseCase{resp: &createBooking.Response{
		ID:         10,
		UserID:     1,
		FacilityID: 1,
		StartTime:  start,
		EndTime:    start.Add(time.Hour),
		Status:     "confirmed",
	}}
	h := NewHandler(uc, nopLogger{})

	rec := httptest.NewRecorder()
	h.Handle(rec, newRequest(validBody, 1))

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, uc.got)
	assert.Equal(t, int64(1), uc.got.UserID)
	assert.True(t, uc.got.StartTime.Equal(start))
	require.NotNil(t, uc.got.Notes)
	assert.Equal(t, "doubles", *uc.got.Notes)

	var body BookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(10), body.ID)
	assert.Equal(t, "confirmed", body.Status)
	assert.Equal(t, "2026-05-04T06:00:00Z", body.StartTime)
}

func TestHandle_RequestErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		userID int64
		status int
	}{
		{name: "no user", body: validBody, status: http.StatusUnauthorized},
		{name: "broken json", body: `{"facilityId":`, userID: 1, status: http.StatusBadRequest},
		{name: "unknown field", body: `{"facilityId":1,"userId":2}`, userID: 1, status: http.StatusBadRequest},
		{name: "bad time", body: `{"facilityId":1,"startTime":"09:00","endTime":"10:00"}`, userID: 1, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &fakeUseCase{}
			rec := httptest.NewRecorder()

			NewHandler(uc, nopLogger{}).Handle(rec, newRequest(tt.body, tt.userID))

			assert.Equal(t, tt.status, rec.Code)
			assert.Nil(t, uc.got)
		})
	}
}

func TestHandle_MapsUseCaseErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{err: createBooking.ErrInvalidInput, status: http.StatusBadRequest},
		{err: createBooking.ErrMembershipRequired, status: http.StatusForbidden},
		{err: createBooking.ErrEntitlementDenied, status: http.StatusForbidden},
		{err: createBooking.ErrConflict, status: http.StatusConflict},
		{err: createBooking.ErrBusy, status: http.StatusConflict},
		{err: createBooking.ErrFacilityUnavailable, status: http.StatusUnprocessableEntity},
		{err: createBooking.ErrDailyLimitExceeded, status: http.StatusUnprocessableEntity},
		{err: createBooking.ErrAdvanceWindowExceeded, status: http.StatusUnprocessableEntity},
		{err: createBooking.ErrInternal, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			uc := &fakeUseCase{err: fmt.Errorf("%w: detail", tt.err)}
			rec := httptest.NewRecorder()

			NewHandler(uc, nopLogger{}).Handle(rec, newRequest(validBody, 1))

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestHandle_ExplainsFailedRule(t *testing.T) {
	uc := &fakeUseCase{err: fmt.Errorf("%w: booking duration must be exactly 60 minutes", createBooking.ErrFacilityUnavailable)}
	rec := httptest.NewRecorder()

	NewHandler(uc, nopLogger{}).Handle(rec, newRequest(validBody, 1))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body struct {
		Error   string `json:"error"`
		Details string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, msgFacilityUnavailable, body.Error)
	assert.Equal(t, "booking duration must be exactly 60 minutes", body.Details)
}

type recordingLogger struct {
	nopLogger
	errors []string
}

func (l *recordingLogger) Error(format string, v ...interface{}) {
	l.errors = append(l.errors, fmt.Sprintf(format, v...))
}

func TestHandle_InternalErrorLogsRequestID(t *testing.T) {
	const requestID = "5f0c6a43-8f3e-4a6b-9a53-2d1c0b7e4f11"

	log := &recordingLogger{}
	h := NewHandler(&fakeUseCase{err: createBooking.ErrInternal}, log)
	handler := middleware.Logging(nopLogger{})(http.HandlerFunc(h.Handle))

	req := newRequest(validBody, 1)
	req.Header.Set(middleware.RequestIDHeader, requestID)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Len(t, log.errors, 1)
	assert.Contains(t, log.errors[0], "request_id="+requestID)
}

func TestHandle_CancelledRequestIsNotInternal(t *testing.T) {
	log := &recordingLogger{}
	h := NewHandler(&fakeUseCase{err: fmt.Errorf("%w: %v", createBooking.ErrBusy, context.Canceled)}, log)

	rec := httptest.NewRecorder()
	h.Handle(rec, newRequest(validBody, 1))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Empty(t, log.errors)
}
