package update_booking

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ClubBooking/internal/api/middleware"
	"github.com/m04kA/SMC-ClubBooking/internal/service/bookings"
	"github.com/m04kA/SMC-ClubBooking/internal/service/bookings/models"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeService struct {
	got *models.UpdateBookingRequest
	err error
}

func (f *fakeService) UpdateBooking(_ context.Context, bookingID int64, req *models.UpdateBookingRequest) (*models.BookingResponse, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.BookingResponse{ID: bookingID}, nil
}

func patch(svc BookingService, body string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/bookings/{bookingId}", NewHandler(svc, nopLogger{}).Handle)

	req := httptest.NewRequest(http.MethodPatch, "/bookings/4", strings.NewReader(body))
	req = req.WithContext(middleware.WithUserID(req.Context(), 1))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandle_ForwardsRawFields(t *testing.T) {
	svc := &fakeService{}
	rec := patch(svc, `{"notes":"bring rackets","totalCost":1500}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.got)
	assert.Equal(t, int64(1), svc.got.UserID)
	assert.JSONEq(t, `"bring rackets"`, string(svc.got.Fields["notes"]))
	assert.JSONEq(t, `1500`, string(svc.got.Fields["totalCost"]))
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{name: "not an object", body: `["notes"]`, status: http.StatusBadRequest},
		{name: "not found", body: `{"notes":"x"}`, err: bookings.ErrBookingNotFound, status: http.StatusNotFound},
		{name: "member sets cost", body: `{"totalCost":1}`, err: bookings.ErrAccessDenied, status: http.StatusForbidden},
		{name: "unknown field", body: `{"startTime":"x"}`, err: bookings.ErrInvalidInput, status: http.StatusBadRequest},
		{name: "internal", body: `{"notes":"x"}`, err: bookings.ErrInternal, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			if tt.err != nil {
				err = fmt.Errorf("%w: detail", tt.err)
			}
			assert.Equal(t, tt.status, patch(&fakeService{err: err}, tt.body).Code)
		})
	}
}
