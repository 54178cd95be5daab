package get_available_slots

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	getAvailableSlots "github.com/m04kA/SMC-ClubBooking/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-ClubBooking/pkg/types"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeUseCase struct {
	got  *getAvailableSlots.Request
	resp *getAvailableSlots.Response
	err  error
}

func (f *fakeUseCase) Execute(_ context.Context, req *getAvailableSlots.Request) (*getAvailableSlots.Response, error) {
	f.got = req
	return f.resp, f.err
}

func serve(uc GetAvailableSlotsUseCase, target string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/facilities/{facilityId}/available-slots", NewHandler(uc, nopLogger{}).Handle)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandle_ReturnsSlots(t *testing.T) {
	date := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	uc := &fakeUseCase{resp: &getAvailableSlots.Response{
		Date: date,
		Facility: getAvailableSlots.FacilityInfo{
			ID:              1,
			DurationMinutes: 60,
			HoursStart:      types.TimeString("08:00"),
			HoursEnd:        types.TimeString("10:00"),
		},
		Slots: []getAvailableSlots.Slot{
			{StartTime: date.Add(8 * time.Hour), EndTime: date.Add(9 * time.Hour), Available: true},
			{StartTime: date.Add(9 * time.Hour), EndTime: date.Add(10 * time.Hour), Available: false},
		},
	}}

	rec := serve(uc, "/facilities/1/available-slots?date=2026-05-04")

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, uc.got)
	assert.Equal(t, int64(1), uc.got.FacilityID)

	var body AvailableSlotsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "2026-05-04", body.Date)
	assert.Equal(t, 60, body.Facility.DurationMinutes)
	assert.Equal(t, "08:00", body.Facility.HoursStart)
	require.Len(t, body.Slots, 2)
	assert.Equal(t, "2026-05-04T08:00:00Z", body.Slots[0].StartTime)
	assert.True(t, body.Slots[0].Available)
	assert.False(t, body.Slots[1].Available)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		err    error
		status int
	}{
		{name: "bad facility id", target: "/facilities/abc/available-slots?date=2026-05-04", status: http.StatusBadRequest},
		{name: "missing date", target: "/facilities/1/available-slots", status: http.StatusBadRequest},
		{name: "bad date", target: "/facilities/1/available-slots?date=04.05.2026", status: http.StatusBadRequest},
		{name: "not found", target: "/facilities/9/available-slots?date=2026-05-04", err: getAvailableSlots.ErrFacilityNotFound, status: http.StatusNotFound},
		{name: "bad config", target: "/facilities/1/available-slots?date=2026-05-04", err: getAvailableSlots.ErrInvalidFacilityConfig, status: http.StatusUnprocessableEntity},
		{name: "internal", target: "/facilities/1/available-slots?date=2026-05-04", err: getAvailableSlots.ErrInternal, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(&fakeUseCase{err: tt.err}, tt.target)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
