package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeStringFromString(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    TimeString
		wantErr bool
	}{
		{name: "hh:mm", in: "08:00", want: "08:00"},
		{name: "single digit hour", in: "8:05", want: "08:05"},
		{name: "postgres time", in: "21:30:00", want: "21:30"},
		{name: "end of day", in: "24:00", want: "24:00"},
		{name: "past end of day", in: "24:01", wantErr: true},
		{name: "non-zero seconds", in: "10:00:15", wantErr: true},
		{name: "garbage", in: "ten", wantErr: true},
		{name: "empty", in: "", wantErr: true},
		{name: "single digit minutes", in: "10:5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewTimeStringFromString(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidTimeString)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeString_On(t *testing.T) {
	loc := time.FixedZone("club", 3*60*60)
	date := time.Date(2026, 3, 14, 0, 0, 0, 0, loc)

	got, err := TimeString("08:30").On(date, loc)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2026, 3, 14, 8, 30, 0, 0, loc)))

	got, err = TimeString("24:00").On(date, loc)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2026, 3, 15, 0, 0, 0, 0, loc)))
}

func TestTimeString_Scan(t *testing.T) {
	var ts TimeString

	require.NoError(t, ts.Scan([]byte("07:00:00")))
	assert.Equal(t, TimeString("07:00"), ts)

	require.NoError(t, ts.Scan(time.Date(0, 1, 1, 22, 15, 0, 0, time.UTC)))
	assert.Equal(t, TimeString("22:15"), ts)

	assert.Error(t, ts.Scan(42))
}
