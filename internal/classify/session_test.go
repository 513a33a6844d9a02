package classify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/marketintel/decisiond/pkg/types"
)

func TestTradingSessionClassifier_Classify(t *testing.T) {
	c := NewTradingSessionClassifier("America/New_York")

	tests := []struct {
		name string
		time time.Time
		want types.TradingSession
	}{
		{
			name: "09:15 is the opening burst boundary",
			time: nyTime(t, 2026, time.March, 2, 9, 15, 0),
			want: types.SessionOpeningBurst,
		},
		{
			name: "09:59 is still opening burst",
			time: nyTime(t, 2026, time.March, 2, 9, 59, 0),
			want: types.SessionOpeningBurst,
		},
		{
			name: "10:00 rolls into midday consolidation",
			time: nyTime(t, 2026, time.March, 2, 10, 0, 0),
			want: types.SessionMiddayConsolidation,
		},
		{
			name: "14:59 is still midday consolidation",
			time: nyTime(t, 2026, time.March, 2, 14, 59, 0),
			want: types.SessionMiddayConsolidation,
		},
		{
			name: "15:00 is power hour",
			time: nyTime(t, 2026, time.March, 2, 15, 0, 0),
			want: types.SessionPowerHour,
		},
		{
			name: "15:30 rolls out of power hour",
			time: nyTime(t, 2026, time.March, 2, 15, 30, 0),
			want: types.SessionOffHours,
		},
		{
			name: "09:00 before open is off hours",
			time: nyTime(t, 2026, time.March, 2, 9, 0, 0),
			want: types.SessionOffHours,
		},
		{
			name: "Saturday is always off hours regardless of time",
			time: nyTime(t, 2026, time.February, 28, 10, 0, 0),
			want: types.SessionOffHours,
		},
		{
			name: "Sunday is always off hours regardless of time",
			time: nyTime(t, 2026, time.March, 1, 15, 0, 0),
			want: types.SessionOffHours,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.time))
		})
	}
}

func TestTradingSessionClassifier_FallsBackToUTCOnBadZone(t *testing.T) {
	c := NewTradingSessionClassifier("Not/A_Real_Zone")
	assert.Equal(t, time.UTC, c.Location)
}

func nyTime(t *testing.T, year int, month time.Month, day, hour, min, sec int) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.UTC
	}
	return time.Date(year, month, day, hour, min, sec, 0, loc)
}
