package reservation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOverlaps(t *testing.T) {
	at := func(h int) time.Time { return time.Date(2030, 1, 1, h, 0, 0, 0, time.UTC) }

	cases := []struct {
		name       string
		start, end int
		want       bool
	}{
		{"same window", 10, 12, true},
		{"tail overlap", 11, 13, true},
		{"back to back", 12, 13, false},
		{"ends at start", 8, 10, false},
		{"contains", 9, 14, true},
		{"inside", 10, 11, true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Overlaps(at(10), at(12), at(tc.start), at(tc.end)), tc.name)
	}
}

func TestValidateWindow(t *testing.T) {
	now := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	start := now.Add(time.Hour)

	assert.NoError(t, ValidateWindow(start, start.Add(time.Hour), now))
	assert.ErrorIs(t, ValidateWindow(start, start, now), ErrInvalidTimeRange)
	assert.ErrorIs(t, ValidateWindow(start, start.Add(-time.Minute), now), ErrInvalidTimeRange)
	assert.ErrorIs(t, ValidateWindow(time.Time{}, start, now), ErrInvalidTimeRange)
	assert.ErrorIs(t, ValidateWindow(now.Add(-time.Minute), start, now), ErrStartInPast)
}
