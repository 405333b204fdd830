package reservation

import "time"

// ValidateWindow checks that [start, end) is a non-empty interval that has not
// started yet.
func ValidateWindow(start, end, now time.Time) error {
	if start.IsZero() || end.IsZero() || !start.Before(end) {
		return ErrInvalidTimeRange
	}
	if start.Before(now) {
		return ErrStartInPast
	}
	return nil
}

// Overlaps reports whether two half-open intervals share an instant.
// Back-to-back intervals do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}
