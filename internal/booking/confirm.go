package booking

import (
	"fmt"
	"time"

	"github.com/nekogravitycat/meeting-scheduler/internal/availability"
)

// Window is a concrete meeting time.
type Window struct {
	Start time.Time
	End   time.Time
}

// ISO returns both ends as RFC 3339 timestamps in UTC.
func (w Window) ISO() (start, end string) {
	return w.Start.UTC().Format(time.RFC3339), w.End.UTC().Format(time.RFC3339)
}

// ParseWindow parses an RFC 3339 start/end pair.
func ParseWindow(start, end string) (Window, error) {
	s, err := time.Parse(time.RFC3339, start)
	if err != nil {
		return Window{}, fmt.Errorf("start time %q: %w", start, ErrInvalidTime)
	}
	e, err := time.Parse(time.RFC3339, end)
	if err != nil {
		return Window{}, fmt.Errorf("end time %q: %w", end, ErrInvalidTime)
	}
	if !e.After(s) {
		return Window{}, ErrInvalidTimeRange
	}
	return Window{Start: s, End: e}, nil
}

// BuildConfirmation combines the calendar date with a slot label ("2:00 PM" or
// "14:00") in loc and extends it by the meeting duration.
func BuildConfirmation(date time.Time, slotStart string, durationMinutes int, loc *time.Location) (Window, error) {
	if durationMinutes <= 0 {
		return Window{}, ErrInvalidDuration
	}
	if loc == nil {
		loc = date.Location()
	}

	minutes, err := availability.ParseDisplayTime(slotStart)
	if err != nil {
		return Window{}, fmt.Errorf("slot %q: %w", slotStart, ErrInvalidTime)
	}

	start := availability.At(date, minutes, loc)
	end := start.Add(time.Duration(durationMinutes) * time.Minute)
	if date.IsZero() || !end.After(start) {
		return Window{}, ErrInvalidTime
	}
	return Window{Start: start, End: end}, nil
}
