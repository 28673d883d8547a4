package availability

import (
	"fmt"
	"strings"
	"time"
)

// ParseClock parses a 24-hour "HH:MM" (or "HH:MM:SS") value into minutes after midnight.
func ParseClock(s string) (int, error) {
	s = strings.TrimSpace(s)
	layout := "15:04"
	if len(s) > 5 {
		layout = "15:04:05"
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", s, ErrInvalidClock)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// ParseDisplayTime accepts the slot labels produced by FormatDisplay in either
// convention ("2:00 PM", "02:00 pm", "14:00") and returns minutes after midnight.
func ParseDisplayTime(s string) (int, error) {
	v := strings.ToUpper(strings.Join(strings.Fields(s), " "))
	if v == "" {
		return 0, fmt.Errorf("parse display time %q: %w", s, ErrInvalidClock)
	}
	if strings.HasSuffix(v, "AM") || strings.HasSuffix(v, "PM") {
		if !strings.Contains(v, " ") {
			v = v[:len(v)-2] + " " + v[len(v)-2:]
		}
		t, err := time.Parse("3:04 PM", v)
		if err != nil {
			return 0, fmt.Errorf("parse display time %q: %w", s, ErrInvalidClock)
		}
		return t.Hour()*60 + t.Minute(), nil
	}
	return ParseClock(v)
}

// FormatDisplay renders an instant as a slot label.
func FormatDisplay(t time.Time, hour12 bool) string {
	if hour12 {
		return t.Format("3:04 PM")
	}
	return t.Format("15:04")
}

// FormatClock renders minutes after midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// At returns the instant on date's calendar day at the given wall-clock minute in loc.
func At(date time.Time, minutes int, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, minutes/60, minutes%60, 0, 0, loc)
}
