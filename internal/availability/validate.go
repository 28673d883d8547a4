package availability

import "fmt"

// Validate checks the logical rules of a settings document.
// Ranges within one day are not checked against each other.
func Validate(s Settings) error {
	if _, err := s.Location(); err != nil {
		return err
	}
	if s.MinimumNoticeHours < 0 {
		return ErrInvalidNotice
	}
	if s.BufferMinutes < 0 {
		return ErrInvalidBuffer
	}

	for day, da := range s.Template {
		if !day.Valid() {
			return ErrInvalidWeekday
		}
		for _, r := range da.Slots {
			if err := validateRange(r); err != nil {
				return fmt.Errorf("%s: %w", day, err)
			}
		}
	}
	return nil
}

func validateRange(r TimeRange) error {
	start, err := ParseClock(r.Start)
	if err != nil {
		return ErrInvalidTimeRange
	}
	end, err := ParseClock(r.End)
	if err != nil {
		return ErrInvalidTimeRange
	}
	if start >= end {
		return ErrInvalidTimeRange
	}
	return nil
}
