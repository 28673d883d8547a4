package availability

import "time"

// EarliestStart is the first instant a slot may start given the minimum notice.
func (c Constraints) EarliestStart(now time.Time) time.Time {
	return now.Add(time.Duration(c.MinimumNoticeHours) * time.Hour)
}

// Conflicts reports whether [start, end) intersects a busy interval widened by
// the buffer on both sides. It always returns false when overlap prevention is off.
func (c Constraints) Conflicts(start, end time.Time, busy []Interval) bool {
	if !c.PreventOverlap {
		return false
	}
	buffer := time.Duration(c.BufferMinutes) * time.Minute
	for _, b := range busy {
		if start.Before(b.End.Add(buffer)) && end.After(b.Start.Add(-buffer)) {
			return true
		}
	}
	return false
}

// MarkUnavailable flags slots that start before the minimum notice has elapsed
// or that collide with busy periods. Slots stay in the grid so callers can show
// them as taken.
func MarkUnavailable(slots []TimeSlot, now time.Time, c Constraints, busy []Interval) []TimeSlot {
	earliest := c.EarliestStart(now)
	for i := range slots {
		s := &slots[i]
		if s.StartAt.Before(earliest) || c.Conflicts(s.StartAt, s.EndAt, busy) {
			s.IsAvailable = false
		}
	}
	return slots
}
