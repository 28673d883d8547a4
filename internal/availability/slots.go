package availability

import (
	"fmt"
	"sort"
	"time"
)

// DefaultStride is the spacing between offered start times. Slots are offered
// on a uniform half-hour grid regardless of meeting duration.
const DefaultStride = 30 * time.Minute

// TimeSlot is a bookable window derived from the template for one date.
// Start and End are display labels; StartAt and EndAt are the instants they denote.
type TimeSlot struct {
	Start       string
	End         string
	IsAvailable bool
	StartAt     time.Time
	EndAt       time.Time
}

type generateOptions struct {
	stride    time.Duration
	allRanges bool
	loc       *time.Location
	hour12    bool
}

// GenerateOption customises GenerateTimeSlots.
type GenerateOption func(*generateOptions)

// WithStride overrides the 30 minute grid.
func WithStride(d time.Duration) GenerateOption {
	return func(o *generateOptions) {
		if d > 0 {
			o.stride = d
		}
	}
}

// WithAllRanges generates slots across every range of the day instead of only the first.
func WithAllRanges(enabled bool) GenerateOption {
	return func(o *generateOptions) { o.allRanges = enabled }
}

// WithLocation builds slot instants in loc (the owner's timezone). Defaults to the date's location.
func WithLocation(loc *time.Location) GenerateOption {
	return func(o *generateOptions) {
		if loc != nil {
			o.loc = loc
		}
	}
}

// WithHour12 selects "2:00 PM" (true, default) or "14:00" labels.
func WithHour12(enabled bool) GenerateOption {
	return func(o *generateOptions) { o.hour12 = enabled }
}

// GenerateTimeSlots expands the template entry for date's weekday into slots of
// durationMinutes, starting every stride from the window start. A slot is emitted
// only if it ends at or before the window end. Disabled days and days without
// ranges yield no slots. By default only the first range of a day is used.
// When clocks fall back the same wall-clock label names two instants; only the
// earlier one is offered.
func GenerateTimeSlots(date time.Time, template WeeklyTemplate, durationMinutes int, opts ...GenerateOption) ([]TimeSlot, error) {
	if durationMinutes <= 0 {
		return nil, ErrInvalidDuration
	}

	o := generateOptions{
		stride: DefaultStride,
		loc:    date.Location(),
		hour12: true,
	}
	for _, opt := range opts {
		opt(&o)
	}

	day := At(date, 0, o.loc)
	da, ok := template[WeekdayOf(day)]
	if !ok || !da.IsEnabled || len(da.Slots) == 0 {
		return nil, nil
	}

	ranges := da.Slots[:1]
	if o.allRanges {
		ranges = da.Slots
	}

	duration := time.Duration(durationMinutes) * time.Minute
	var out []TimeSlot
	for _, r := range ranges {
		startMin, err := ParseClock(r.Start)
		if err != nil {
			return nil, err
		}
		endMin, err := ParseClock(r.End)
		if err != nil {
			return nil, err
		}
		if endMin <= startMin {
			return nil, fmt.Errorf("range %s-%s: %w", r.Start, r.End, ErrInvalidTimeRange)
		}

		windowStart := At(day, startMin, o.loc)
		windowEnd := At(day, endMin, o.loc)
		for start := windowStart; start.Before(windowEnd); start = start.Add(o.stride) {
			end := start.Add(duration)
			if end.After(windowEnd) {
				continue
			}
			out = append(out, TimeSlot{
				Start:       FormatDisplay(start, o.hour12),
				End:         FormatDisplay(end, o.hour12),
				IsAvailable: true,
				StartAt:     start,
				EndAt:       end,
			})
		}
	}

	if len(ranges) > 1 {
		out = dedupeSorted(out)
	}
	return dropRepeatedLabels(out), nil
}

// dropRepeatedLabels keeps the first slot of each start label.
func dropRepeatedLabels(slots []TimeSlot) []TimeSlot {
	seen := make(map[string]bool, len(slots))
	out := slots[:0]
	for _, s := range slots {
		if seen[s.Start] {
			continue
		}
		seen[s.Start] = true
		out = append(out, s)
	}
	return out
}

// dedupeSorted orders slots by start and drops exact duplicates produced by overlapping ranges.
func dedupeSorted(slots []TimeSlot) []TimeSlot {
	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].StartAt.Before(slots[j].StartAt)
	})
	out := slots[:0]
	for i, s := range slots {
		if i > 0 && s.StartAt.Equal(out[len(out)-1].StartAt) && s.EndAt.Equal(out[len(out)-1].EndAt) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// FindSlot returns the generated slot starting at start, if any.
func FindSlot(slots []TimeSlot, start time.Time) (TimeSlot, bool) {
	for _, s := range slots {
		if s.StartAt.Equal(start) {
			return s, true
		}
	}
	return TimeSlot{}, false
}
