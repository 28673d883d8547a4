package availability

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/meeting-scheduler/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "availability settings not found")
	ErrInvalidTimezone  = apperror.New(http.StatusBadRequest, "invalid timezone")
	ErrInvalidNotice    = apperror.New(http.StatusBadRequest, "minimum notice hours must not be negative")
	ErrInvalidBuffer    = apperror.New(http.StatusBadRequest, "buffer minutes must not be negative")
	ErrInvalidWeekday   = apperror.New(http.StatusBadRequest, "invalid weekday")
	ErrInvalidTimeRange = apperror.New(http.StatusBadRequest, "time range start must be before end (HH:MM)")
	ErrInvalidDuration  = apperror.New(http.StatusBadRequest, "meeting duration must be positive")
	ErrInvalidClock     = apperror.New(http.StatusBadRequest, "invalid time of day")
)

// Weekday names a day of the recurring weekly template.
type Weekday string

const (
	Sunday    Weekday = "sunday"
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
)

// Weekdays lists the template keys indexed by time.Weekday.
var Weekdays = [7]Weekday{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

// WeekdayOf maps a date to its template key without any locale formatting.
func WeekdayOf(t time.Time) Weekday {
	return Weekdays[t.Weekday()]
}

// Valid reports whether w is one of the seven template keys.
func (w Weekday) Valid() bool {
	for _, d := range Weekdays {
		if d == w {
			return true
		}
	}
	return false
}

// TimeRange is a wall-clock window, both ends formatted "HH:MM".
type TimeRange struct {
	Start string
	End   string
}

// DayAvailability is the template entry for one weekday.
type DayAvailability struct {
	IsEnabled bool
	Slots     []TimeRange
}

// WeeklyTemplate maps each weekday to its availability.
type WeeklyTemplate map[Weekday]DayAvailability

// Clone returns a deep copy of the template.
func (t WeeklyTemplate) Clone() WeeklyTemplate {
	if t == nil {
		return nil
	}
	out := make(WeeklyTemplate, len(t))
	for day, da := range t {
		slots := make([]TimeRange, len(da.Slots))
		copy(slots, da.Slots)
		out[day] = DayAvailability{IsEnabled: da.IsEnabled, Slots: slots}
	}
	return out
}

// Constraints are the global scheduling rules applied on top of the template.
type Constraints struct {
	Timezone            string // IANA identifier
	MinimumNoticeHours  int
	BufferMinutes       int
	PreventOverlap      bool
	RequireConfirmation bool
}

// Location loads the configured timezone. An empty timezone means UTC.
func (c Constraints) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, apperror.Wrap(err, ErrInvalidTimezone.Code, ErrInvalidTimezone.Message)
	}
	return loc, nil
}

// Settings is the per-owner availability document.
type Settings struct {
	OwnerID string
	Constraints
	Template  WeeklyTemplate
	UpdatedAt time.Time
}

// Clone returns a deep copy so callers can snapshot and restore settings.
func (s Settings) Clone() Settings {
	s.Template = s.Template.Clone()
	return s
}

// DefaultSettings returns the document served to owners who never saved one:
// weekdays 09:00-17:00, weekends off, UTC.
func DefaultSettings(ownerID string) Settings {
	tmpl := make(WeeklyTemplate, len(Weekdays))
	for _, d := range Weekdays {
		if d == Saturday || d == Sunday {
			tmpl[d] = DayAvailability{IsEnabled: false, Slots: []TimeRange{}}
			continue
		}
		tmpl[d] = DayAvailability{IsEnabled: true, Slots: []TimeRange{{Start: "09:00", End: "17:00"}}}
	}
	return Settings{
		OwnerID: ownerID,
		Constraints: Constraints{
			Timezone:       "UTC",
			PreventOverlap: true,
		},
		Template: tmpl,
	}
}

// Interval is a concrete busy period, used for overlap checks.
type Interval struct {
	Start time.Time
	End   time.Time
}
