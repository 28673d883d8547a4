package http

import (
	"time"

	"github.com/nekogravitycat/meeting-scheduler/internal/availability"
)

type TimeRangeDTO struct {
	Start string `json:"start" binding:"required"`
	End   string `json:"end" binding:"required"`
}

type DayAvailabilityDTO struct {
	IsEnabled bool           `json:"isEnabled"`
	Slots     []TimeRangeDTO `json:"slots" binding:"dive"`
}

// WeekDTO is the weekday half of the settings document; each day is a top-level key.
type WeekDTO struct {
	Sunday    *DayAvailabilityDTO `json:"sunday,omitempty"`
	Monday    *DayAvailabilityDTO `json:"monday,omitempty"`
	Tuesday   *DayAvailabilityDTO `json:"tuesday,omitempty"`
	Wednesday *DayAvailabilityDTO `json:"wednesday,omitempty"`
	Thursday  *DayAvailabilityDTO `json:"thursday,omitempty"`
	Friday    *DayAvailabilityDTO `json:"friday,omitempty"`
	Saturday  *DayAvailabilityDTO `json:"saturday,omitempty"`
}

func (w *WeekDTO) days() map[availability.Weekday]**DayAvailabilityDTO {
	return map[availability.Weekday]**DayAvailabilityDTO{
		availability.Sunday:    &w.Sunday,
		availability.Monday:    &w.Monday,
		availability.Tuesday:   &w.Tuesday,
		availability.Wednesday: &w.Wednesday,
		availability.Thursday:  &w.Thursday,
		availability.Friday:    &w.Friday,
		availability.Saturday:  &w.Saturday,
	}
}

// NewWeekDTO converts a template; days missing from the template stay nil.
func NewWeekDTO(t availability.WeeklyTemplate) WeekDTO {
	var w WeekDTO
	for day, field := range w.days() {
		da, ok := t[day]
		if !ok {
			continue
		}
		dto := &DayAvailabilityDTO{IsEnabled: da.IsEnabled, Slots: make([]TimeRangeDTO, len(da.Slots))}
		for i, r := range da.Slots {
			dto.Slots[i] = TimeRangeDTO{Start: r.Start, End: r.End}
		}
		*field = dto
	}
	return w
}

// Template converts the present days back into a template.
func (w WeekDTO) Template() availability.WeeklyTemplate {
	t := make(availability.WeeklyTemplate)
	for day, field := range w.days() {
		dto := *field
		if dto == nil {
			continue
		}
		da := availability.DayAvailability{IsEnabled: dto.IsEnabled, Slots: make([]availability.TimeRange, len(dto.Slots))}
		for i, r := range dto.Slots {
			da.Slots[i] = availability.TimeRange{Start: r.Start, End: r.End}
		}
		t[day] = da
	}
	return t
}

// SettingsResponse is the flat constraints + weekly template document.
type SettingsResponse struct {
	Timezone            string    `json:"timezone"`
	MinimumNoticeHours  int       `json:"minimumNoticeHours"`
	BufferMinutes       int       `json:"bufferMinutes"`
	PreventOverlap      bool      `json:"preventOverlap"`
	RequireConfirmation bool      `json:"requireConfirmation"`
	UpdatedAt           time.Time `json:"updatedAt,omitzero"`
	WeekDTO
}

func NewSettingsResponse(s *availability.Settings) SettingsResponse {
	return SettingsResponse{
		Timezone:            s.Timezone,
		MinimumNoticeHours:  s.MinimumNoticeHours,
		BufferMinutes:       s.BufferMinutes,
		PreventOverlap:      s.PreventOverlap,
		RequireConfirmation: s.RequireConfirmation,
		UpdatedAt:           s.UpdatedAt,
		WeekDTO:             NewWeekDTO(s.Template),
	}
}

// Settings converts the response back into the domain document.
func (r SettingsResponse) Settings() availability.Settings {
	return availability.Settings{
		Constraints: availability.Constraints{
			Timezone:            r.Timezone,
			MinimumNoticeHours:  r.MinimumNoticeHours,
			BufferMinutes:       r.BufferMinutes,
			PreventOverlap:      r.PreventOverlap,
			RequireConfirmation: r.RequireConfirmation,
		},
		Template:  r.WeekDTO.Template(),
		UpdatedAt: r.UpdatedAt,
	}
}

// UpdateSettingsBody is a partial settings document.
type UpdateSettingsBody struct {
	Timezone            *string `json:"timezone,omitempty"`
	MinimumNoticeHours  *int    `json:"minimumNoticeHours,omitempty" binding:"omitempty,min=0"`
	BufferMinutes       *int    `json:"bufferMinutes,omitempty" binding:"omitempty,min=0"`
	PreventOverlap      *bool   `json:"preventOverlap,omitempty"`
	RequireConfirmation *bool   `json:"requireConfirmation,omitempty"`
	WeekDTO
}

func NewUpdateSettingsBody(p availability.Patch) UpdateSettingsBody {
	return UpdateSettingsBody{
		Timezone:            p.Timezone,
		MinimumNoticeHours:  p.MinimumNoticeHours,
		BufferMinutes:       p.BufferMinutes,
		PreventOverlap:      p.PreventOverlap,
		RequireConfirmation: p.RequireConfirmation,
		WeekDTO:             NewWeekDTO(p.Template),
	}
}

func (b UpdateSettingsBody) Patch() availability.Patch {
	return availability.Patch{
		Timezone:            b.Timezone,
		MinimumNoticeHours:  b.MinimumNoticeHours,
		BufferMinutes:       b.BufferMinutes,
		PreventOverlap:      b.PreventOverlap,
		RequireConfirmation: b.RequireConfirmation,
		Template:            b.WeekDTO.Template(),
	}
}

// TimeSlotResponse is one offered slot.
type TimeSlotResponse struct {
	Start       string    `json:"start"`
	End         string    `json:"end"`
	IsAvailable bool      `json:"isAvailable"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
}

func NewTimeSlotResponses(slots []availability.TimeSlot) []TimeSlotResponse {
	out := make([]TimeSlotResponse, len(slots))
	for i, s := range slots {
		out[i] = TimeSlotResponse{
			Start:       s.Start,
			End:         s.End,
			IsAvailable: s.IsAvailable,
			StartTime:   s.StartAt.UTC(),
			EndTime:     s.EndAt.UTC(),
		}
	}
	return out
}
