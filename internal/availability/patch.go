package availability

// Patch is a partial settings update. Nil fields are left untouched; every day
// present in Template replaces that day wholesale.
type Patch struct {
	Timezone            *string
	MinimumNoticeHours  *int
	BufferMinutes       *int
	PreventOverlap      *bool
	RequireConfirmation *bool
	Template            WeeklyTemplate
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Timezone == nil &&
		p.MinimumNoticeHours == nil &&
		p.BufferMinutes == nil &&
		p.PreventOverlap == nil &&
		p.RequireConfirmation == nil &&
		len(p.Template) == 0
}

// Apply returns a copy of s with the patch applied. s itself is not modified.
func (p Patch) Apply(s Settings) Settings {
	out := s.Clone()
	if p.Timezone != nil {
		out.Timezone = *p.Timezone
	}
	if p.MinimumNoticeHours != nil {
		out.MinimumNoticeHours = *p.MinimumNoticeHours
	}
	if p.BufferMinutes != nil {
		out.BufferMinutes = *p.BufferMinutes
	}
	if p.PreventOverlap != nil {
		out.PreventOverlap = *p.PreventOverlap
	}
	if p.RequireConfirmation != nil {
		out.RequireConfirmation = *p.RequireConfirmation
	}
	if len(p.Template) > 0 {
		if out.Template == nil {
			out.Template = make(WeeklyTemplate, len(p.Template))
		}
		for day, da := range p.Template.Clone() {
			out.Template[day] = da
		}
	}
	return out
}
