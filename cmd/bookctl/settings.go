package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/nekogravitycat/meeting-scheduler/internal/availability"
	"github.com/nekogravitycat/meeting-scheduler/internal/client"
)

type SettingsCmd struct {
	Get SettingsGetCmd `cmd:"" help:"Show availability settings"`
	Set SettingsSetCmd `cmd:"" help:"Change availability settings"`
}

type SettingsGetCmd struct{}

func (c *SettingsGetCmd) Run(g *Globals, ctx context.Context) error {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	s, err := g.client().GetSettings(ctx)
	if err != nil {
		return err
	}
	if g.JSON {
		return printJSON(s)
	}
	printSettings(*s)
	return nil
}

// SettingsSetCmd sends a partial update. Days are given as
// day=HH:MM-HH:MM[,HH:MM-HH:MM] or day=off.
type SettingsSetCmd struct {
	Timezone            *string  `name:"timezone" help:"IANA timezone"`
	MinimumNoticeHours  *int     `name:"notice" help:"Minimum notice in hours"`
	BufferMinutes       *int     `name:"buffer" help:"Buffer between meetings in minutes"`
	PreventOverlap      *bool    `name:"prevent-overlap" help:"Reject overlapping bookings"`
	RequireConfirmation *bool    `name:"require-confirmation" help:"Hold bookings for host approval"`
	Days                []string `name:"day" sep:"none" help:"Day hours, e.g. monday=09:00-12:00,13:00-17:00 or saturday=off"`
}

func (c *SettingsSetCmd) Run(g *Globals, ctx context.Context) error {
	patch := availability.Patch{
		Timezone:            c.Timezone,
		MinimumNoticeHours:  c.MinimumNoticeHours,
		BufferMinutes:       c.BufferMinutes,
		PreventOverlap:      c.PreventOverlap,
		RequireConfirmation: c.RequireConfirmation,
	}
	if len(c.Days) > 0 {
		tmpl, err := parseDays(c.Days)
		if err != nil {
			return err
		}
		patch.Template = tmpl
	}
	if patch.IsEmpty() {
		return fmt.Errorf("%w: nothing to change", client.ErrValidation)
	}

	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	editor, err := client.OpenSettingsEditor(ctx, g.client())
	if err != nil {
		return err
	}
	s, err := editor.Update(ctx, patch)
	if err != nil {
		return err
	}
	if g.JSON {
		return printJSON(s)
	}
	printSettings(s)
	return nil
}

func parseDays(specs []string) (availability.WeeklyTemplate, error) {
	tmpl := make(availability.WeeklyTemplate, len(specs))
	for _, spec := range specs {
		name, hours, ok := strings.Cut(spec, "=")
		day := availability.Weekday(strings.ToLower(strings.TrimSpace(name)))
		if !ok || !day.Valid() {
			return nil, fmt.Errorf("%w: day %q", client.ErrValidation, spec)
		}
		if strings.EqualFold(strings.TrimSpace(hours), "off") {
			tmpl[day] = availability.DayAvailability{IsEnabled: false, Slots: []availability.TimeRange{}}
			continue
		}
		var ranges []availability.TimeRange
		for _, r := range strings.Split(hours, ",") {
			start, end, ok := strings.Cut(strings.TrimSpace(r), "-")
			if !ok {
				return nil, fmt.Errorf("%w: range %q", client.ErrValidation, r)
			}
			ranges = append(ranges, availability.TimeRange{Start: strings.TrimSpace(start), End: strings.TrimSpace(end)})
		}
		tmpl[day] = availability.DayAvailability{IsEnabled: true, Slots: ranges}
	}
	return tmpl, nil
}

func printSettings(s availability.Settings) {
	fmt.Printf("timezone:             %s\n", s.Timezone)
	fmt.Printf("minimum notice:       %dh\n", s.MinimumNoticeHours)
	fmt.Printf("buffer:               %dm\n", s.BufferMinutes)
	fmt.Printf("prevent overlap:      %t\n", s.PreventOverlap)
	fmt.Printf("require confirmation: %t\n", s.RequireConfirmation)

	days := make([]string, 0, len(availability.Weekdays))
	for _, d := range availability.Weekdays {
		da, ok := s.Template[d]
		if !ok || !da.IsEnabled || len(da.Slots) == 0 {
			days = append(days, fmt.Sprintf("  %-9s off", d))
			continue
		}
		ranges := make([]string, len(da.Slots))
		for i, r := range da.Slots {
			ranges[i] = r.Start + "-" + r.End
		}
		sort.Strings(ranges)
		days = append(days, fmt.Sprintf("  %-9s %s", d, strings.Join(ranges, ", ")))
	}
	fmt.Println(strings.Join(days, "\n"))
}
