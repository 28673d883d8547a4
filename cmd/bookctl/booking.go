package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/nekogravitycat/meeting-scheduler/internal/client"
)

const dateLayout = "2006-01-02"

// SlotsCmd prints the slot grid of one date.
type SlotsCmd struct {
	BookingID string `arg:"" name:"bookingId" help:"Booking link ID"`
	Date      string `arg:"" name:"date" help:"Date as YYYY-MM-DD"`
	Available bool   `name:"available" help:"Only show available slots"`
}

func (c *SlotsCmd) Run(g *Globals, ctx context.Context) error {
	date, err := time.Parse(dateLayout, c.Date)
	if err != nil {
		return fmt.Errorf("%w: date %q", client.ErrValidation, c.Date)
	}

	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	resp, err := g.client().GetSlots(ctx, c.BookingID, date)
	if err != nil {
		return err
	}
	if g.JSON {
		return printJSON(resp)
	}

	fmt.Printf("%s (%s)\n", resp.Date, resp.Timezone)
	shown := 0
	for _, s := range resp.Slots {
		if c.Available && !s.IsAvailable {
			continue
		}
		mark := " "
		if !s.IsAvailable {
			mark = "x"
		}
		fmt.Printf("  [%s] %s - %s\n", mark, s.Start, s.End)
		shown++
	}
	if shown == 0 {
		fmt.Println("  no slots")
	}
	return nil
}

// ConfirmCmd confirms the slot starting at the given label.
type ConfirmCmd struct {
	BookingID string `arg:"" name:"bookingId" help:"Booking link ID"`
	Date      string `arg:"" name:"date" help:"Date as YYYY-MM-DD"`
	Slot      string `arg:"" name:"slot" help:"Slot start, e.g. \"2:00 PM\" or 14:00"`
}

func (c *ConfirmCmd) Run(g *Globals, ctx context.Context) error {
	date, err := time.Parse(dateLayout, c.Date)
	if err != nil {
		return fmt.Errorf("%w: date %q", client.ErrValidation, c.Date)
	}

	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	page, err := client.OpenBookingPage(ctx, g.client(), c.BookingID)
	if err != nil {
		return err
	}

	b, err := page.Confirm(ctx, client.Selection{Date: date, SlotStart: c.Slot})
	if err != nil {
		return err
	}
	if g.JSON {
		return printJSON(b)
	}

	loc := page.Location()
	fmt.Printf("Booking %s is %s: %s - %s (%s)\n",
		b.ID, b.Status,
		b.StartTime.In(loc).Format("Mon Jan 2 15:04"),
		b.EndTime.In(loc).Format("15:04"),
		loc)
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
