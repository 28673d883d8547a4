package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nekogravitycat/meeting-scheduler/internal/availability"
	"github.com/nekogravitycat/meeting-scheduler/internal/booking"
	bookingHttp "github.com/nekogravitycat/meeting-scheduler/internal/booking/http"
)

// BookingAPI is the part of Client a booking page needs.
type BookingAPI interface {
	GetBooking(ctx context.Context, id string) (*bookingHttp.GetBookingResponse, error)
	GetSlots(ctx context.Context, id string, date time.Time) (*bookingHttp.SlotsResponse, error)
	Confirmer
}

type Confirmer interface {
	ConfirmBooking(ctx context.Context, id string, body bookingHttp.ConfirmBookingBody) (*bookingHttp.ConfirmBookingResponse, error)
}

// ConfirmationPayload builds the request body for confirming slotStart on date.
// The same inputs always yield the same payload.
func ConfirmationPayload(date time.Time, slotStart string, durationMinutes int, loc *time.Location) (bookingHttp.ConfirmBookingBody, error) {
	w, err := booking.BuildConfirmation(date, slotStart, durationMinutes, loc)
	if err != nil {
		return bookingHttp.ConfirmBookingBody{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return bookingHttp.NewConfirmBookingBody(w), nil
}

// ConfirmBooking submits the window for slotStart on date. Nothing is sent when
// the window cannot be built.
func ConfirmBooking(ctx context.Context, api Confirmer, bookingID string, date time.Time, slotStart string, durationMinutes int, loc *time.Location) (*booking.Booking, error) {
	body, err := ConfirmationPayload(date, slotStart, durationMinutes, loc)
	if err != nil {
		return nil, err
	}
	resp, err := api.ConfirmBooking(ctx, bookingID, body)
	if err != nil {
		return nil, err
	}
	b := resp.Booking.Booking()
	return &b, nil
}

type ConfirmState int

const (
	ConfirmIdle ConfirmState = iota
	ConfirmSubmitting
	ConfirmSuccess
	ConfirmError
)

func (s ConfirmState) String() string {
	switch s {
	case ConfirmIdle:
		return "idle"
	case ConfirmSubmitting:
		return "submitting"
	case ConfirmSuccess:
		return "success"
	case ConfirmError:
		return "error"
	}
	return "unknown"
}

// Selection is the date and slot an invitee picked.
type Selection struct {
	Date      time.Time
	SlotStart string
}

// BookingPage holds one opened booking link. Only one confirmation may be in
// flight at a time.
type BookingPage struct {
	api      BookingAPI
	booking  booking.Booking
	settings availability.Settings
	loc      *time.Location

	mu      sync.Mutex
	state   ConfirmState
	lastErr error
}

// OpenBookingPage loads the booking link and its owner's availability.
func OpenBookingPage(ctx context.Context, api BookingAPI, id string) (*BookingPage, error) {
	resp, err := api.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	settings := resp.Availability.Settings()
	loc, err := settings.Location()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrServer, err)
	}
	return &BookingPage{
		api:      api,
		booking:  resp.Booking.Booking(),
		settings: settings,
		loc:      loc,
	}, nil
}

func (p *BookingPage) Booking() booking.Booking { return p.booking }

func (p *BookingPage) Settings() availability.Settings { return p.settings.Clone() }

// Location is the owner's timezone, in which slot labels are read.
func (p *BookingPage) Location() *time.Location { return p.loc }

// Slots computes the grid for date from the loaded template without marking busy times.
func (p *BookingPage) Slots(date time.Time) ([]availability.TimeSlot, error) {
	return availability.GenerateTimeSlots(date, p.settings.Template, p.booking.Meeting.DurationMinutes,
		availability.WithLocation(p.loc))
}

// RemoteSlots asks the server for the grid of date with unavailable slots marked.
func (p *BookingPage) RemoteSlots(ctx context.Context, date time.Time) (*bookingHttp.SlotsResponse, error) {
	return p.api.GetSlots(ctx, p.booking.ID, date)
}

func (p *BookingPage) State() ConfirmState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Err is the failure of the last confirmation, if any.
func (p *BookingPage) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Confirm submits sel. It returns ErrConfirmInFlight without a request while
// another confirmation of this page is running.
func (p *BookingPage) Confirm(ctx context.Context, sel Selection) (*booking.Booking, error) {
	p.mu.Lock()
	if p.state == ConfirmSubmitting {
		p.mu.Unlock()
		return nil, ErrConfirmInFlight
	}
	p.state = ConfirmSubmitting
	p.lastErr = nil
	p.mu.Unlock()

	b, err := ConfirmBooking(ctx, p.api, p.booking.ID, sel.Date, sel.SlotStart, p.booking.Meeting.DurationMinutes, p.loc)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.state = ConfirmError
		p.lastErr = err
		return nil, err
	}
	p.state = ConfirmSuccess
	p.booking = *b
	return b, nil
}
