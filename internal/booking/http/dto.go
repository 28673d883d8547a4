package http

import (
	"time"

	availHttp "github.com/nekogravitycat/meeting-scheduler/internal/availability/http"
	"github.com/nekogravitycat/meeting-scheduler/internal/booking"
	"github.com/nekogravitycat/meeting-scheduler/internal/pkg/request"
)

const dateLayout = "2006-01-02"

// ListBookingsRequest defines query parameters for listing bookings.
type ListBookingsRequest struct {
	request.ListParams
	Status   string     `form:"status" binding:"omitempty,oneof=pending scheduled confirmed completed cancelled"`
	DateFrom *time.Time `form:"date_from" time_format:"2006-01-02T15:04:05Z07:00"`
	DateTo   *time.Time `form:"date_to" time_format:"2006-01-02T15:04:05Z07:00"`
	SortBy   string     `form:"sort_by" binding:"omitempty,oneof=created_at date_range_start start_time status"`
}

// Validate performs custom validation for ListBookingsRequest.
func (r *ListBookingsRequest) Validate() error {
	if r.DateFrom != nil && r.DateTo != nil {
		if r.DateFrom.After(*r.DateTo) {
			return booking.ErrInvalidTimeRange
		}
	}
	return nil
}

type DateRangeDTO struct {
	Start time.Time `json:"start" binding:"required"`
	End   time.Time `json:"end" binding:"required"`
}

type BookingResponse struct {
	ID              string       `json:"bookingId"`
	DateRange       DateRangeDTO `json:"dateRange"`
	MeetingDuration int          `json:"meetingDuration"`
	MeetingPurpose  string       `json:"meetingPurpose"`
	MeetingLocation string       `json:"meetingLocation"`
	CustomLocation  *string      `json:"customLocation,omitempty"`
	Status          string       `json:"status"`
	StartTime       *time.Time   `json:"startTime,omitempty"`
	EndTime         *time.Time   `json:"endTime,omitempty"`
	CreatedAt       time.Time    `json:"createdAt,omitzero"`
	UpdatedAt       time.Time    `json:"updatedAt,omitzero"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:              b.ID,
		DateRange:       DateRangeDTO{Start: b.DateRange.Start, End: b.DateRange.End},
		MeetingDuration: b.Meeting.DurationMinutes,
		MeetingPurpose:  b.Meeting.Purpose,
		MeetingLocation: b.Meeting.Location,
		CustomLocation:  b.Meeting.CustomLocation,
		Status:          string(b.Status),
		StartTime:       b.StartTime,
		EndTime:         b.EndTime,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

// Booking converts the response back into the domain model.
func (r BookingResponse) Booking() booking.Booking {
	return booking.Booking{
		ID:        r.ID,
		DateRange: booking.DateRange{Start: r.DateRange.Start, End: r.DateRange.End},
		Meeting: booking.MeetingSpec{
			DurationMinutes: r.MeetingDuration,
			Purpose:         r.MeetingPurpose,
			Location:        r.MeetingLocation,
			CustomLocation:  r.CustomLocation,
		},
		Status:    booking.Status(r.Status),
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// GetBookingResponse is what the booking page loads: the link and its owner's availability.
type GetBookingResponse struct {
	Booking      BookingResponse            `json:"booking"`
	Availability availHttp.SettingsResponse `json:"availability"`
}

type SlotsQuery struct {
	Date string `form:"date" binding:"required,datetime=2006-01-02"`
}

type SlotsResponse struct {
	Date     string                       `json:"date"`
	Timezone string                       `json:"timezone"`
	Slots    []availHttp.TimeSlotResponse `json:"slots"`
}

func NewSlotsResponse(r *booking.SlotsResult) SlotsResponse {
	return SlotsResponse{
		Date:     r.Date.Format(dateLayout),
		Timezone: r.Timezone,
		Slots:    availHttp.NewTimeSlotResponses(r.Slots),
	}
}

// ConfirmBookingBody carries the chosen window as RFC 3339 timestamps.
type ConfirmBookingBody struct {
	StartTime string `json:"startTime" binding:"required"`
	EndTime   string `json:"endTime" binding:"required"`
}

func NewConfirmBookingBody(w booking.Window) ConfirmBookingBody {
	start, end := w.ISO()
	return ConfirmBookingBody{StartTime: start, EndTime: end}
}

type ConfirmBookingResponse struct {
	Booking BookingResponse `json:"booking"`
}

type CreateBookingBody struct {
	DateRange       DateRangeDTO `json:"dateRange" binding:"required"`
	MeetingDuration int          `json:"meetingDuration" binding:"required,min=1"`
	MeetingPurpose  string       `json:"meetingPurpose" binding:"required"`
	MeetingLocation string       `json:"meetingLocation" binding:"required"`
	CustomLocation  *string      `json:"customLocation"`
}

// Validate performs custom validation for CreateBookingBody.
func (r *CreateBookingBody) Validate() error {
	if !r.DateRange.End.After(r.DateRange.Start) {
		return booking.ErrInvalidTimeRange
	}
	return nil
}

type UpdateBookingBody struct {
	Status string `json:"status" binding:"required,oneof=pending scheduled confirmed completed cancelled"`
}
