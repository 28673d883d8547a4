package booking

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/meeting-scheduler/internal/pkg/apperror"
)

var (
	ErrNotFound            = apperror.New(http.StatusNotFound, "booking not found")
	ErrExpired             = apperror.New(http.StatusNotFound, "booking link has expired")
	ErrInvalidTime         = apperror.New(http.StatusBadRequest, "invalid booking time")
	ErrInvalidTimeRange    = apperror.New(http.StatusBadRequest, "start time must be before end time")
	ErrInvalidDuration     = apperror.New(http.StatusBadRequest, "meeting duration must be positive")
	ErrDurationMismatch    = apperror.New(http.StatusBadRequest, "selected window does not match the meeting duration")
	ErrOutsideDateRange    = apperror.New(http.StatusBadRequest, "selected time is outside the booking date range")
	ErrSlotUnavailable     = apperror.New(http.StatusBadRequest, "selected time is not an offered slot")
	ErrNoticeTooShort      = apperror.New(http.StatusBadRequest, "selected time does not satisfy the minimum notice")
	ErrTimeConflict        = apperror.New(http.StatusConflict, "time slot already booked")
	ErrAlreadyConfirmed    = apperror.New(http.StatusConflict, "booking is already confirmed for another time")
	ErrInvalidStatus       = apperror.New(http.StatusBadRequest, "invalid booking status")
	ErrInvalidTransition   = apperror.New(http.StatusConflict, "booking status cannot change that way")
	ErrPermissionDenied    = apperror.New(http.StatusForbidden, "permission denied")
	ErrInvalidLocation     = apperror.New(http.StatusBadRequest, "custom location is required when meeting location is other")
	ErrMeetingPurposeEmpty = apperror.New(http.StatusBadRequest, "meeting purpose is required")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusScheduled Status = "scheduled" // invitee picked a time, host approval required
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusScheduled, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Holds reports whether a booking in this status occupies its time window.
func (s Status) Holds() bool {
	return s == StatusScheduled || s == StatusConfirmed
}

// LocationOther means the invitee meets at CustomLocation.
const LocationOther = "other"

// MeetingSpec describes the meeting a booking link offers.
type MeetingSpec struct {
	DurationMinutes int
	Purpose         string
	Location        string
	CustomLocation  *string
}

// DateRange bounds the dates an invitee may pick.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Booking is a booking link owned by a host, optionally holding a chosen window.
type Booking struct {
	ID        string
	OwnerID   string
	DateRange DateRange
	Meeting   MeetingSpec
	Status    Status
	StartTime *time.Time
	EndTime   *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expired reports whether a pending link can no longer be booked at now.
func (b *Booking) Expired(now time.Time) bool {
	return b.Status == StatusPending && !now.Before(b.DateRange.End)
}

// HoldsWindow reports whether the booking already holds exactly w.
func (b *Booking) HoldsWindow(w Window) bool {
	return b.Status.Holds() &&
		b.StartTime != nil && b.EndTime != nil &&
		b.StartTime.Equal(w.Start) && b.EndTime.Equal(w.End)
}

type Filter struct {
	OwnerID   string
	Status    string
	StartTime *time.Time // Filter bookings whose date range ends after this time
	EndTime   *time.Time // Filter bookings whose date range starts before this time
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
