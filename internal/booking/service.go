package booking

import (
	"context"
	"strings"
	"time"

	"github.com/nekogravitycat/meeting-scheduler/internal/availability"
)

type CreateRequest struct {
	OwnerID   string
	DateRange DateRange
	Meeting   MeetingSpec
}

// SlotsResult is the slot grid offered for one calendar date of a booking link.
type SlotsResult struct {
	Date     time.Time
	Timezone string
	Slots    []availability.TimeSlot
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Booking, error)
	GetByID(ctx context.Context, id string) (*Booking, error)
	// GetWithAvailability loads a bookable link together with its owner's settings.
	GetWithAvailability(ctx context.Context, id string) (*Booking, *availability.Settings, error)
	Slots(ctx context.Context, id string, date time.Time) (*SlotsResult, error)
	Confirm(ctx context.Context, id string, w Window) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	UpdateStatus(ctx context.Context, id string, ownerID string, status Status) (*Booking, error)
	ExpirePending(ctx context.Context) (int64, error)
}

type service struct {
	repo      Repository
	avail     availability.Service
	now       func() time.Time
	allRanges bool
}

type ServiceOption func(*service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *service) { s.now = now }
}

// WithAllRanges offers slots from every range of a day instead of the first one only.
func WithAllRanges(enabled bool) ServiceOption {
	return func(s *service) { s.allRanges = enabled }
}

func NewService(repo Repository, avail availability.Service, opts ...ServiceOption) Service {
	s := &service{
		repo:  repo,
		avail: avail,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	if !req.DateRange.End.After(req.DateRange.Start) {
		return nil, ErrInvalidTimeRange
	}
	if req.Meeting.DurationMinutes <= 0 {
		return nil, ErrInvalidDuration
	}
	req.Meeting.Purpose = strings.TrimSpace(req.Meeting.Purpose)
	if req.Meeting.Purpose == "" {
		return nil, ErrMeetingPurposeEmpty
	}
	if req.Meeting.Location == LocationOther {
		if req.Meeting.CustomLocation == nil || strings.TrimSpace(*req.Meeting.CustomLocation) == "" {
			return nil, ErrInvalidLocation
		}
	} else {
		req.Meeting.CustomLocation = nil
	}

	b := &Booking{
		OwnerID:   req.OwnerID,
		DateRange: req.DateRange,
		Meeting:   req.Meeting,
		Status:    StatusPending,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Booking, error) {
	return s.repo.GetByID(ctx, id)
}

// loadBookable returns the booking unless its link is cancelled or past its date range.
func (s *service) loadBookable(ctx context.Context, id string) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status == StatusCancelled || b.Expired(s.now()) {
		return nil, ErrExpired
	}
	return b, nil
}

func (s *service) GetWithAvailability(ctx context.Context, id string) (*Booking, *availability.Settings, error) {
	b, err := s.loadBookable(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	settings, err := s.avail.Get(ctx, b.OwnerID)
	if err != nil {
		return nil, nil, err
	}
	return b, settings, nil
}

func (s *service) Slots(ctx context.Context, id string, date time.Time) (*SlotsResult, error) {
	b, settings, err := s.GetWithAvailability(ctx, id)
	if err != nil {
		return nil, err
	}
	loc, err := settings.Location()
	if err != nil {
		return nil, err
	}

	slots, err := availability.GenerateTimeSlots(date, settings.Template, b.Meeting.DurationMinutes,
		availability.WithLocation(loc),
		availability.WithAllRanges(s.allRanges),
	)
	if err != nil {
		return nil, err
	}

	result := &SlotsResult{
		Date:     availability.At(date, 0, loc),
		Timezone: loc.String(),
		Slots:    slots,
	}
	if len(slots) == 0 {
		return result, nil
	}

	buffer := time.Duration(settings.BufferMinutes) * time.Minute
	busy, err := s.repo.ListBusy(ctx, b.OwnerID,
		slots[0].StartAt.Add(-buffer), slots[len(slots)-1].EndAt.Add(buffer), b.ID)
	if err != nil {
		return nil, err
	}

	availability.MarkUnavailable(result.Slots, s.now(), settings.Constraints, busy)
	for i := range result.Slots {
		slot := &result.Slots[i]
		if slot.StartAt.Before(b.DateRange.Start) || slot.EndAt.After(b.DateRange.End) {
			slot.IsAvailable = false
		}
		// A link that already holds a window offers nothing else.
		if b.Status != StatusPending && !b.HoldsWindow(Window{Start: slot.StartAt, End: slot.EndAt}) {
			slot.IsAvailable = false
		}
	}
	return result, nil
}

func (s *service) Confirm(ctx context.Context, id string, w Window) (*Booking, error) {
	if !w.End.After(w.Start) {
		return nil, ErrInvalidTimeRange
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Resubmitting the held window succeeds without side effects.
	if b.HoldsWindow(w) {
		return b, nil
	}
	now := s.now()
	if b.Status == StatusCancelled || b.Expired(now) {
		return nil, ErrExpired
	}
	if b.Status != StatusPending {
		return nil, ErrAlreadyConfirmed
	}

	duration := time.Duration(b.Meeting.DurationMinutes) * time.Minute
	if w.End.Sub(w.Start) != duration {
		return nil, ErrDurationMismatch
	}
	if w.Start.Before(b.DateRange.Start) || w.End.After(b.DateRange.End) {
		return nil, ErrOutsideDateRange
	}

	settings, err := s.avail.Get(ctx, b.OwnerID)
	if err != nil {
		return nil, err
	}
	loc, err := settings.Location()
	if err != nil {
		return nil, err
	}

	// The window must be one of the slots offered for its local date.
	slots, err := availability.GenerateTimeSlots(w.Start.In(loc), settings.Template, b.Meeting.DurationMinutes,
		availability.WithLocation(loc),
		availability.WithAllRanges(s.allRanges),
	)
	if err != nil {
		return nil, err
	}
	if _, ok := availability.FindSlot(slots, w.Start); !ok {
		return nil, ErrSlotUnavailable
	}

	if w.Start.Before(settings.EarliestStart(now)) {
		return nil, ErrNoticeTooShort
	}

	if settings.PreventOverlap {
		buffer := time.Duration(settings.BufferMinutes) * time.Minute
		busy, err := s.repo.ListBusy(ctx, b.OwnerID, w.Start.Add(-buffer), w.End.Add(buffer), b.ID)
		if err != nil {
			return nil, err
		}
		if settings.Conflicts(w.Start, w.End, busy) {
			return nil, ErrTimeConflict
		}
	}

	status := StatusConfirmed
	if settings.RequireConfirmation {
		status = StatusScheduled
	}

	ok, err := s.repo.ConfirmWindow(ctx, b.ID, w, status)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Another request confirmed the link first.
		current, err := s.repo.GetByID(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		if current.HoldsWindow(w) {
			return current, nil
		}
		return nil, ErrAlreadyConfirmed
	}

	start, end := w.Start.UTC(), w.End.UTC()
	b.StartTime = &start
	b.EndTime = &end
	b.Status = status
	b.UpdatedAt = now
	return b, nil
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	return s.repo.List(ctx, filter)
}

// transitions lists the status changes a host may make.
var transitions = map[Status][]Status{
	StatusPending:   {StatusCancelled},
	StatusScheduled: {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

func canTransition(from, to Status) bool {
	for _, st := range transitions[from] {
		if st == to {
			return true
		}
	}
	return false
}

func (s *service) UpdateStatus(ctx context.Context, id string, ownerID string, status Status) (*Booking, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.OwnerID != ownerID {
		return nil, ErrPermissionDenied
	}
	if b.Status == status {
		return b, nil
	}
	if !canTransition(b.Status, status) {
		return nil, ErrInvalidTransition
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	b.Status = status
	b.UpdatedAt = s.now()
	return b, nil
}

func (s *service) ExpirePending(ctx context.Context) (int64, error) {
	return s.repo.ExpirePending(ctx, s.now())
}
