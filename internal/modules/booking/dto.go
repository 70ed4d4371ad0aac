package booking

import (
	"time"

	"punchin/internal/domain"
)

type QuoteRequest struct {
	StudioID        string    `json:"studio_id" binding:"required"`
	RoomID          string    `json:"room_id"`
	EngineerID      string    `json:"engineer_id"`
	Start           time.Time `json:"start" binding:"required"`
	DurationMinutes int       `json:"duration_minutes"`
	Notes           string    `json:"notes" validate:"max=2000"`
}

func (r QuoteRequest) input(artistID string) RequestInput {
	return RequestInput{
		ArtistID:        artistID,
		StudioID:        r.StudioID,
		RoomID:          r.RoomID,
		EngineerID:      r.EngineerID,
		Start:           r.Start,
		DurationMinutes: r.DurationMinutes,
		Notes:           r.Notes,
	}
}

type RescheduleRequest struct {
	Start           time.Time `json:"start" binding:"required"`
	DurationMinutes int       `json:"duration_minutes"`
}

type AvailabilityRequest struct {
	Kind      domain.AvailabilityKind  `json:"kind" binding:"required" validate:"oneof=recurring block bookingHold selfBooking"`
	Scope     domain.AvailabilityScope `json:"scope" binding:"required" validate:"oneof=studio engineer"`
	OwnerID   string                   `json:"owner_id" binding:"required"`
	RoomID    string                   `json:"room_id"`
	Note      string                   `json:"note" validate:"max=500"`
	Recurring *domain.RecurringWindow  `json:"recurring"`
	Absolute  *domain.AbsoluteWindow   `json:"absolute"`
}

func (r AvailabilityRequest) entry() (domain.AvailabilityEntry, error) {
	h := domain.EntryHeader{
		Kind:    r.Kind,
		Scope:   r.Scope,
		OwnerID: r.OwnerID,
		RoomID:  r.RoomID,
		Note:    r.Note,
	}
	switch {
	case r.Recurring != nil && r.Absolute == nil:
		return domain.NewRecurringEntry(h, *r.Recurring)
	case r.Absolute != nil && r.Recurring == nil:
		return domain.NewAbsoluteEntry(h, *r.Absolute)
	default:
		return domain.AvailabilityEntry{}, domain.ErrMalformedEntry
	}
}

type ValidateRescheduleResponse struct {
	Valid bool `json:"valid"`
}
