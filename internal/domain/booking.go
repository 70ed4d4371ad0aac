package domain

import "time"

type BookingStatus string

const (
	BookingPending     BookingStatus = "pending"
	BookingConfirmed   BookingStatus = "confirmed"
	BookingCompleted   BookingStatus = "completed"
	BookingCancelled   BookingStatus = "cancelled"
	BookingRescheduled BookingStatus = "rescheduled"
)

// DefaultBookingDurationMinutes is used when a stored booking has no usable duration.
const DefaultBookingDurationMinutes = 60

// LiveBookingStatuses count toward conflict checks.
var LiveBookingStatuses = []BookingStatus{BookingPending, BookingConfirmed, BookingRescheduled}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled, BookingRescheduled:
		return true
	}
	return false
}

func (s BookingStatus) IsLive() bool {
	return s == BookingPending || s == BookingConfirmed || s == BookingRescheduled
}

func (s BookingStatus) IsTerminal() bool {
	return s == BookingCompleted || s == BookingCancelled
}

// ParseBookingStatus maps stored values to a status; unknown or empty values read as pending.
func ParseBookingStatus(v string) BookingStatus {
	s := BookingStatus(v)
	if !s.Valid() {
		return BookingPending
	}
	return s
}

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:     {BookingConfirmed, BookingCancelled, BookingRescheduled},
	BookingConfirmed:   {BookingCompleted, BookingCancelled, BookingRescheduled},
	BookingRescheduled: {BookingConfirmed, BookingCancelled, BookingRescheduled},
}

// CanTransition reports whether a booking may move from one status to another.
// Completed and cancelled bookings are immutable.
func CanTransition(from, to BookingStatus) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type ParticipantRole string

const (
	ParticipantArtist   ParticipantRole = "artist"
	ParticipantStudio   ParticipantRole = "studio"
	ParticipantEngineer ParticipantRole = "engineer"
)

func (r ParticipantRole) Valid() bool {
	return r == ParticipantArtist || r == ParticipantStudio || r == ParticipantEngineer
}

type BookingPricing struct {
	HourlyRate float64 `json:"hourly_rate"`
	Total      float64 `json:"total"`
	Currency   string  `json:"currency"`
}

type BookingApprovalState struct {
	RequiresStudioApproval   bool       `json:"requires_studio_approval"`
	RequiresEngineerApproval bool       `json:"requires_engineer_approval"`
	ResolvedBy               string     `json:"resolved_by,omitempty"`
	ResolvedAt               *time.Time `json:"resolved_at,omitempty"`
}

// IsFullyApproved is true when neither party has to review the booking.
func (a BookingApprovalState) IsFullyApproved() bool {
	return !a.RequiresStudioApproval && !a.RequiresEngineerApproval
}

type Booking struct {
	ID              string               `json:"id"`
	ArtistID        string               `json:"artist_id"`
	StudioID        string               `json:"studio_id"`
	RoomID          string               `json:"room_id"`
	EngineerID      string               `json:"engineer_id"`
	Status          BookingStatus        `json:"status"`
	RequestedStart  time.Time            `json:"requested_start"`
	RequestedEnd    time.Time            `json:"requested_end"`
	ConfirmedStart  *time.Time           `json:"confirmed_start,omitempty"`
	ConfirmedEnd    *time.Time           `json:"confirmed_end,omitempty"`
	DurationMinutes int                  `json:"duration_minutes"`
	Pricing         *BookingPricing      `json:"pricing,omitempty"`
	InstantBook     bool                 `json:"instant_book"`
	Approval        BookingApprovalState `json:"approval"`
	ConversationID  string               `json:"conversation_id,omitempty"`
	Notes           string               `json:"notes,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

func (b Booking) IsLive() bool {
	return b.Status.IsLive()
}

// EffectiveWindow is the confirmed window when set, else the requested one.
func (b Booking) EffectiveWindow() (time.Time, time.Time) {
	if b.ConfirmedStart != nil && b.ConfirmedEnd != nil {
		return *b.ConfirmedStart, *b.ConfirmedEnd
	}
	return b.RequestedStart, b.RequestedEnd
}

// OverlapsWindow tests the effective window against [start, end).
func (b Booking) OverlapsWindow(start, end time.Time) bool {
	s, e := b.EffectiveWindow()
	return s.Before(end) && start.Before(e)
}

// Involves reports whether participant takes part in the booking under role.
func (b Booking) Involves(participantID string, role ParticipantRole) bool {
	switch role {
	case ParticipantArtist:
		return b.ArtistID == participantID
	case ParticipantStudio:
		return b.StudioID == participantID
	case ParticipantEngineer:
		return b.EngineerID == participantID
	}
	return false
}
