package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

type AvailabilityKind string

const (
	// AvailabilityRecurring describes when something is open. It never blocks.
	AvailabilityRecurring   AvailabilityKind = "recurring"
	AvailabilityBlock       AvailabilityKind = "block"
	AvailabilityBookingHold AvailabilityKind = "bookingHold"
	AvailabilitySelfBooking AvailabilityKind = "selfBooking"
)

func (k AvailabilityKind) Valid() bool {
	switch k {
	case AvailabilityRecurring, AvailabilityBlock, AvailabilityBookingHold, AvailabilitySelfBooking:
		return true
	}
	return false
}

// Blocking reports whether entries of this kind exclude their window from use.
func (k AvailabilityKind) Blocking() bool {
	return k == AvailabilityBlock || k == AvailabilityBookingHold || k == AvailabilitySelfBooking
}

type AvailabilityScope string

const (
	ScopeStudio   AvailabilityScope = "studio"
	ScopeEngineer AvailabilityScope = "engineer"
)

func (s AvailabilityScope) Valid() bool {
	return s == ScopeStudio || s == ScopeEngineer
}

// RecurringWindow repeats every week on Weekday (0=Sunday).
type RecurringWindow struct {
	Weekday         int `json:"weekday"`
	StartMinutes    int `json:"start_minutes"`
	DurationMinutes int `json:"duration_minutes"`
}

func (w RecurringWindow) EndMinutes() int {
	return w.StartMinutes + w.DurationMinutes
}

// AbsoluteWindow is a one-off [Start, End) range.
type AbsoluteWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// EntryHeader carries the fields shared by both entry shapes. Empty strings mean absent.
type EntryHeader struct {
	ID              string            `json:"id"`
	Kind            AvailabilityKind  `json:"kind"`
	Scope           AvailabilityScope `json:"scope"`
	OwnerID         string            `json:"owner_id"`
	StudioID        string            `json:"studio_id,omitempty"`
	RoomID          string            `json:"room_id,omitempty"`
	EngineerID      string            `json:"engineer_id,omitempty"`
	SourceBookingID string            `json:"source_booking_id,omitempty"`
	CreatedBy       string            `json:"created_by,omitempty"`
	Note            string            `json:"note,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// AvailabilityEntry holds exactly one of a recurring or an absolute window.
// Build it with NewRecurringEntry or NewAbsoluteEntry.
type AvailabilityEntry struct {
	EntryHeader
	recurring *RecurringWindow
	absolute  *AbsoluteWindow
}

func NewRecurringEntry(h EntryHeader, w RecurringWindow) (AvailabilityEntry, error) {
	if err := h.validate(); err != nil {
		return AvailabilityEntry{}, err
	}
	if w.Weekday < 0 || w.Weekday > 6 {
		return AvailabilityEntry{}, fmt.Errorf("%w: weekday %d out of range", ErrMalformedEntry, w.Weekday)
	}
	if w.StartMinutes < 0 || w.StartMinutes >= 24*60 {
		return AvailabilityEntry{}, fmt.Errorf("%w: start minute %d out of range", ErrMalformedEntry, w.StartMinutes)
	}
	if w.DurationMinutes <= 0 {
		return AvailabilityEntry{}, fmt.Errorf("%w: duration must be positive", ErrMalformedEntry)
	}
	return AvailabilityEntry{EntryHeader: h, recurring: &w}, nil
}

func NewAbsoluteEntry(h EntryHeader, w AbsoluteWindow) (AvailabilityEntry, error) {
	if err := h.validate(); err != nil {
		return AvailabilityEntry{}, err
	}
	if !w.End.After(w.Start) {
		return AvailabilityEntry{}, fmt.Errorf("%w: end must be after start", ErrMalformedEntry)
	}
	return AvailabilityEntry{EntryHeader: h, absolute: &w}, nil
}

func (h EntryHeader) validate() error {
	if !h.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrMalformedEntry, h.Kind)
	}
	if !h.Scope.Valid() {
		return fmt.Errorf("%w: unknown scope %q", ErrMalformedEntry, h.Scope)
	}
	if h.OwnerID == "" {
		return fmt.Errorf("%w: owner id is required", ErrMalformedEntry)
	}
	if h.Scope == ScopeEngineer && h.RoomID != "" {
		return fmt.Errorf("%w: room id is only valid on studio entries", ErrMalformedEntry)
	}
	return nil
}

func (e AvailabilityEntry) Recurring() (RecurringWindow, bool) {
	if e.recurring == nil {
		return RecurringWindow{}, false
	}
	return *e.recurring, true
}

func (e AvailabilityEntry) Absolute() (AbsoluteWindow, bool) {
	if e.absolute == nil {
		return AbsoluteWindow{}, false
	}
	return *e.absolute, true
}

// IsBlocking reports whether the entry excludes its window from use.
func (e AvailabilityEntry) IsBlocking() bool {
	return e.Kind.Blocking()
}

// AppliesToRoom is true for room-less studio entries and entries scoped to roomID.
func (e AvailabilityEntry) AppliesToRoom(roomID string) bool {
	return e.RoomID == "" || e.RoomID == roomID
}

type availabilityEntryJSON struct {
	EntryHeader
	Recurring *RecurringWindow `json:"recurring,omitempty"`
	Absolute  *AbsoluteWindow  `json:"absolute,omitempty"`
}

func (e AvailabilityEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(availabilityEntryJSON{
		EntryHeader: e.EntryHeader,
		Recurring:   e.recurring,
		Absolute:    e.absolute,
	})
}

func (e *AvailabilityEntry) UnmarshalJSON(data []byte) error {
	var raw availabilityEntryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var (
		entry AvailabilityEntry
		err   error
	)
	switch {
	case raw.Recurring != nil && raw.Absolute == nil:
		entry, err = NewRecurringEntry(raw.EntryHeader, *raw.Recurring)
	case raw.Absolute != nil && raw.Recurring == nil:
		entry, err = NewAbsoluteEntry(raw.EntryHeader, *raw.Absolute)
	default:
		err = fmt.Errorf("%w: exactly one of recurring or absolute is required", ErrMalformedEntry)
	}
	if err != nil {
		return err
	}
	*e = entry
	return nil
}
