package booking

import (
	"time"

	"punchin/internal/domain"
)

// EntryOverlaps tests an entry's window against [start, end). Recurring entries compare
// weekday and minute-of-day in loc; absolute entries compare instants.
func EntryOverlaps(e domain.AvailabilityEntry, start, end time.Time, loc *time.Location) bool {
	if w, ok := e.Absolute(); ok {
		return maxTime(w.Start, start).Before(minTime(w.End, end))
	}
	w, ok := e.Recurring()
	if !ok {
		return false
	}
	if domain.Weekday(start, loc) != w.Weekday {
		return false
	}
	candStart := domain.MinuteOfDay(start, loc)
	candEnd := candStart + int(end.Sub(start)/time.Minute)
	return candStart < w.EndMinutes() && candEnd > w.StartMinutes
}

// EntryConflicts is true for blocking entries that overlap the window.
func EntryConflicts(e domain.AvailabilityEntry, start, end time.Time, loc *time.Location) bool {
	return e.IsBlocking() && EntryOverlaps(e, start, end, loc)
}

// ConflictFree reports whether no entry blocks [start, end).
func ConflictFree(entries []domain.AvailabilityEntry, start, end time.Time, loc *time.Location) bool {
	for _, e := range entries {
		if EntryConflicts(e, start, end, loc) {
			return false
		}
	}
	return true
}

// BookingsConflict: same studio, sharing a room or an engineer, both live, overlapping windows.
func BookingsConflict(a, b domain.Booking) bool {
	if a.StudioID != b.StudioID {
		return false
	}
	if a.RoomID != b.RoomID && a.EngineerID != b.EngineerID {
		return false
	}
	if !a.IsLive() || !b.IsLive() {
		return false
	}
	start, end := a.EffectiveWindow()
	return b.OverlapsWindow(start, end)
}

// FirstConflictingBooking returns the first existing booking that conflicts with candidate,
// skipping the booking with id excludeID.
func FirstConflictingBooking(existing []domain.Booking, candidate domain.Booking, excludeID string) *domain.Booking {
	for i := range existing {
		if excludeID != "" && existing[i].ID == excludeID {
			continue
		}
		if BookingsConflict(candidate, existing[i]) {
			return &existing[i]
		}
	}
	return nil
}

// EngineerBusy reports whether the engineer holds a live booking overlapping the window
// in any studio.
func EngineerBusy(existing []domain.Booking, engineerID string, start, end time.Time, excludeID string) bool {
	for _, b := range existing {
		if excludeID != "" && b.ID == excludeID {
			continue
		}
		if b.EngineerID == engineerID && b.IsLive() && b.OverlapsWindow(start, end) {
			return true
		}
	}
	return false
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
