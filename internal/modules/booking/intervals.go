package booking

import (
	"sort"
	"time"

	"punchin/internal/domain"
)

// Interval is a half-open [Start, End) range.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (i Interval) Valid() bool {
	return i.End.After(i.Start)
}

func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

func (i Interval) Contains(o Interval) bool {
	return !o.Start.Before(i.Start) && !o.End.After(i.End)
}

// BaseWindows returns the concrete operating windows of the day starting at dayStart.
// A schedule without recurring hours is open for the whole day.
func BaseWindows(schedule domain.OperatingSchedule, dayStart, dayEnd time.Time) []Interval {
	if schedule.AlwaysOpen() {
		return []Interval{{Start: dayStart, End: dayEnd}}
	}

	loc := schedule.Location()
	weekday := domain.Weekday(dayStart, loc)
	midnight := domain.StartOfDay(dayStart, loc)

	ranges := make([]domain.RecurringTimeRange, 0, len(schedule.RecurringHours))
	for _, r := range schedule.RecurringHours {
		if r.Weekday == weekday {
			ranges = append(ranges, r)
		}
	}
	sort.SliceStable(ranges, func(i, j int) bool { return ranges[i].StartMinutes < ranges[j].StartMinutes })

	out := make([]Interval, 0, len(ranges))
	for _, r := range ranges {
		start := time.Date(midnight.Year(), midnight.Month(), midnight.Day(), 0, r.StartMinutes, 0, 0, loc)
		end := start.Add(time.Duration(r.DurationMinutes) * time.Minute)
		if end.After(dayEnd) {
			end = dayEnd
		}
		if !end.After(start) {
			continue
		}
		out = append(out, Interval{Start: start, End: end})
	}
	return out
}

// ClampedBookingInterval clamps the booking's effective window to the day, or returns nil.
func ClampedBookingInterval(b domain.Booking, dayStart, dayEnd time.Time) *Interval {
	start, end := b.EffectiveWindow()
	return clamp(Interval{Start: start, End: end}, dayStart, dayEnd)
}

// EntryInterval clamps an absolute-form entry to the day. Recurring entries yield nil.
func EntryInterval(e domain.AvailabilityEntry, dayStart, dayEnd time.Time) *Interval {
	w, ok := e.Absolute()
	if !ok {
		return nil
	}
	return clamp(Interval{Start: w.Start, End: w.End}, dayStart, dayEnd)
}

// RecurringEntryInterval projects a recurring-form entry onto the day in loc and clamps it.
// It yields nil when the entry is absolute or falls on another weekday.
func RecurringEntryInterval(e domain.AvailabilityEntry, dayStart, dayEnd time.Time, loc *time.Location) *Interval {
	w, ok := e.Recurring()
	if !ok || domain.Weekday(dayStart, loc) != w.Weekday {
		return nil
	}
	midnight := domain.StartOfDay(dayStart, loc)
	start := time.Date(midnight.Year(), midnight.Month(), midnight.Day(), 0, w.StartMinutes, 0, 0, loc)
	end := start.Add(time.Duration(w.DurationMinutes) * time.Minute)
	return clamp(Interval{Start: start, End: end}, dayStart, dayEnd)
}

func clamp(iv Interval, dayStart, dayEnd time.Time) *Interval {
	if iv.Start.Before(dayStart) {
		iv.Start = dayStart
	}
	if iv.End.After(dayEnd) {
		iv.End = dayEnd
	}
	if !iv.Valid() {
		return nil
	}
	return &iv
}

// Subtract removes removal from every interval, splitting overlapped ones into at most
// two remainders. Empty pieces are never emitted.
func Subtract(intervals []Interval, removal Interval) []Interval {
	out := make([]Interval, 0, len(intervals)+1)
	for _, iv := range intervals {
		if !iv.Valid() {
			continue
		}
		if !removal.Valid() || !iv.Overlaps(removal) {
			out = append(out, iv)
			continue
		}
		if removal.Start.After(iv.Start) {
			out = append(out, Interval{Start: iv.Start, End: removal.Start})
		}
		if removal.End.Before(iv.End) {
			out = append(out, Interval{Start: removal.End, End: iv.End})
		}
	}
	return out
}

// MergeOverlapping folds overlapping or touching intervals into single spans.
func MergeOverlapping(intervals []Interval) []Interval {
	sorted := make([]Interval, 0, len(intervals))
	for _, iv := range intervals {
		if iv.Valid() {
			sorted = append(sorted, iv)
		}
	}
	if len(sorted) == 0 {
		return sorted
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	merged := []Interval{sorted[0]}
	for _, next := range sorted[1:] {
		cur := &merged[len(merged)-1]
		if !cur.End.Before(next.Start) {
			if next.End.After(cur.End) {
				cur.End = next.End
			}
			continue
		}
		merged = append(merged, next)
	}
	return merged
}
