package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"punchin/internal/domain"
)

func at(hour, minute int) time.Time {
	return time.Date(2024, 7, 8, hour, minute, 0, 0, time.UTC)
}

func iv(startHour, endHour int) Interval {
	return Interval{Start: at(startHour, 0), End: at(endHour, 0)}
}

func TestBaseWindows_NoHoursMeansWholeDay(t *testing.T) {
	dayStart := at(0, 0)
	dayEnd := dayStart.Add(24 * time.Hour)

	got := BaseWindows(domain.OperatingSchedule{}, dayStart, dayEnd)

	assert.Equal(t, []Interval{{Start: dayStart, End: dayEnd}}, got)
}

func TestBaseWindows_FiltersSortsAndClamps(t *testing.T) {
	schedule := domain.OperatingSchedule{
		RecurringHours: []domain.RecurringTimeRange{
			{Weekday: 1, StartMinutes: 20 * 60, DurationMinutes: 6 * 60},
			{Weekday: 2, StartMinutes: 9 * 60, DurationMinutes: 60},
			{Weekday: 1, StartMinutes: 9 * 60, DurationMinutes: 3 * 60},
		},
	}
	dayStart := at(0, 0)
	dayEnd := dayStart.Add(24 * time.Hour)

	got := BaseWindows(schedule, dayStart, dayEnd)

	require.Len(t, got, 2)
	assert.Equal(t, iv(9, 12), got[0])
	assert.True(t, got[1].Start.Equal(at(20, 0)))
	assert.True(t, got[1].End.Equal(dayEnd))
}

func TestBaseWindows_UsesScheduleZone(t *testing.T) {
	schedule := domain.OperatingSchedule{
		TimeZone:       "America/New_York",
		RecurringHours: []domain.RecurringTimeRange{{Weekday: 1, StartMinutes: 600, DurationMinutes: 60}},
	}
	dayStart := time.Date(2024, 7, 8, 0, 0, 0, 0, newYork)

	got := BaseWindows(schedule, dayStart, dayStart.AddDate(0, 0, 1))

	require.Len(t, got, 1)
	assert.True(t, got[0].Start.Equal(time.Date(2024, 7, 8, 14, 0, 0, 0, time.UTC)))
}

func TestClampedBookingInterval(t *testing.T) {
	dayStart, dayEnd := at(0, 0), at(0, 0).Add(24*time.Hour)

	overnight := domain.Booking{RequestedStart: at(22, 0), RequestedEnd: at(0, 0).Add(26 * time.Hour)}
	got := ClampedBookingInterval(overnight, dayStart, dayEnd)
	require.NotNil(t, got)
	assert.Equal(t, Interval{Start: at(22, 0), End: dayEnd}, *got)

	again := ClampedBookingInterval(domain.Booking{RequestedStart: got.Start, RequestedEnd: got.End}, dayStart, dayEnd)
	assert.Equal(t, got, again)

	yesterday := domain.Booking{RequestedStart: at(0, 0).Add(-3 * time.Hour), RequestedEnd: at(0, 0).Add(-time.Hour)}
	assert.Nil(t, ClampedBookingInterval(yesterday, dayStart, dayEnd))

	confirmedStart, confirmedEnd := at(15, 0), at(16, 0)
	moved := domain.Booking{
		RequestedStart: at(9, 0), RequestedEnd: at(10, 0),
		ConfirmedStart: &confirmedStart, ConfirmedEnd: &confirmedEnd,
	}
	assert.Equal(t, iv(15, 16), *ClampedBookingInterval(moved, dayStart, dayEnd))
}

func TestEntryIntervals(t *testing.T) {
	dayStart, dayEnd := at(0, 0), at(0, 0).Add(24*time.Hour)
	h := domain.EntryHeader{Kind: domain.AvailabilityBlock, Scope: domain.ScopeStudio, OwnerID: "studio-1"}

	abs, err := domain.NewAbsoluteEntry(h, domain.AbsoluteWindow{Start: at(23, 0), End: at(23, 0).Add(2 * time.Hour)})
	require.NoError(t, err)
	rec, err := domain.NewRecurringEntry(h, domain.RecurringWindow{Weekday: 1, StartMinutes: 60, DurationMinutes: 30})
	require.NoError(t, err)

	assert.Equal(t, Interval{Start: at(23, 0), End: dayEnd}, *EntryInterval(abs, dayStart, dayEnd))
	assert.Nil(t, EntryInterval(rec, dayStart, dayEnd))

	assert.Equal(t, Interval{Start: at(1, 0), End: at(1, 30)}, *RecurringEntryInterval(rec, dayStart, dayEnd, time.UTC))
	assert.Nil(t, RecurringEntryInterval(abs, dayStart, dayEnd, time.UTC))

	tuesday := dayStart.Add(24 * time.Hour)
	assert.Nil(t, RecurringEntryInterval(rec, tuesday, tuesday.Add(24*time.Hour), time.UTC))
}

func TestSubtract(t *testing.T) {
	tests := []struct {
		name    string
		in      []Interval
		removal Interval
		want    []Interval
	}{
		{"split in two", []Interval{iv(9, 17)}, iv(12, 13), []Interval{iv(9, 12), iv(13, 17)}},
		{"trim start", []Interval{iv(9, 17)}, iv(8, 10), []Interval{iv(10, 17)}},
		{"trim end", []Interval{iv(9, 17)}, iv(16, 18), []Interval{iv(9, 16)}},
		{"remove all", []Interval{iv(9, 17)}, iv(9, 17), []Interval{}},
		{"no overlap", []Interval{iv(9, 12)}, iv(12, 13), []Interval{iv(9, 12)}},
		{"several", []Interval{iv(9, 11), iv(12, 14), iv(15, 17)}, iv(10, 16), []Interval{iv(9, 10), iv(16, 17)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Subtract(tt.in, tt.removal)
			assert.Equal(t, tt.want, got)
			for _, g := range got {
				assert.True(t, g.Valid())
				assert.False(t, g.Overlaps(tt.removal))
			}
		})
	}
}

func TestSubtract_PreservesUncoveredTime(t *testing.T) {
	base := iv(9, 17)
	removal := iv(11, 14)

	got := Subtract([]Interval{base}, removal)

	var total time.Duration
	for _, g := range got {
		assert.True(t, base.Contains(g))
		total += g.Duration()
	}
	assert.Equal(t, base.Duration()-removal.Duration(), total)
}

func TestMergeOverlapping(t *testing.T) {
	in := []Interval{iv(14, 15), iv(9, 11), iv(10, 12), iv(12, 13), iv(16, 17)}

	got := MergeOverlapping(in)

	assert.Equal(t, []Interval{iv(9, 13), iv(14, 15), iv(16, 17)}, got)
	assert.Equal(t, got, MergeOverlapping(got))

	reversed := make([]Interval, len(in))
	for i := range in {
		reversed[len(in)-1-i] = in[i]
	}
	assert.Equal(t, got, MergeOverlapping(reversed))
	assert.Empty(t, MergeOverlapping(nil))
}
