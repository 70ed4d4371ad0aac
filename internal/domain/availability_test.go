package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func studioHeader(kind AvailabilityKind) EntryHeader {
	return EntryHeader{ID: "a1", Kind: kind, Scope: ScopeStudio, OwnerID: "studio-1", StudioID: "studio-1"}
}

func TestNewRecurringEntry_Validation(t *testing.T) {
	_, err := NewRecurringEntry(studioHeader(AvailabilityBlock), RecurringWindow{Weekday: 7, StartMinutes: 0, DurationMinutes: 60})
	assert.ErrorIs(t, err, ErrMalformedEntry)

	_, err = NewRecurringEntry(studioHeader(AvailabilityBlock), RecurringWindow{Weekday: 1, StartMinutes: 24 * 60, DurationMinutes: 60})
	assert.ErrorIs(t, err, ErrMalformedEntry)

	_, err = NewRecurringEntry(studioHeader(AvailabilityBlock), RecurringWindow{Weekday: 1, StartMinutes: 600, DurationMinutes: 0})
	assert.ErrorIs(t, err, ErrMalformedEntry)

	e, err := NewRecurringEntry(studioHeader(AvailabilityBlock), RecurringWindow{Weekday: 1, StartMinutes: 600, DurationMinutes: 90})
	require.NoError(t, err)
	w, ok := e.Recurring()
	assert.True(t, ok)
	assert.Equal(t, 690, w.EndMinutes())
	_, ok = e.Absolute()
	assert.False(t, ok)
}

func TestNewAbsoluteEntry_Validation(t *testing.T) {
	start := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)

	_, err := NewAbsoluteEntry(studioHeader(AvailabilityBlock), AbsoluteWindow{Start: start, End: start})
	assert.ErrorIs(t, err, ErrMalformedEntry)

	e, err := NewAbsoluteEntry(studioHeader(AvailabilityBookingHold), AbsoluteWindow{Start: start, End: start.Add(time.Hour)})
	require.NoError(t, err)
	_, ok := e.Recurring()
	assert.False(t, ok)
	w, ok := e.Absolute()
	assert.True(t, ok)
	assert.Equal(t, start.Add(time.Hour), w.End)
}

func TestEntryHeader_Validation(t *testing.T) {
	w := RecurringWindow{Weekday: 1, StartMinutes: 60, DurationMinutes: 60}

	h := studioHeader("vacation")
	_, err := NewRecurringEntry(h, w)
	assert.ErrorIs(t, err, ErrMalformedEntry)

	h = studioHeader(AvailabilityBlock)
	h.OwnerID = ""
	_, err = NewRecurringEntry(h, w)
	assert.ErrorIs(t, err, ErrMalformedEntry)

	h = EntryHeader{Kind: AvailabilityBlock, Scope: ScopeEngineer, OwnerID: "eng-1", RoomID: "room-a"}
	_, err = NewRecurringEntry(h, w)
	assert.ErrorIs(t, err, ErrMalformedEntry)
}

func TestAvailabilityKind_Blocking(t *testing.T) {
	assert.False(t, AvailabilityRecurring.Blocking())
	assert.True(t, AvailabilityBlock.Blocking())
	assert.True(t, AvailabilityBookingHold.Blocking())
	assert.True(t, AvailabilitySelfBooking.Blocking())
}

func TestAvailabilityEntry_AppliesToRoom(t *testing.T) {
	e, err := NewRecurringEntry(studioHeader(AvailabilityBlock), RecurringWindow{Weekday: 2, StartMinutes: 0, DurationMinutes: 30})
	require.NoError(t, err)
	assert.True(t, e.AppliesToRoom("room-a"))

	e.RoomID = "room-b"
	assert.False(t, e.AppliesToRoom("room-a"))
	assert.True(t, e.AppliesToRoom("room-b"))
}

func TestAvailabilityEntry_JSON(t *testing.T) {
	start := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)
	e, err := NewAbsoluteEntry(studioHeader(AvailabilityBlock), AbsoluteWindow{Start: start, End: start.Add(2 * time.Hour)})
	require.NoError(t, err)

	raw, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"absolute"`)
	assert.NotContains(t, string(raw), `"recurring"`)

	var decoded AvailabilityEntry
	require.NoError(t, json.Unmarshal(raw, &decoded))
	w, ok := decoded.Absolute()
	require.True(t, ok)
	assert.True(t, w.Start.Equal(start))

	both := `{"kind":"block","scope":"studio","owner_id":"s","recurring":{"weekday":1,"start_minutes":0,"duration_minutes":30},"absolute":{"start":"2024-07-01T10:00:00Z","end":"2024-07-01T11:00:00Z"}}`
	assert.ErrorIs(t, json.Unmarshal([]byte(both), &decoded), ErrMalformedEntry)

	neither := `{"kind":"block","scope":"studio","owner_id":"s"}`
	assert.ErrorIs(t, json.Unmarshal([]byte(neither), &decoded), ErrMalformedEntry)
}
