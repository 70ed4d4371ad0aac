package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to BookingStatus
		ok       bool
	}{
		{BookingPending, BookingConfirmed, true},
		{BookingPending, BookingCancelled, true},
		{BookingPending, BookingRescheduled, true},
		{BookingPending, BookingCompleted, false},
		{BookingConfirmed, BookingCompleted, true},
		{BookingConfirmed, BookingCancelled, true},
		{BookingConfirmed, BookingRescheduled, true},
		{BookingConfirmed, BookingPending, false},
		{BookingRescheduled, BookingConfirmed, true},
		{BookingRescheduled, BookingCompleted, false},
		{BookingCompleted, BookingCancelled, false},
		{BookingCancelled, BookingConfirmed, false},
		{BookingCancelled, BookingRescheduled, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestBookingStatus_Live(t *testing.T) {
	assert.True(t, BookingPending.IsLive())
	assert.True(t, BookingConfirmed.IsLive())
	assert.True(t, BookingRescheduled.IsLive())
	assert.False(t, BookingCompleted.IsLive())
	assert.False(t, BookingCancelled.IsLive())

	assert.True(t, BookingCancelled.IsTerminal())
	assert.True(t, BookingCompleted.IsTerminal())
}

func TestParseBookingStatus_DefaultsToPending(t *testing.T) {
	assert.Equal(t, BookingConfirmed, ParseBookingStatus("confirmed"))
	assert.Equal(t, BookingPending, ParseBookingStatus(""))
	assert.Equal(t, BookingPending, ParseBookingStatus("rejected"))
}

func TestBooking_EffectiveWindow(t *testing.T) {
	start := time.Date(2024, 7, 1, 14, 0, 0, 0, time.UTC)
	b := Booking{RequestedStart: start, RequestedEnd: start.Add(time.Hour)}

	s, e := b.EffectiveWindow()
	assert.Equal(t, start, s)
	assert.Equal(t, start.Add(time.Hour), e)

	cs, ce := start.Add(2*time.Hour), start.Add(3*time.Hour)
	b.ConfirmedStart, b.ConfirmedEnd = &cs, &ce
	s, e = b.EffectiveWindow()
	assert.Equal(t, cs, s)
	assert.Equal(t, ce, e)

	assert.True(t, b.OverlapsWindow(start.Add(150*time.Minute), start.Add(4*time.Hour)))
	assert.False(t, b.OverlapsWindow(start.Add(3*time.Hour), start.Add(4*time.Hour)))
}

func TestBooking_Involves(t *testing.T) {
	b := Booking{ArtistID: "art", StudioID: "std", EngineerID: "eng"}
	assert.True(t, b.Involves("art", ParticipantArtist))
	assert.True(t, b.Involves("std", ParticipantStudio))
	assert.True(t, b.Involves("eng", ParticipantEngineer))
	assert.False(t, b.Involves("art", ParticipantEngineer))
	assert.False(t, b.Involves("art", "admin"))
}
