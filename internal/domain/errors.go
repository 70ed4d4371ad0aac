package domain

import "errors"

var (
	// ErrNotFound is returned by stores when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrBookingConflict is returned by stores when a write would overlap a live booking.
	ErrBookingConflict = errors.New("booking conflicts with an existing booking")
	// ErrMalformedEntry marks an availability entry without exactly one payload shape.
	ErrMalformedEntry = errors.New("malformed availability entry")
)
