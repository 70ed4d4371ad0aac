package booking

import (
	"errors"

	"punchin/internal/domain"
)

var (
	ErrInvalidDuration         = errors.New("session duration out of range")
	ErrStudioClosed            = errors.New("studio closed at requested time")
	ErrStudioBlackout          = errors.New("studio unavailable on requested date")
	ErrRoomUnavailable         = errors.New("room unavailable")
	ErrEngineerUnavailable     = errors.New("engineer unavailable")
	ErrMissingEngineer         = errors.New("engineer is required")
	ErrMissingRoom             = errors.New("room is required")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrForbidden               = errors.New("forbidden")

	// Store errors shared with the repository adapters.
	ErrBookingConflict = domain.ErrBookingConflict
	ErrNotFound        = domain.ErrNotFound
)

// UserMessage returns the text shown to the person making the request.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidDuration):
		return "Sessions must be between 30 minutes and 12 hours."
	case errors.Is(err, ErrStudioClosed):
		return "The studio is closed at the requested time."
	case errors.Is(err, ErrStudioBlackout):
		return "The studio is not taking bookings on that date."
	case errors.Is(err, ErrRoomUnavailable):
		return "That room is already booked for the requested time."
	case errors.Is(err, ErrEngineerUnavailable):
		return "The engineer is not available for the requested time."
	case errors.Is(err, ErrMissingEngineer):
		return "Choose an engineer for this session."
	case errors.Is(err, ErrMissingRoom):
		return "Choose a room for this session."
	case errors.Is(err, ErrBookingConflict):
		return "Someone else just booked this slot. Pick another time."
	case errors.Is(err, ErrInvalidStatusTransition):
		return "This booking can no longer be changed that way."
	case errors.Is(err, ErrNotFound):
		return "Not found."
	case errors.Is(err, ErrForbidden):
		return "You are not allowed to change this booking."
	default:
		return "Something went wrong. Please try again."
	}
}
