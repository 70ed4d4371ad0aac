package booking

import (
	"context"

	"punchin/internal/domain"
)

type StudioRepository interface {
	FetchStudios(ctx context.Context) ([]domain.Studio, error)
	LoadStudio(ctx context.Context, id string) (*domain.Studio, error)
	FetchRooms(ctx context.Context, studioID string) ([]domain.Room, error)
}

type AvailabilityRepository interface {
	FetchAvailability(ctx context.Context, scope domain.AvailabilityScope, ownerID string) ([]domain.AvailabilityEntry, error)
	LoadAvailability(ctx context.Context, id string) (*domain.AvailabilityEntry, error)
	CreateAvailability(ctx context.Context, e *domain.AvailabilityEntry) error
	DeleteAvailability(ctx context.Context, id string) error
}

type ProfileRepository interface {
	// FetchUserProfiles returns the profiles that exist; order is not guaranteed.
	FetchUserProfiles(ctx context.Context, ids []string) ([]domain.UserProfile, error)
}

type BookingRepository interface {
	FetchBookings(ctx context.Context, participantID string, role domain.ParticipantRole) ([]domain.Booking, error)
	LoadBooking(ctx context.Context, id string) (*domain.Booking, error)
	// CreateBooking returns domain.ErrBookingConflict when the store rejects an overlapping write.
	CreateBooking(ctx context.Context, b *domain.Booking) error
	// UpdateBooking upserts b, merging over the stored record.
	UpdateBooking(ctx context.Context, b *domain.Booking) error
}

// Locker serializes validate-then-write sequences on the given keys.
type Locker interface {
	Lock(ctx context.Context, keys ...string) (unlock func(), err error)
}
