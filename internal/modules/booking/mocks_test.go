package booking

import (
	"context"

	"github.com/stretchr/testify/mock"

	"punchin/internal/domain"
)

type MockStudioRepository struct {
	mock.Mock
}

func (m *MockStudioRepository) FetchStudios(ctx context.Context) ([]domain.Studio, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Studio), args.Error(1)
}

func (m *MockStudioRepository) LoadStudio(ctx context.Context, id string) (*domain.Studio, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Studio), args.Error(1)
}

func (m *MockStudioRepository) FetchRooms(ctx context.Context, studioID string) ([]domain.Room, error) {
	args := m.Called(ctx, studioID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Room), args.Error(1)
}

type MockAvailabilityRepository struct {
	mock.Mock
}

func (m *MockAvailabilityRepository) FetchAvailability(ctx context.Context, scope domain.AvailabilityScope, ownerID string) ([]domain.AvailabilityEntry, error) {
	args := m.Called(ctx, scope, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AvailabilityEntry), args.Error(1)
}

func (m *MockAvailabilityRepository) LoadAvailability(ctx context.Context, id string) (*domain.AvailabilityEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AvailabilityEntry), args.Error(1)
}

func (m *MockAvailabilityRepository) CreateAvailability(ctx context.Context, e *domain.AvailabilityEntry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockAvailabilityRepository) DeleteAvailability(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) FetchUserProfiles(ctx context.Context, ids []string) ([]domain.UserProfile, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.UserProfile), args.Error(1)
}

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) FetchBookings(ctx context.Context, participantID string, role domain.ParticipantRole) ([]domain.Booking, error) {
	args := m.Called(ctx, participantID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) LoadBooking(ctx context.Context, id string) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	// hand out a copy so the service cannot mutate the fixture
	b := *args.Get(0).(*domain.Booking)
	return &b, args.Error(1)
}

func (m *MockBookingRepository) CreateBooking(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBookingRepository) UpdateBooking(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}
