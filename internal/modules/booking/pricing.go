package booking

import (
	"math"

	"punchin/internal/domain"
)

const DefaultCurrency = "USD"

// ResolvePricing prices a session from the room rate, falling back to the studio rate.
// Without either rate the booking is unpriced and nil is returned.
func ResolvePricing(studio domain.Studio, room domain.Room, durationMinutes int, currency string) *domain.BookingPricing {
	rate := room.HourlyRate
	if rate == nil {
		rate = studio.HourlyRate
	}
	if rate == nil {
		return nil
	}
	if currency == "" {
		currency = DefaultCurrency
	}

	total := *rate * float64(durationMinutes) / 60
	total = math.Round(total*100) / 100

	return &domain.BookingPricing{
		HourlyRate: *rate,
		Total:      total,
		Currency:   currency,
	}
}
