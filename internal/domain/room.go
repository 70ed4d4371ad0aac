package domain

import "time"

// Room belongs to exactly one studio. One room per studio should be the default,
// which is not enforced.
type Room struct {
	ID         string    `json:"id"`
	StudioID   string    `json:"studio_id"`
	Name       string    `json:"name"`
	HourlyRate *float64  `json:"hourly_rate,omitempty"`
	Capacity   *int      `json:"capacity,omitempty"`
	Amenities  []string  `json:"amenities,omitempty"`
	IsDefault  bool      `json:"is_default"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
