package domain

import "time"

type UserRole string

const (
	RoleArtist   UserRole = "artist"
	RoleEngineer UserRole = "engineer"
	RoleStudio   UserRole = "studio_owner"
	RoleProducer UserRole = "producer"
)

// DefaultSessionDurationMinutes applies when a profile does not carry its own value.
const DefaultSessionDurationMinutes = 60

// EngineerSettings is the booking-relevant subset of an engineer profile.
// It is read-only to the booking service.
type EngineerSettings struct {
	IsPremium                     bool       `json:"is_premium"`
	InstantBookEnabled            bool       `json:"instant_book_enabled"`
	MainStudioID                  string     `json:"main_studio_id,omitempty"`
	AllowOtherStudios             bool       `json:"allow_other_studios"`
	MainStudioSelectedAt          *time.Time `json:"main_studio_selected_at,omitempty"`
	DefaultSessionDurationMinutes int        `json:"default_session_duration_minutes"`
}

type UserProfile struct {
	ID          string           `json:"id"`
	DisplayName string           `json:"display_name"`
	Role        UserRole         `json:"role"`
	Engineer    EngineerSettings `json:"engineer_settings"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}
