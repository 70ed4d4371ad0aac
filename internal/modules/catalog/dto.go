package catalog

import (
	"time"

	"punchin/internal/domain"
)

type StudioListResponse struct {
	Studios    []domain.Studio `json:"studios"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	TotalPages int             `json:"total_pages"`
}

type FreeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type FreeWindowsResponse struct {
	StudioID string       `json:"studio_id"`
	RoomID   string       `json:"room_id"`
	Date     string       `json:"date"`
	TimeZone string       `json:"time_zone"`
	Windows  []FreeWindow `json:"windows"`
}
