package domain

import "time"

// DateLayout is the calendar date format used for blackout dates.
const DateLayout = "2006-01-02"

// RecurringTimeRange is a weekly open window. Weekday uses 0=Sunday.
type RecurringTimeRange struct {
	Weekday         int `json:"weekday"`
	StartMinutes    int `json:"start_minutes"`
	DurationMinutes int `json:"duration_minutes"`
}

func (r RecurringTimeRange) EndMinutes() int {
	return r.StartMinutes + r.DurationMinutes
}

// OperatingSchedule is interpreted entirely in its own time zone.
type OperatingSchedule struct {
	TimeZone       string               `json:"time_zone"`
	RecurringHours []RecurringTimeRange `json:"recurring_hours"`
	BlackoutDates  []string             `json:"blackout_dates"`
}

// Location resolves TimeZone, falling back to UTC when it is empty or unknown.
func (s OperatingSchedule) Location() *time.Location {
	if s.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// AlwaysOpen reports whether the schedule defines no recurring hours at all.
func (s OperatingSchedule) AlwaysOpen() bool {
	return len(s.RecurringHours) == 0
}

// IsBlackout reports whether t falls on a blackout date in the schedule's zone.
func (s OperatingSchedule) IsBlackout(t time.Time) bool {
	day := t.In(s.Location()).Format(DateLayout)
	for _, d := range s.BlackoutDates {
		if d == day {
			return true
		}
	}
	return false
}

type Studio struct {
	ID                  string            `json:"id"`
	OwnerID             string            `json:"owner_id"`
	Name                string            `json:"name"`
	City                string            `json:"city,omitempty"`
	Address             string            `json:"address,omitempty"`
	HourlyRate          *float64          `json:"hourly_rate,omitempty"`
	ApprovedEngineerIDs []string          `json:"approved_engineer_ids"`
	AutoApproveRequests bool              `json:"auto_approve_requests"`
	OperatingSchedule   OperatingSchedule `json:"operating_schedule"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
}

func (s Studio) HasApprovedEngineer(id string) bool {
	for _, e := range s.ApprovedEngineerIDs {
		if e == id {
			return true
		}
	}
	return false
}
