package domain

import "time"

// Weekday returns the weekday of t in loc with Sunday=0 ... Saturday=6.
// Every schedule and availability comparison goes through this helper.
func Weekday(t time.Time, loc *time.Location) int {
	return int(t.In(loc).Weekday())
}

// StartOfDay returns local midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	l := t.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, loc)
}

// MinuteOfDay returns the wall-clock minutes since midnight of t in loc.
func MinuteOfDay(t time.Time, loc *time.Location) int {
	l := t.In(loc)
	return l.Hour()*60 + l.Minute()
}
