package domain

import "time"

// DefaultResetHour is the local hour at which the daily quota refills.
const DefaultResetHour = 7

// DailyResetPolicy refills the quota once per day at Hour:00 in Location.
type DailyResetPolicy struct {
	Hour     int
	Location *time.Location
}

func NewDailyResetPolicy(hour int, loc *time.Location) DailyResetPolicy {
	if hour < 0 || hour > 23 {
		hour = DefaultResetHour
	}
	if loc == nil {
		loc = time.Local
	}

	return DailyResetPolicy{Hour: hour, Location: loc}
}

// LastBoundary returns the most recent reset boundary at or before now.
func (p DailyResetPolicy) LastBoundary(now time.Time) time.Time {
	local := now.In(p.location())
	boundary := time.Date(local.Year(), local.Month(), local.Day(), p.Hour, 0, 0, 0, p.location())
	if boundary.After(local) {
		boundary = boundary.AddDate(0, 0, -1)
	}

	return boundary
}

// NextBoundary returns the first reset boundary strictly after now.
func (p DailyResetPolicy) NextBoundary(now time.Time) time.Time {
	return p.LastBoundary(now).AddDate(0, 0, 1)
}

// ShouldReset reports whether a boundary has passed since the user's quota
// window started.
func (p DailyResetPolicy) ShouldReset(user User, now time.Time) bool {
	anchor := user.QuotaAnchor()
	if anchor.IsZero() {
		return true
	}

	return anchor.Before(p.LastBoundary(now))
}

func (p DailyResetPolicy) location() *time.Location {
	if p.Location == nil {
		return time.Local
	}

	return p.Location
}

// NeverReset leaves refills to an external collaborator.
type NeverReset struct{}

func (NeverReset) ShouldReset(User, time.Time) bool {
	return false
}
