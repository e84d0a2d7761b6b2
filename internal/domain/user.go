package domain

import (
	"fmt"
	"strings"
	"time"
)

// DefaultQuotaTotal is the number of messages a user may send per day.
const DefaultQuotaTotal = 10

type User struct {
	Name           string
	QuotaTotal     int
	RemainingUsage int
	RegisteredAt   time.Time
	// LastResetAt is when the quota was last refilled. Zero means it never was.
	LastResetAt time.Time
}

func NewUser(name string, now time.Time) User {
	now = Instant(now)

	return User{
		Name:           strings.TrimSpace(name),
		QuotaTotal:     DefaultQuotaTotal,
		RemainingUsage: DefaultQuotaTotal,
		RegisteredAt:   now,
		LastResetAt:    now,
	}
}

func (u User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if u.QuotaTotal <= 0 {
		return fmt.Errorf("quota total must be positive, got %d", u.QuotaTotal)
	}
	if u.RemainingUsage < 0 || u.RemainingUsage > u.QuotaTotal {
		return fmt.Errorf("remaining usage %d out of range 0..%d", u.RemainingUsage, u.QuotaTotal)
	}

	return nil
}

// Instant normalizes t to the form a persisted record decodes back to: UTC
// without a monotonic reading.
func Instant(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}

	return t.UTC().Round(0)
}

// QuotaAnchor is the instant the current quota window started counting from.
func (u User) QuotaAnchor() time.Time {
	if !u.LastResetAt.IsZero() {
		return u.LastResetAt
	}

	return u.RegisteredAt
}
