package application

import (
	"context"
	"time"

	"github.com/bnema/dchat/internal/domain"
)

// Status is the read model behind `dchat status`.
type Status struct {
	Name           string    `json:"name"`
	QuotaTotal     int       `json:"quotaTotal"`
	RemainingUsage int       `json:"remainingUsage"`
	RegisteredAt   time.Time `json:"registeredAt"`
	LastResetAt    time.Time `json:"lastResetAt,omitzero"`
	NextResetAt    time.Time `json:"nextResetAt"`
	ResetHour      int       `json:"resetHour"`
	Theme          string    `json:"theme,omitempty"`
}

func (s Status) CanSend() bool {
	return s.RemainingUsage > 0
}

func (s Status) UsedPercent() float64 {
	if s.QuotaTotal <= 0 {
		return 100
	}

	return float64(s.QuotaTotal-s.RemainingUsage) / float64(s.QuotaTotal) * 100
}

func StatusFor(user domain.User, nextReset time.Time, resetHour int) Status {
	return Status{
		Name:           user.Name,
		QuotaTotal:     user.QuotaTotal,
		RemainingUsage: user.RemainingUsage,
		RegisteredAt:   user.RegisteredAt,
		LastResetAt:    user.LastResetAt,
		NextResetAt:    nextReset,
		ResetHour:      resetHour,
	}
}

// GetStatus loads the current user with the reset policy applied.
func (s *ChatService) GetStatus(ctx context.Context) (Status, error) {
	user, err := s.CurrentUser(ctx)
	if err != nil {
		return Status{}, err
	}

	return StatusFor(user, s.NextReset(), s.cfg.ResetHour), nil
}
