package application

import (
	"time"

	"github.com/bnema/dchat/internal/domain"
	"github.com/bnema/dchat/internal/ports"
)

// QuotaManager decides whether a user may send and applies the effect of a
// send. It keeps no state beyond the User values passed through it.
type QuotaManager struct {
	policy ports.QuotaPolicy
}

func NewQuotaManager(policy ports.QuotaPolicy) *QuotaManager {
	if policy == nil {
		policy = domain.NeverReset{}
	}

	return &QuotaManager{policy: policy}
}

func (m *QuotaManager) CanSend(user domain.User) bool {
	return user.RemainingUsage > 0
}

// Consume returns user with one message deducted. It refuses with
// domain.ErrQuotaExhausted rather than clamping at zero.
func (m *QuotaManager) Consume(user domain.User) (domain.User, error) {
	if !m.CanSend(user) {
		return user, domain.ErrQuotaExhausted
	}

	user.RemainingUsage--
	return user, nil
}

// ApplyPolicy refills the quota when the reset policy says a window has
// passed. The second return value reports whether a refill happened.
func (m *QuotaManager) ApplyPolicy(user domain.User, now time.Time) (domain.User, bool) {
	if !m.policy.ShouldReset(user, now) {
		return user, false
	}

	return m.Reset(user, now), true
}

func (m *QuotaManager) Reset(user domain.User, now time.Time) domain.User {
	if user.QuotaTotal <= 0 {
		user.QuotaTotal = domain.DefaultQuotaTotal
	}
	user.RemainingUsage = user.QuotaTotal
	user.LastResetAt = domain.Instant(now)

	return user
}
