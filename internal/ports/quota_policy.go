package ports

import (
	"time"

	"github.com/bnema/dchat/internal/domain"
)

type QuotaPolicy interface {
	ShouldReset(user domain.User, now time.Time) bool
}

var (
	_ QuotaPolicy = domain.DailyResetPolicy{}
	_ QuotaPolicy = domain.NeverReset{}
)
