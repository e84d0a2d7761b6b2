package application

import (
	"errors"
	"fmt"

	"github.com/bnema/dchat/internal/domain"
)

// NoticeFor maps a core error to the notice shown to the user. Errors that
// need no notice, such as an empty message, map to the zero Notice.
func NoticeFor(err error, user domain.User, resetHour int) domain.Notice {
	switch {
	case err == nil:
		return domain.Notice{}
	case errors.Is(err, domain.ErrQuotaExhausted):
		return domain.Notice{
			Title:       "Usage limit reached",
			Description: fmt.Sprintf("You've reached your daily limit of %d messages. Limit resets at %02d:00.", user.QuotaTotal, resetHour),
			Variant:     domain.NoticeDestructive,
		}
	case errors.Is(err, domain.ErrExchangeInFlight):
		return domain.Notice{
			Title:       "Please wait",
			Description: "A reply is still on its way.",
			Variant:     domain.NoticeInfo,
		}
	case errors.Is(err, domain.ErrExchangeFailed):
		return domain.Notice{
			Title:       "Error",
			Description: "Failed to get a response. Please try again.",
			Variant:     domain.NoticeDestructive,
		}
	case errors.Is(err, domain.ErrSessionMissing):
		return domain.Notice{
			Title:       "Session expired",
			Description: "Please log in again.",
			Variant:     domain.NoticeDestructive,
		}
	case errors.Is(err, domain.ErrStorageUnavailable):
		return domain.Notice{
			Title:       "Storage unavailable",
			Description: "Your changes could not be saved.",
			Variant:     domain.NoticeInfo,
		}
	case errors.Is(err, domain.ErrEmptyMessage):
		return domain.Notice{}
	default:
		return domain.Notice{
			Title:       "Error",
			Description: err.Error(),
			Variant:     domain.NoticeDestructive,
		}
	}
}
