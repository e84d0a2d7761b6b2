package application

import (
	"errors"
	"fmt"
	"testing"

	"github.com/bnema/dchat/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestNoticeFor(t *testing.T) {
	t.Parallel()

	user := testUser(0)
	tests := []struct {
		name    string
		err     error
		title   string
		variant domain.NoticeVariant
	}{
		{name: "quota", err: domain.ErrQuotaExhausted, title: "Usage limit reached", variant: domain.NoticeDestructive},
		{name: "in flight", err: domain.ErrExchangeInFlight, title: "Please wait", variant: domain.NoticeInfo},
		{name: "exchange failed", err: fmt.Errorf("%w: %w", domain.ErrExchangeFailed, errors.New("eof")), title: "Error", variant: domain.NoticeDestructive},
		{name: "session missing", err: domain.ErrSessionMissing, title: "Session expired", variant: domain.NoticeDestructive},
		{name: "storage", err: domain.ErrStorageUnavailable, title: "Storage unavailable", variant: domain.NoticeInfo},
		{name: "unknown", err: errors.New("odd"), title: "Error", variant: domain.NoticeDestructive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			notice := NoticeFor(tt.err, user, 7)
			assert.Equal(t, tt.title, notice.Title)
			assert.Equal(t, tt.variant, notice.Variant)
			assert.NotEmpty(t, notice.Description)
		})
	}
}

func TestNoticeForSilentErrors(t *testing.T) {
	t.Parallel()

	assert.True(t, NoticeFor(nil, testUser(1), 7).IsZero())
	assert.True(t, NoticeFor(domain.ErrEmptyMessage, testUser(1), 7).IsZero())
}

func TestNoticeForQuotaUsesResetHour(t *testing.T) {
	t.Parallel()

	notice := NoticeFor(domain.ErrQuotaExhausted, testUser(0), 6)
	assert.Equal(t, "You've reached your daily limit of 10 messages. Limit resets at 06:00.", notice.Description)
}
