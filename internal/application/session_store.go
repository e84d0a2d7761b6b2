package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bnema/dchat/internal/domain"
	"github.com/bnema/dchat/internal/ports"
	"go.uber.org/zap"
)

const (
	UserKey     = "user"
	DarkModeKey = "darkMode"
)

// SessionStore reads and writes the persisted User record.
type SessionStore struct {
	kv     ports.KVStore
	logger *zap.Logger
}

type userRecord struct {
	Name           string `json:"name"`
	QuotaTotal     int    `json:"quotaTotal"`
	RemainingUsage int    `json:"remainingUsage"`
	RegisteredAt   string `json:"registeredAt"`
	LastResetAt    string `json:"lastResetAt,omitempty"`
}

func NewSessionStore(kv ports.KVStore, logger *zap.Logger) *SessionStore {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &SessionStore{kv: kv, logger: logger}
}

// Load returns the current user. Every failure, including an unreadable
// store or a corrupt record, is reported as domain.ErrSessionMissing so the
// caller sends the user back to login instead of running on bad state.
func (s *SessionStore) Load(ctx context.Context) (domain.User, error) {
	raw, err := s.kv.Get(ctx, UserKey)
	if err != nil {
		if !errors.Is(err, domain.ErrKeyNotFound) {
			s.logger.Warn("session store unavailable", zap.Error(err))
		}
		return domain.User{}, fmt.Errorf("%w: %w", domain.ErrSessionMissing, err)
	}

	var record userRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		s.logger.Warn("discarding unreadable session record", zap.Error(err))
		return domain.User{}, fmt.Errorf("%w: decode user record: %w", domain.ErrSessionMissing, err)
	}

	user, err := fromUserRecord(record)
	if err != nil {
		s.logger.Warn("discarding session record with bad timestamps", zap.Error(err))
		return domain.User{}, fmt.Errorf("%w: decode user record: %w", domain.ErrSessionMissing, err)
	}
	if err := user.Validate(); err != nil {
		s.logger.Warn("discarding invalid session record", zap.Error(err))
		return domain.User{}, fmt.Errorf("%w: validate user record: %w", domain.ErrSessionMissing, err)
	}

	return user, nil
}

func (s *SessionStore) Save(ctx context.Context, user domain.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("validate user: %w", err)
	}

	data, err := json.Marshal(toUserRecord(user))
	if err != nil {
		return fmt.Errorf("encode user record: %w", err)
	}

	if err := s.kv.Put(ctx, UserKey, string(data)); err != nil {
		return fmt.Errorf("%w: save user record: %w", domain.ErrStorageUnavailable, err)
	}

	return nil
}

// Clear removes the session record.
func (s *SessionStore) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, UserKey); err != nil {
		return fmt.Errorf("%w: delete user record: %w", domain.ErrStorageUnavailable, err)
	}

	return nil
}

func toUserRecord(user domain.User) userRecord {
	return userRecord{
		Name:           user.Name,
		QuotaTotal:     user.QuotaTotal,
		RemainingUsage: user.RemainingUsage,
		RegisteredAt:   formatTime(user.RegisteredAt),
		LastResetAt:    formatTime(user.LastResetAt),
	}
}

func fromUserRecord(record userRecord) (domain.User, error) {
	if record.RegisteredAt == "" {
		return domain.User{}, errors.New("registeredAt is required")
	}
	registeredAt, err := parseTime(record.RegisteredAt)
	if err != nil {
		return domain.User{}, fmt.Errorf("parse registeredAt: %w", err)
	}

	var lastResetAt time.Time
	if record.LastResetAt != "" {
		if lastResetAt, err = parseTime(record.LastResetAt); err != nil {
			return domain.User{}, fmt.Errorf("parse lastResetAt: %w", err)
		}
	}

	return domain.User{
		Name:           record.Name,
		QuotaTotal:     record.QuotaTotal,
		RemainingUsage: record.RemainingUsage,
		RegisteredAt:   registeredAt,
		LastResetAt:    lastResetAt,
	}, nil
}

func parseTime(raw string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, err
	}

	return domain.Instant(parsed), nil
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.UTC().Format(time.RFC3339Nano)
}
