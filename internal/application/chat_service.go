package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bnema/dchat/internal/domain"
	"github.com/bnema/dchat/internal/ports"
	"go.uber.org/zap"
)

const DefaultExchangeTimeout = 30 * time.Second

type ChatConfig struct {
	// Prompt is the fixed system prompt sent with every message.
	Prompt    string
	Timeout   time.Duration
	ResetHour int
}

// ChatService is the entry point to the chat core: it opens sessions and
// performs the login, logout and quota collaborators' writes.
type ChatService struct {
	store  *SessionStore
	quota  *QuotaManager
	client ports.CompletionClient
	clock  ports.Clock
	cfg    ChatConfig
	logger *zap.Logger
}

func NewChatService(store *SessionStore, quota *QuotaManager, client ports.CompletionClient, clock ports.Clock, cfg ChatConfig, logger *zap.Logger) *ChatService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if quota == nil {
		quota = NewQuotaManager(nil)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultExchangeTimeout
	}
	if cfg.ResetHour < 0 || cfg.ResetHour > 23 {
		cfg.ResetHour = domain.DefaultResetHour
	}

	return &ChatService{
		store:  store,
		quota:  quota,
		client: client,
		clock:  clock,
		cfg:    cfg,
		logger: logger,
	}
}

// Open loads the current user, refills the quota if the reset policy says
// so, and starts a fresh conversation seeded with a welcome turn.
func (s *ChatService) Open(ctx context.Context) (*Session, error) {
	user, err := s.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	return newSession(s, user), nil
}

// CurrentUser loads the user and applies the quota reset policy once.
func (s *ChatService) CurrentUser(ctx context.Context) (domain.User, error) {
	user, err := s.store.Load(ctx)
	if err != nil {
		return domain.User{}, err
	}

	refreshed, reset := s.quota.ApplyPolicy(user, s.clock.Now())
	if !reset {
		return user, nil
	}

	s.logger.Info("daily quota refilled", zap.String("user", user.Name), zap.Int("remaining", refreshed.RemainingUsage))
	if err := s.store.Save(ctx, refreshed); err != nil {
		s.logger.Warn("persist quota refill", zap.Error(err))
	}

	return refreshed, nil
}

// Login creates a session record for name, keeping the existing record's
// quota when the same user logs in again.
func (s *ChatService) Login(ctx context.Context, name string) (domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.User{}, fmt.Errorf("name is required")
	}

	existing, err := s.store.Load(ctx)
	if err == nil && existing.Name == name {
		return existing, nil
	}
	if err != nil && !errors.Is(err, domain.ErrSessionMissing) {
		return domain.User{}, err
	}

	user := domain.NewUser(name, s.clock.Now())
	if err := s.store.Save(ctx, user); err != nil {
		return domain.User{}, fmt.Errorf("save session: %w", err)
	}

	s.logger.Info("session created", zap.String("user", user.Name))
	return user, nil
}

func (s *ChatService) Logout(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}

	return nil
}

// ResetQuota refills the current user's quota unconditionally.
func (s *ChatService) ResetQuota(ctx context.Context) (domain.User, error) {
	user, err := s.store.Load(ctx)
	if err != nil {
		return domain.User{}, err
	}

	user = s.quota.Reset(user, s.clock.Now())
	if err := s.store.Save(ctx, user); err != nil {
		return domain.User{}, fmt.Errorf("save session: %w", err)
	}

	return user, nil
}

// NextReset returns the next quota refill instant after now.
func (s *ChatService) NextReset() time.Time {
	return domain.NewDailyResetPolicy(s.cfg.ResetHour, nil).NextBoundary(s.clock.Now())
}

func (s *ChatService) ResetHour() int {
	return s.cfg.ResetHour
}
