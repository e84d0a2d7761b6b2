package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/bnema/dchat/internal/domain"
	"github.com/bnema/dchat/internal/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errEmptyReply = errors.New("empty reply")

// Session is one stay in the chat view. It owns the conversation for that
// lifetime and runs at most one exchange at a time.
type Session struct {
	svc *ChatService

	mu           sync.Mutex
	user         domain.User
	conversation *domain.Conversation
	state        domain.ExchangeState
	lastOutcome  domain.ExchangeState
	closed       bool
	inflight     *Exchange
	// commits counts finished exchanges so Refresh can tell that a load it
	// started is older than the last quota charge.
	commits uint64
}

// Exchange is an in-flight message round-trip started by Session.Begin.
type Exchange struct {
	ID      string
	Text    string
	user    domain.User
	session *Session
	once    sync.Once
	result  ExchangeResult

	abort  context.Context
	cancel context.CancelFunc
}

type ExchangeResult struct {
	ID    string
	State domain.ExchangeState
	Reply domain.Turn
	User  domain.User
	// Notice is set when the user should be told something went wrong.
	Notice domain.Notice
	// Err holds the absorbed failure, wrapping domain.ErrExchangeFailed.
	Err error
}

func newSession(svc *ChatService, user domain.User) *Session {
	return &Session{
		svc:          svc,
		user:         user,
		conversation: domain.NewConversation(domain.WelcomeTurn(user.Name)),
		state:        domain.ExchangeIdle,
		lastOutcome:  domain.ExchangeIdle,
	}
}

func (s *Session) User() domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.user
}

func (s *Session) State() domain.ExchangeState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// LastOutcome is the terminal state of the most recent exchange, or idle.
func (s *Session) LastOutcome() domain.ExchangeState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastOutcome
}

func (s *Session) Snapshot() []domain.Turn {
	return s.conversation.Snapshot()
}

// CanSend reports whether Begin would currently accept a message.
func (s *Session) CanSend() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return !s.closed && s.state == domain.ExchangeIdle && s.svc.quota.CanSend(s.user)
}

// Notice maps err to a user-visible notice using this session's user.
func (s *Session) Notice(err error) domain.Notice {
	return NoticeFor(err, s.User(), s.svc.cfg.ResetHour)
}

// Begin leaves Idle for Sending: it appends the user turn and the pending
// placeholder. Rejections leave both the conversation and the user untouched.
func (s *Session) Begin(text string) (*Exchange, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrEmptyMessage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, domain.ErrSessionClosed
	}
	if s.state == domain.ExchangeSending {
		return nil, domain.ErrExchangeInFlight
	}
	if !s.svc.quota.CanSend(s.user) {
		return nil, domain.ErrQuotaExhausted
	}

	if err := s.conversation.Append(domain.UserTurn(text)); err != nil {
		return nil, fmt.Errorf("append user turn: %w", err)
	}
	if err := s.conversation.Append(domain.PendingTurn()); err != nil {
		return nil, fmt.Errorf("append pending turn: %w", err)
	}
	s.state = domain.ExchangeSending

	abort, cancel := context.WithCancel(context.Background())
	exchange := &Exchange{
		ID:      uuid.NewString(),
		Text:    text,
		user:    s.user,
		session: s,
		abort:   abort,
		cancel:  cancel,
	}
	s.inflight = exchange
	s.svc.logger.Debug("exchange started", zap.String("exchange_id", exchange.ID), zap.String("user", s.user.Name))

	return exchange, nil
}

// Send runs a whole exchange and blocks until it reaches a terminal state.
func (s *Session) Send(ctx context.Context, text string) (ExchangeResult, error) {
	exchange, err := s.Begin(text)
	if err != nil {
		return ExchangeResult{}, err
	}

	return exchange.Run(ctx), nil
}

// Run performs the remote call and commits the outcome. Failures are
// absorbed into a fallback turn; the attempt is charged against the quota
// either way. Run is idempotent: later calls return the first result.
func (e *Exchange) Run(ctx context.Context) ExchangeResult {
	e.once.Do(func() {
		e.result = e.session.complete(ctx, e)
	})

	return e.result
}

// Cancel aborts the remote call. Run still commits a fallback turn and
// charges the attempt.
func (e *Exchange) Cancel() {
	e.cancel()
}

func (s *Session) complete(ctx context.Context, e *Exchange) ExchangeResult {
	defer e.cancel()

	callCtx, cancel := context.WithTimeout(ctx, s.svc.cfg.Timeout)
	defer cancel()
	stop := context.AfterFunc(e.abort, cancel)
	defer stop()
	if e.abort.Err() != nil {
		cancel()
	}

	reply, err := s.svc.client.Complete(callCtx, ports.CompletionRequest{
		Content:   e.Text,
		User:      e.user.Name,
		Prompt:    s.svc.cfg.Prompt,
		RequestID: e.ID,
	})
	if err == nil && strings.TrimSpace(reply) == "" {
		err = errEmptyReply
	}

	return s.commit(context.WithoutCancel(ctx), e, reply, err)
}

func (s *Session) commit(ctx context.Context, e *Exchange, reply string, callErr error) ExchangeResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := s.svc.logger.With(zap.String("exchange_id", e.ID))
	result := ExchangeResult{ID: e.ID}

	if callErr == nil {
		result.State = domain.ExchangeFulfilled
		result.Reply = domain.AssistantTurn(reply)
	} else {
		result.State = domain.ExchangeFallbackCompleted
		result.Reply = domain.FallbackTurn()
		result.Err = fmt.Errorf("%w: %w", domain.ErrExchangeFailed, callErr)
		result.Notice = NoticeFor(result.Err, s.user, s.svc.cfg.ResetHour)
		logger.Warn("exchange failed, using fallback reply", zap.Error(callErr))
	}

	if s.closed {
		logger.Debug("session closed during exchange, conversation left untouched")
	} else if err := s.conversation.ReplaceLast(result.Reply); err != nil {
		logger.Error("resolve pending turn", zap.Error(err))
	}

	consumed, err := s.svc.quota.Consume(s.user)
	if err != nil {
		logger.Error("consume quota", zap.Error(err))
	} else {
		s.user = consumed
		if err := s.svc.store.Save(ctx, s.user); err != nil {
			logger.Warn("persist quota after exchange", zap.Error(err))
		}
	}

	s.lastOutcome = result.State
	s.state = domain.ExchangeIdle
	s.inflight = nil
	s.commits++
	result.User = s.user

	logger.Debug("exchange completed",
		zap.String("state", string(result.State)),
		zap.Int("remaining", s.user.RemainingUsage),
	)

	return result
}

// Refresh reloads the user record while no exchange is in flight, picking
// up refills or logouts written by other processes.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	busy := s.state == domain.ExchangeSending || s.closed
	commits := s.commits
	s.mu.Unlock()
	if busy {
		return nil
	}

	user, err := s.svc.CurrentUser(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == domain.ExchangeIdle && !s.closed && s.commits == commits {
		s.user = user
	}

	return nil
}

// Close ends the session. An exchange still in flight will charge the quota
// when it finishes but will not touch the disposed conversation.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.conversation.Dispose()
}

// Shutdown closes the session, aborts any exchange still in flight and
// waits until that exchange has charged and persisted the quota.
func (s *Session) Shutdown(ctx context.Context) {
	s.mu.Lock()
	exchange := s.inflight
	s.mu.Unlock()

	s.Close()
	if exchange == nil {
		return
	}

	exchange.Cancel()
	exchange.Run(ctx)
}
