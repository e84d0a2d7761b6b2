package domain

import "errors"

var (
	ErrSessionMissing     = errors.New("no active session")
	ErrQuotaExhausted     = errors.New("daily message quota exhausted")
	ErrExchangeInFlight   = errors.New("a message is already being sent")
	ErrExchangeFailed     = errors.New("message exchange failed")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrEmptyLog           = errors.New("conversation is empty")
	ErrConversationClosed = errors.New("conversation is closed")
	ErrSessionClosed      = errors.New("session is closed")
	ErrEmptyMessage       = errors.New("message is empty")
	ErrKeyNotFound        = errors.New("key not found")
)
