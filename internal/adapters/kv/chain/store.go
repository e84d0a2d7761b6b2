package chain

import (
	"context"
	"errors"
	"fmt"

	filestore "github.com/bnema/dchat/internal/adapters/kv/file"
	passstore "github.com/bnema/dchat/internal/adapters/kv/pass"
	"github.com/bnema/dchat/internal/domain"
	"github.com/bnema/dchat/internal/ports"
)

// Store tries primary first and falls back on failure.
type Store struct {
	primary  ports.KVStore
	fallback ports.KVStore
}

var _ ports.KVStore = (*Store)(nil)

var (
	errNilPrimaryStore  = errors.New("primary state store is nil")
	errNilFallbackStore = errors.New("fallback state store is nil")
)

func NewStore(primary ports.KVStore, fallback ports.KVStore) *Store {
	store, err := NewStoreChecked(primary, fallback)
	if err != nil {
		panic(err)
	}

	return store
}

func NewStoreChecked(primary ports.KVStore, fallback ports.KVStore) (*Store, error) {
	if primary == nil {
		return nil, errNilPrimaryStore
	}
	if fallback == nil {
		return nil, errNilFallbackStore
	}

	return &Store{primary: primary, fallback: fallback}, nil
}

func NewPassFirstWithFileFallback(fileRoot string) (*Store, error) {
	return NewStoreChecked(passstore.NewStore(passstore.DefaultPrefix), filestore.NewStore(fileRoot))
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	err := s.primary.Put(ctx, key, value)
	if err == nil {
		return nil
	}
	if shouldSkipFallback(err) {
		return err
	}

	fallbackErr := s.fallback.Put(ctx, key, value)
	if fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("primary backend put failed: %w; fallback backend put failed: %w", err, fallbackErr)
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	value, err := s.primary.Get(ctx, key)
	if err == nil {
		return value, nil
	}
	if shouldSkipFallback(err) {
		return "", err
	}

	fallbackValue, fallbackErr := s.fallback.Get(ctx, key)
	if fallbackErr == nil {
		return fallbackValue, nil
	}
	if errors.Is(fallbackErr, domain.ErrKeyNotFound) && errors.Is(err, domain.ErrKeyNotFound) {
		return "", fallbackErr
	}

	return "", fmt.Errorf("primary backend get failed: %w; fallback backend get failed: %w", err, fallbackErr)
}

// Delete clears the key from both backends so a stale fallback copy cannot
// resurrect it.
func (s *Store) Delete(ctx context.Context, key string) error {
	err := s.primary.Delete(ctx, key)
	if err != nil && shouldSkipFallback(err) {
		return err
	}

	fallbackErr := s.fallback.Delete(ctx, key)
	switch {
	case fallbackErr == nil:
		return nil
	case err == nil:
		return fmt.Errorf("fallback backend delete failed: %w", fallbackErr)
	default:
		return fmt.Errorf("primary backend delete failed: %w; fallback backend delete failed: %w", err, fallbackErr)
	}
}

func shouldSkipFallback(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
