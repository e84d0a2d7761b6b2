package chain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bnema/dchat/internal/domain"
	portmocks "github.com/bnema/dchat/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestStoreGetUsesPrimaryWhenItSucceeds(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockKVStore(t)
	fallback := portmocks.NewMockKVStore(t)
	store := NewStore(primary, fallback)

	primary.EXPECT().Get(mock.Anything, "user").Return("from-pass", nil).Once()

	value, err := store.Get(context.Background(), "user")
	require.NoError(t, err)
	assert.Equal(t, "from-pass", value)
}

func TestStoreGetFallsBackWhenPrimaryFails(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockKVStore(t)
	fallback := portmocks.NewMockKVStore(t)
	store := NewStore(primary, fallback)

	primary.EXPECT().Get(mock.Anything, "user").Return("", errors.New("pass unavailable")).Once()
	fallback.EXPECT().Get(mock.Anything, "user").Return("from-file", nil).Once()

	value, err := store.Get(context.Background(), "user")
	require.NoError(t, err)
	assert.Equal(t, "from-file", value)
}

func TestStoreGetReturnsCombinedErrorWhenBothBackendsFail(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockKVStore(t)
	fallback := portmocks.NewMockKVStore(t)
	store := NewStore(primary, fallback)

	primary.EXPECT().Get(mock.Anything, "user").Return("", errors.New("pass failed")).Once()
	fallback.EXPECT().Get(mock.Anything, "user").Return("", errors.New("file failed")).Once()

	_, err := store.Get(context.Background(), "user")
	require.Error(t, err)
	assert.ErrorContains(t, err, "primary backend")
	assert.ErrorContains(t, err, "fallback backend")
	assert.ErrorContains(t, err, "pass failed")
	assert.ErrorContains(t, err, "file failed")
}

func TestStoreGetReportsNotFoundWhenNeitherBackendHasKey(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockKVStore(t)
	fallback := portmocks.NewMockKVStore(t)
	store := NewStore(primary, fallback)

	primary.EXPECT().Get(mock.Anything, "user").Return("", fmt.Errorf("pass: %w", domain.ErrKeyNotFound)).Once()
	fallback.EXPECT().Get(mock.Anything, "user").Return("", fmt.Errorf("file: %w", domain.ErrKeyNotFound)).Once()

	_, err := store.Get(context.Background(), "user")
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)
	assert.NotContains(t, err.Error(), "primary backend")
}

func TestStorePutFallsBackWhenPrimaryFails(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockKVStore(t)
	fallback := portmocks.NewMockKVStore(t)
	store := NewStore(primary, fallback)

	primary.EXPECT().Put(mock.Anything, "darkMode", "true").Return(errors.New("pass failed")).Once()
	fallback.EXPECT().Put(mock.Anything, "darkMode", "true").Return(nil).Once()

	require.NoError(t, store.Put(context.Background(), "darkMode", "true"))
}

func TestStorePutDoesNotCallFallbackWhenPrimarySucceeds(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockKVStore(t)
	fallback := portmocks.NewMockKVStore(t)
	store := NewStore(primary, fallback)

	primary.EXPECT().Put(mock.Anything, "darkMode", "true").Return(nil).Once()

	require.NoError(t, store.Put(context.Background(), "darkMode", "true"))
}

func TestStoreDeleteClearsBothBackends(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockKVStore(t)
	fallback := portmocks.NewMockKVStore(t)
	store := NewStore(primary, fallback)

	primary.EXPECT().Delete(mock.Anything, "user").Return(nil).Once()
	fallback.EXPECT().Delete(mock.Anything, "user").Return(nil).Once()

	require.NoError(t, store.Delete(context.Background(), "user"))
}

func TestStoreDeleteSucceedsWhenOnlyFallbackWorks(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockKVStore(t)
	fallback := portmocks.NewMockKVStore(t)
	store := NewStore(primary, fallback)

	primary.EXPECT().Delete(mock.Anything, "user").Return(errors.New("pass failed")).Once()
	fallback.EXPECT().Delete(mock.Anything, "user").Return(nil).Once()

	require.NoError(t, store.Delete(context.Background(), "user"))
}

func TestStoreDeleteReportsStaleFallbackCopy(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockKVStore(t)
	fallback := portmocks.NewMockKVStore(t)
	store := NewStore(primary, fallback)

	primary.EXPECT().Delete(mock.Anything, "user").Return(nil).Once()
	fallback.EXPECT().Delete(mock.Anything, "user").Return(errors.New("read-only")).Once()

	err := store.Delete(context.Background(), "user")
	require.Error(t, err)
	assert.ErrorContains(t, err, "fallback backend delete failed")
}

func TestStoreGetDoesNotFallbackOnCanceledContextError(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockKVStore(t)
	fallback := portmocks.NewMockKVStore(t)
	store := NewStore(primary, fallback)

	primary.EXPECT().Get(mock.Anything, "user").Return("", context.Canceled).Once()

	_, err := store.Get(context.Background(), "user")
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewStoreCheckedRejectsNilBackends(t *testing.T) {
	t.Parallel()

	_, err := NewStoreChecked(nil, portmocks.NewMockKVStore(t))
	assert.ErrorIs(t, err, errNilPrimaryStore)

	_, err = NewStoreChecked(portmocks.NewMockKVStore(t), nil)
	assert.ErrorIs(t, err, errNilFallbackStore)
}
