package pass

import (
	"context"
	"errors"
	"testing"

	"github.com/bnema/dchat/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorePutUsesPassInsert(t *testing.T) {
	t.Parallel()

	called := false
	store := &Store{
		prefix: DefaultPrefix,
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			called = true
			assert.Equal(t, context.Background(), ctx)
			assert.Equal(t, []string{"insert", "-m", "-f", "dchat/user"}, args)
			assert.Equal(t, `{"name":"Danz"}`+"\n", input)
			return "", "", nil
		},
	}

	err := store.Put(context.Background(), "user", `{"name":"Danz"}`)
	require.NoError(t, err)
	assert.True(t, called)
}

func TestStoreGetUsesPassShowAndTrimsTrailingNewline(t *testing.T) {
	t.Parallel()

	store := &Store{
		prefix: DefaultPrefix,
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			assert.Equal(t, []string{"show", "dchat/darkMode"}, args)
			assert.Empty(t, input)
			return "true\n", "", nil
		},
	}

	value, err := store.Get(context.Background(), "darkMode")
	require.NoError(t, err)
	assert.Equal(t, "true", value)
}

func TestStoreGetMapsMissingEntryToNotFound(t *testing.T) {
	t.Parallel()

	store := &Store{
		prefix: DefaultPrefix,
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			return "", "Error: dchat/user is not in the password store.", errors.New("exit status 1")
		},
	}

	_, err := store.Get(context.Background(), "user")
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)
}

func TestStoreDeleteUsesPassRemove(t *testing.T) {
	t.Parallel()

	store := &Store{
		prefix: DefaultPrefix,
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			assert.Equal(t, []string{"rm", "-f", "dchat/user"}, args)
			assert.Empty(t, input)
			return "", "", nil
		},
	}

	require.NoError(t, store.Delete(context.Background(), "user"))
}

func TestStoreGetReturnsClearError(t *testing.T) {
	t.Parallel()

	store := &Store{
		prefix: DefaultPrefix,
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			return "", "gpg: decryption failed", errors.New("exit status 2")
		},
	}

	_, err := store.Get(context.Background(), "user")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrKeyNotFound)
	assert.ErrorContains(t, err, "pass get")
	assert.ErrorContains(t, err, "dchat/user")
	assert.ErrorContains(t, err, "gpg: decryption failed")
}

func TestStoreWithoutPrefixUsesRawKey(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			assert.Equal(t, []string{"show", "user"}, args)
			return "x", "", nil
		},
	}

	_, err := store.Get(context.Background(), "user")
	require.NoError(t, err)
}
