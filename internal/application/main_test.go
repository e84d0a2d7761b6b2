package application

import (
	"context"
	"testing"
	"time"

	"github.com/bnema/dchat/internal/adapters/kv/memory"
	"github.com/bnema/dchat/internal/domain"
	"github.com/bnema/dchat/internal/ports"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var testNow = time.Date(2026, 2, 14, 11, 0, 0, 0, time.UTC)

func mockAnyContext() interface{} {
	return mock.Anything
}

// seededStore returns a memory store holding user as the current session.
func seededStore(t *testing.T, user domain.User) *memory.Store {
	t.Helper()

	kv := memory.NewStore()
	require.NoError(t, NewSessionStore(kv, nil).Save(context.Background(), user))
	return kv
}

func testUser(remaining int) domain.User {
	user := domain.NewUser("Danz", testNow.Add(-time.Hour))
	user.RemainingUsage = remaining
	return user
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var _ ports.Clock = fixedClock{}

// putFailingStore wraps a store so that writes fail.
type putFailingStore struct {
	ports.KVStore
	err error
}

func (s putFailingStore) Put(context.Context, string, string) error {
	return s.err
}
