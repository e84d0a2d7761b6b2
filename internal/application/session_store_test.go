package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bnema/dchat/internal/adapters/kv/memory"
	"github.com/bnema/dchat/internal/domain"
	"github.com/bnema/dchat/internal/ports"
	"github.com/bnema/dchat/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewSessionStore(memory.NewStore(), nil)
	user := domain.User{
		Name:           "Danz",
		QuotaTotal:     10,
		RemainingUsage: 4,
		RegisteredAt:   time.Date(2026, 2, 10, 9, 30, 0, 123, time.UTC),
		LastResetAt:    time.Date(2026, 2, 14, 7, 0, 0, 0, time.UTC),
	}

	require.NoError(t, store.Save(context.Background(), user))
	loaded, err := store.Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, user, loaded)
}

func TestSessionStoreRoundTripSystemClock(t *testing.T) {
	t.Parallel()

	store := NewSessionStore(memory.NewStore(), nil)
	user := domain.NewUser("Danz", ports.SystemClock{}.Now())
	user = NewQuotaManager(nil).Reset(user, time.Now().In(time.FixedZone("WIB", 7*3600)))

	require.NoError(t, store.Save(context.Background(), user))
	loaded, err := store.Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, user, loaded)
}

func TestOpenDoesNotRefillCorruptRecord(t *testing.T) {
	t.Parallel()

	kv := memory.NewStore()
	require.NoError(t, kv.Put(context.Background(), UserKey,
		`{"name":"Danz","quotaTotal":10,"remainingUsage":0,"registeredAt":"not-a-time"}`))

	svc := NewChatService(
		NewSessionStore(kv, nil),
		NewQuotaManager(domain.NewDailyResetPolicy(7, time.UTC)),
		nil,
		fixedClock{now: testNow},
		ChatConfig{},
		nil,
	)

	_, err := svc.Open(context.Background())
	assert.ErrorIs(t, err, domain.ErrSessionMissing)

	raw, err := kv.Get(context.Background(), UserKey)
	require.NoError(t, err)
	assert.Contains(t, raw, `"remainingUsage":0`)
}

func TestSessionStoreLoadMissing(t *testing.T) {
	t.Parallel()

	_, err := NewSessionStore(memory.NewStore(), nil).Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrSessionMissing)
}

func TestSessionStoreLoadRejectsBadRecords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: "{"},
		{name: "missing name", raw: `{"quotaTotal":10,"remainingUsage":5,"registeredAt":"2026-02-10T09:30:00Z"}`},
		{name: "remaining above total", raw: `{"name":"Danz","quotaTotal":10,"remainingUsage":11,"registeredAt":"2026-02-10T09:30:00Z"}`},
		{name: "negative remaining", raw: `{"name":"Danz","quotaTotal":10,"remainingUsage":-1,"registeredAt":"2026-02-10T09:30:00Z"}`},
		{name: "missing registeredAt", raw: `{"name":"Danz","quotaTotal":10,"remainingUsage":0}`},
		{name: "bad registeredAt", raw: `{"name":"Danz","quotaTotal":10,"remainingUsage":0,"registeredAt":"not-a-time"}`},
		{name: "bad lastResetAt", raw: `{"name":"Danz","quotaTotal":10,"remainingUsage":0,"registeredAt":"2026-02-10T09:30:00Z","lastResetAt":"yesterday"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			kv := memory.NewStore()
			require.NoError(t, kv.Put(context.Background(), UserKey, tt.raw))

			_, err := NewSessionStore(kv, nil).Load(context.Background())
			assert.ErrorIs(t, err, domain.ErrSessionMissing)
		})
	}
}

func TestSessionStoreLoadUnavailableStore(t *testing.T) {
	t.Parallel()

	kv := mocks.NewMockKVStore(t)
	kv.EXPECT().Get(mockAnyContext(), UserKey).Return("", errors.New("disk on fire"))

	_, err := NewSessionStore(kv, nil).Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrSessionMissing)
	assert.ErrorContains(t, err, "disk on fire")
}

func TestSessionStoreSaveFailureIsStorageUnavailable(t *testing.T) {
	t.Parallel()

	kv := mocks.NewMockKVStore(t)
	kv.EXPECT().Put(mockAnyContext(), UserKey, mockAnyContext()).Return(errors.New("read-only"))

	err := NewSessionStore(kv, nil).Save(context.Background(), testUser(3))
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}

func TestSessionStoreSaveRejectsInvalidUser(t *testing.T) {
	t.Parallel()

	kv := mocks.NewMockKVStore(t)

	err := NewSessionStore(kv, nil).Save(context.Background(), domain.User{Name: "Danz", QuotaTotal: 10, RemainingUsage: 12})
	require.Error(t, err)
	assert.ErrorContains(t, err, "validate user")
}

func TestSessionStoreClear(t *testing.T) {
	t.Parallel()

	kv := seededStore(t, testUser(5))
	store := NewSessionStore(kv, nil)

	require.NoError(t, store.Clear(context.Background()))
	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrSessionMissing)
}
