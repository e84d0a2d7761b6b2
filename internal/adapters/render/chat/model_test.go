package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bnema/dchat/internal/adapters/kv/memory"
	"github.com/bnema/dchat/internal/adapters/watch"
	"github.com/bnema/dchat/internal/application"
	"github.com/bnema/dchat/internal/domain"
	"github.com/bnema/dchat/internal/ports"
	"github.com/bnema/dchat/internal/ports/mocks"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	kv      *memory.Store
	svc     *application.ChatService
	session *application.Session
	client  *mocks.MockCompletionClient
	theme   *application.ThemeController
}

func newFixture(t *testing.T, remaining int) fixture {
	t.Helper()

	ctx := context.Background()
	kv := memory.NewStore()
	store := application.NewSessionStore(kv, nil)
	user := domain.NewUser("Danz", time.Date(2026, 2, 14, 8, 0, 0, 0, time.UTC))
	user.RemainingUsage = remaining
	require.NoError(t, store.Save(ctx, user))

	client := mocks.NewMockCompletionClient(t)
	svc := application.NewChatService(store, nil, client, ports.SystemClock{}, application.ChatConfig{ResetHour: 7}, nil)
	session, err := svc.Open(ctx)
	require.NoError(t, err)
	t.Cleanup(session.Close)

	theme := application.NewThemeController(kv, ports.SystemThemeFunc(func() bool { return true }), nil)

	return fixture{kv: kv, svc: svc, session: session, client: client, theme: theme}
}

func (f fixture) model(t *testing.T, changes <-chan watch.Change) Model {
	t.Helper()

	return New(context.Background(), Options{
		Session: f.session,
		Theme:   f.theme,
		Logout:  f.svc.Logout,
		Changes: changes,
	})
}

func typeText(m Model, text string) Model {
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return updated.(Model)
}

func press(m Model, keyType tea.KeyType) (Model, tea.Cmd) {
	updated, cmd := m.Update(tea.KeyMsg{Type: keyType})
	return updated.(Model), cmd
}

// drain executes cmd and any batched commands, feeding the messages the
// model cares about back into it.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()

	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}

		switch msg := next().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case exchangeDoneMsg, themeToggledMsg, logoutDoneMsg, refreshDoneMsg:
			updated, follow := m.Update(msg)
			m = updated.(Model)
			if follow != nil {
				queue = append(queue, follow)
			}
		}
	}

	return m
}

func TestModelSendShowsPendingThenReply(t *testing.T) {
	f := newFixture(t, 1)
	f.client.EXPECT().
		Complete(mock.Anything, mock.MatchedBy(func(req ports.CompletionRequest) bool {
			return req.Content == "hi" && req.User == "Danz"
		})).
		Return("hello", nil).
		Once()

	m := typeText(f.model(t, nil), "hi")
	m, cmd := press(m, tea.KeyEnter)
	require.NotNil(t, cmd)

	assert.Contains(t, m.viewport.View(), domain.PendingMarker)
	assert.Equal(t, domain.ExchangeSending, f.session.State())
	assert.Empty(t, m.input.Value())

	m = drain(t, m, cmd)

	turns := f.session.Snapshot()
	require.Len(t, turns, 3)
	assert.Equal(t, domain.AssistantTurn("hello"), turns[2])
	assert.Equal(t, 0, f.session.User().RemainingUsage)
	assert.Contains(t, m.View(), "Remaining: 0/10")
	assert.NotContains(t, m.viewport.View(), domain.PendingMarker)
	assert.True(t, m.Notice().IsZero())
}

func TestModelFailedExchangeShowsFallbackAndNotice(t *testing.T) {
	f := newFixture(t, 3)
	f.client.EXPECT().Complete(mock.Anything, mock.Anything).Return("", errors.New("connection refused")).Once()

	m := typeText(f.model(t, nil), "hi")
	m, cmd := press(m, tea.KeyEnter)
	m = drain(t, m, cmd)

	last := f.session.Snapshot()[2]
	assert.Equal(t, domain.FallbackTurn(), last)
	assert.Equal(t, 2, f.session.User().RemainingUsage)
	assert.Equal(t, domain.NoticeDestructive, m.Notice().Variant)
	assert.Contains(t, m.View(), "Failed to get a response")
}

func TestModelExhaustedQuotaOnlyShowsNotice(t *testing.T) {
	f := newFixture(t, 0)

	m := typeText(f.model(t, nil), "hi")
	m, cmd := press(m, tea.KeyEnter)

	assert.Nil(t, cmd)
	assert.Len(t, f.session.Snapshot(), 1)
	assert.Equal(t, "Usage limit reached", m.Notice().Title)
	assert.Equal(t, "hi", m.input.Value())
	f.client.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestModelEmptyInputIsIgnored(t *testing.T) {
	f := newFixture(t, 5)

	m, cmd := press(f.model(t, nil), tea.KeyEnter)

	assert.Nil(t, cmd)
	assert.True(t, m.Notice().IsZero())
	assert.Len(t, f.session.Snapshot(), 1)
}

func TestModelToggleThemePersists(t *testing.T) {
	f := newFixture(t, 5)

	m := f.model(t, nil)
	require.True(t, m.Dark())

	m, cmd := press(m, tea.KeyCtrlT)
	m = drain(t, m, cmd)
	assert.False(t, m.Dark())

	stored, err := f.kv.Get(context.Background(), application.DarkModeKey)
	require.NoError(t, err)
	assert.Equal(t, "false", stored)

	m, cmd = press(m, tea.KeyCtrlT)
	m = drain(t, m, cmd)
	assert.True(t, m.Dark())
}

func TestModelLogoutClearsSessionAndQuits(t *testing.T) {
	f := newFixture(t, 5)

	m, cmd := press(f.model(t, nil), tea.KeyCtrlL)
	m = drain(t, m, cmd)

	assert.True(t, m.LoggedOut())
	_, err := f.kv.Get(context.Background(), application.UserKey)
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)
}

func TestModelReloadsUserOnStateChange(t *testing.T) {
	f := newFixture(t, 2)
	changes := make(chan watch.Change, 1)
	m := f.model(t, changes)

	_, err := f.svc.ResetQuota(context.Background())
	require.NoError(t, err)
	changes <- watch.Change{Path: "state.toml"}

	cmd := m.waitForChange()
	require.NotNil(t, cmd)
	msg := cmd()
	close(changes)
	updated, follow := m.Update(msg)
	m = drain(t, updated.(Model), follow)

	assert.Equal(t, 10, f.session.User().RemainingUsage)
	assert.Contains(t, m.View(), "Remaining: 10/10")
}

func TestModelQuitsWhenSessionClearedElsewhere(t *testing.T) {
	f := newFixture(t, 2)
	changes := make(chan watch.Change, 1)
	m := f.model(t, changes)

	require.NoError(t, f.svc.Logout(context.Background()))
	changes <- watch.Change{}

	msg := m.waitForChange()()
	close(changes)
	updated, follow := m.Update(msg)
	m = drain(t, updated.(Model), follow)

	assert.True(t, m.LoggedOut())
}

func TestModelResizeKeepsChromeVisible(t *testing.T) {
	f := newFixture(t, 5)

	updated, _ := f.model(t, nil).Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m := updated.(Model)

	assert.Equal(t, 100, m.viewport.Width)
	assert.Equal(t, 30-chromeHeight, m.viewport.Height)
	assert.Contains(t, m.View(), "Remaining: 5/10")
	assert.Contains(t, m.View(), "dchat · Danz")
}

func TestModelThemeToggleKeepsPendingSpinnerTicking(t *testing.T) {
	f := newFixture(t, 5)

	m := typeText(f.model(t, nil), "hi")
	m, cmd := press(m, tea.KeyEnter)
	require.NotNil(t, cmd)
	id := m.spinner.ID()

	m, cmd = press(m, tea.KeyCtrlT)
	m = drain(t, m, cmd)
	require.False(t, m.Dark())

	assert.Equal(t, id, m.spinner.ID())
	_, tick := m.Update(spinner.TickMsg{ID: id})
	assert.NotNil(t, tick)
	assert.Contains(t, m.viewport.View(), domain.PendingMarker)
}
