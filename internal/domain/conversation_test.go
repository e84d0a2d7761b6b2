package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationAppendKeepsInsertionOrder(t *testing.T) {
	t.Parallel()

	c := NewConversation(WelcomeTurn("Danz"))
	require.NoError(t, c.Append(UserTurn("hi")))
	require.NoError(t, c.Append(PendingTurn()))

	assert.Equal(t, []Turn{WelcomeTurn("Danz"), UserTurn("hi"), PendingTurn()}, c.Snapshot())
	assert.Equal(t, 3, c.Len())
}

func TestConversationReplaceLastResolvesPlaceholder(t *testing.T) {
	t.Parallel()

	c := NewConversation()
	require.NoError(t, c.Append(UserTurn("hi")))
	require.NoError(t, c.Append(PendingTurn()))
	require.NoError(t, c.ReplaceLast(AssistantTurn("hello")))

	last, ok := c.Last()
	require.True(t, ok)
	assert.Equal(t, AssistantTurn("hello"), last)
	assert.Equal(t, 2, c.Len())
}

func TestConversationReplaceLastOnEmptyLog(t *testing.T) {
	t.Parallel()

	c := NewConversation()
	err := c.ReplaceLast(AssistantTurn("hello"))

	assert.ErrorIs(t, err, ErrEmptyLog)
	_, ok := c.Last()
	assert.False(t, ok)
}

func TestConversationSnapshotIsACopy(t *testing.T) {
	t.Parallel()

	c := NewConversation(UserTurn("hi"))
	snap := c.Snapshot()
	snap[0].Content = "mutated"

	assert.Equal(t, "hi", c.Snapshot()[0].Content)
}

func TestConversationDisposeRejectsMutations(t *testing.T) {
	t.Parallel()

	c := NewConversation(UserTurn("hi"))
	c.Dispose()

	assert.True(t, c.Disposed())
	assert.ErrorIs(t, c.Append(UserTurn("again")), ErrConversationClosed)
	assert.ErrorIs(t, c.ReplaceLast(AssistantTurn("x")), ErrConversationClosed)
	assert.Equal(t, []Turn{UserTurn("hi")}, c.Snapshot())
}
