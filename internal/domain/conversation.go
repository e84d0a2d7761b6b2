package domain

import "sync"

// Conversation is an append-only log of turns. Only the trailing turn may be
// replaced, which is how the pending placeholder gets resolved.
type Conversation struct {
	mu       sync.RWMutex
	turns    []Turn
	disposed bool
}

func NewConversation(seed ...Turn) *Conversation {
	turns := make([]Turn, 0, len(seed)+8)
	turns = append(turns, seed...)

	return &Conversation{turns: turns}
}

func (c *Conversation) Append(turn Turn) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.disposed {
		return ErrConversationClosed
	}

	c.turns = append(c.turns, turn)
	return nil
}

func (c *Conversation) ReplaceLast(turn Turn) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.disposed {
		return ErrConversationClosed
	}
	if len(c.turns) == 0 {
		return ErrEmptyLog
	}

	c.turns[len(c.turns)-1] = turn
	return nil
}

// Snapshot returns a copy of the turns in display order.
func (c *Conversation) Snapshot() []Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

func (c *Conversation) Last() (Turn, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.turns) == 0 {
		return Turn{}, false
	}

	return c.turns[len(c.turns)-1], true
}

func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.turns)
}

// Dispose ends the conversation's lifetime. Later mutations fail with
// ErrConversationClosed; Snapshot keeps working.
func (c *Conversation) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.disposed = true
}

func (c *Conversation) Disposed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.disposed
}
