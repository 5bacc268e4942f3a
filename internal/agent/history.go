package agent

import (
	"context"
	"sync"

	"parkassist/internal/llm"
)

// HistoryStore keeps the ordered, append-only message sequence of one
// conversation, keyed by conversation ID. The system prompt is never
// stored; it is prepended fresh on every turn.
type HistoryStore interface {
	Append(ctx context.Context, conversationID string, messages ...llm.Message) error
	List(ctx context.Context, conversationID string) ([]llm.Message, error)
	Clear(ctx context.Context, conversationID string) error
}

// MemoryHistory is an in-process HistoryStore used in tests and as a
// fallback when no redis is configured.
type MemoryHistory struct {
	mu     sync.Mutex
	byConv map[string][]llm.Message
}

// NewMemoryHistory builds store.
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{byConv: make(map[string][]llm.Message)}
}

// Append implements HistoryStore.
func (s *MemoryHistory) Append(_ context.Context, conversationID string, messages ...llm.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byConv[conversationID] = append(s.byConv[conversationID], messages...)
	return nil
}

// List implements HistoryStore.
func (s *MemoryHistory) List(_ context.Context, conversationID string) ([]llm.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := s.byConv[conversationID]
	out := make([]llm.Message, len(stored))
	copy(out, stored)
	return out, nil
}

// Clear implements HistoryStore.
func (s *MemoryHistory) Clear(_ context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byConv, conversationID)
	return nil
}
