package history

import (
	"sync"

	"github.com/Gunnarguy/OpenAssistant-sub002/core"
)

// InMemoryStore is a volatile HistoryStore implementation keeping per-session
// message history in a process local map. It is safe for concurrent access
// and best suited for tests or single-process apps. Returned slices are
// copies so callers cannot mutate internal state.
type InMemoryStore struct {
	mu        sync.RWMutex
	histories map[string][]core.Message
	index     map[string]map[string]struct{}
}

// NewInMemoryStore constructs an empty in-memory history store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		histories: make(map[string][]core.Message),
		index:     make(map[string]map[string]struct{}),
	}
}

// Append adds messages to the session's history, skipping ids already
// present. It returns the number of messages actually appended.
func (s *InMemoryStore) Append(sessionID string, msgs []core.Message) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.index[sessionID]
	if !ok {
		idx = make(map[string]struct{})
		s.index[sessionID] = idx
	}
	appended := 0
	for _, m := range msgs {
		if _, dup := idx[m.ID]; dup {
			continue
		}
		idx[m.ID] = struct{}{}
		s.histories[sessionID] = append(s.histories[sessionID], m)
		appended++
	}
	return appended, nil
}

// Get returns a copy of the session's history in insertion order. An unknown
// session yields an empty slice, not an error.
func (s *InMemoryStore) Get(sessionID string) ([]core.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.histories[sessionID]
	out := make([]core.Message, len(src))
	copy(out, src)
	return out, nil
}
