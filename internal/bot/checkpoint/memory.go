package checkpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"proppanda_backend/internal/bot/state"
)

// MemoryStore is an in-process Store for tests and local development.
// Values are stored as encoded JSON so it round-trips exactly like Redis.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Load(_ context.Context, threadID string) (*state.ConversationState, error) {
	s.mu.RLock()
	data, ok := s.data[threadID]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	var st state.ConversationState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to decode checkpoint: %w", err)
	}
	return &st, nil
}

func (s *MemoryStore) Save(_ context.Context, st *state.ConversationState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}

	s.mu.Lock()
	s.data[st.ThreadID] = data
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, threadID string) error {
	s.mu.Lock()
	delete(s.data, threadID)
	s.mu.Unlock()
	return nil
}
