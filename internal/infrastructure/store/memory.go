package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
)

// MemoryStore is the in-process fallback used when Redis is unreachable.
// Data written here survives only for the lifetime of the process; callers
// are expected to have queued durable writes for replay elsewhere.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
	log  zerolog.Logger
}

func NewMemoryStore(log zerolog.Logger) *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte), log: log}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.data[key]
	if !ok {
		return nil, false
	}
	cp := make([]byte, len(raw))
	copy(cp, raw)
	return cp, true
}

func (s *MemoryStore) Set(_ context.Context, key string, value any) bool {
	raw, err := json.Marshal(value)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("value not serialisable")
		return false
	}
	s.mu.Lock()
	s.data[key] = raw
	s.mu.Unlock()
	return true
}

func (s *MemoryStore) Remove(_ context.Context, key string) {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
}

func (s *MemoryStore) Healthy(context.Context) error { return nil }
