package memory

import (
	"context"
	"sync"
	"time"
)

// InMemoryTranscriptStore is an in-process expiring cache for local/dev use.
type InMemoryTranscriptStore struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	now     func() time.Time
}

type cacheEntry struct {
	raw       []byte
	expiresAt time.Time
}

func NewInMemoryTranscriptStore() *InMemoryTranscriptStore {
	return &InMemoryTranscriptStore{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

func (s *InMemoryTranscriptStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		return nil, false, nil
	}
	out := make([]byte, len(e.raw))
	copy(out, e.raw)
	return out, true, nil
}

func (s *InMemoryTranscriptStore) Set(_ context.Context, key string, raw []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := cacheEntry{raw: append([]byte(nil), raw...)}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.entries[key] = e
	return nil
}

func (s *InMemoryTranscriptStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *InMemoryTranscriptStore) Close() error { return nil }

// InMemoryFactStore keeps fact maps in process memory.
type InMemoryFactStore struct {
	mu      sync.Mutex
	records map[string]FactMap
}

func NewInMemoryFactStore() *InMemoryFactStore {
	return &InMemoryFactStore{records: make(map[string]FactMap)}
}

func (s *InMemoryFactStore) Load(_ context.Context, sessionID string) (FactMap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[sessionID].Clone(), nil
}

func (s *InMemoryFactStore) Merge(_ context.Context, sessionID string, newFacts FactMap) (FactMap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	merged := MergeFacts(s.records[sessionID], newFacts)
	s.records[sessionID] = merged
	return merged.Clone(), nil
}

func (s *InMemoryFactStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, sessionID)
	return nil
}

func (s *InMemoryFactStore) Close() error { return nil }
