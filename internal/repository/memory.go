package repository

import (
	"context"
	"sync"

	"github.com/Domenick1991/civicbook/internal/domain"
)

// MemoryStore keeps encoded lists in process memory. Lists are stored as JSON
// so callers never share slices with the store.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (s *MemoryStore) Load(_ context.Context, key string) ([]domain.Record, error) {
	s.mu.RLock()
	payload := s.blobs[key]
	s.mu.RUnlock()
	return decodeRecords(payload)
}

func (s *MemoryStore) Save(_ context.Context, key string, records []domain.Record) error {
	payload, err := encodeRecords(records)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.blobs[key] = payload
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Close() error { return nil }

var _ RecordStore = (*MemoryStore)(nil)
