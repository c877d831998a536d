package blobstore

import (
	"context"
	"sync"
)

// MemoryStore keeps blobs in process memory. Nothing survives a restart.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		blobs: make(map[string][]byte),
	}
}

func (s *MemoryStore) Load(_ context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, ok := s.blobs[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), blob...), nil
}

func (s *MemoryStore) Save(_ context.Context, key string, blob []byte) error {
	if key == "" {
		return ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.blobs[key] = append([]byte(nil), blob...)
	return nil
}

func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}
