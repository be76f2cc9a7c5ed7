package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// MemoryCartStorage keeps the slot in process memory. Contents are lost on exit.
type MemoryCartStorage struct {
	mu    sync.RWMutex
	value []byte
	found bool
}

func NewMemoryCartStorage() *MemoryCartStorage {
	return &MemoryCartStorage{}
}

func (s *MemoryCartStorage) Load(_ context.Context) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.value), s.found, nil
}

func (s *MemoryCartStorage) Save(ctx context.Context, blob []byte) error {
	if blob == nil {
		return fmt.Errorf("blob is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.value = slices.Clone(blob)
	s.found = true

	return nil
}
