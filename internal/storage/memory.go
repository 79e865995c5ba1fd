package storage

import (
	"bytes"
	"context"
	"sync"
)

// MemorySlot keeps slots in process memory. Nothing survives a restart.
type MemorySlot struct {
	mu     sync.RWMutex
	values map[string][]byte
	writes int
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{values: make(map[string][]byte)}
}

func (s *MemorySlot) Read(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok || len(v) == 0 {
		return nil, ErrNotFound
	}
	return bytes.Clone(v), nil
}

func (s *MemorySlot) Write(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = bytes.Clone(data)
	s.writes++
	return nil
}

func (s *MemorySlot) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.values[key]; ok {
		clear(v)
		delete(s.values, key)
	}
	return nil
}

// Writes returns how many writes the slot has seen
func (s *MemorySlot) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

func (s *MemorySlot) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range s.values {
		clear(v)
		delete(s.values, k)
	}
	return nil
}
