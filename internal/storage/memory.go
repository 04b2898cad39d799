package storage

import (
	"context"
	"sync"
)

// In-memory adapters keep tests and single-process runs lightweight. They
// intentionally favor clarity over performance.
type InMemoryKV struct {
	mu    sync.RWMutex
	items map[string]string
}

func NewInMemoryKV() *InMemoryKV {
	return &InMemoryKV{items: make(map[string]string)}
}

func (s *InMemoryKV) GetItem(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.items[key]; ok {
		return v, nil
	}
	return "", ErrNotFound
}

func (s *InMemoryKV) SetItem(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = value
	return nil
}

// InMemorySecureKV holds submission material for tests and development. It
// provides no sealing; production uses SecureFileKV.
type InMemorySecureKV struct {
	mu    sync.RWMutex
	items map[string]string
}

func NewInMemorySecureKV() *InMemorySecureKV {
	return &InMemorySecureKV{items: make(map[string]string)}
}

func (s *InMemorySecureKV) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.items[key]; ok {
		return v, nil
	}
	return "", ErrNotFound
}

func (s *InMemorySecureKV) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = value
	return nil
}
