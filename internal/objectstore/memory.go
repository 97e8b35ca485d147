package objectstore

import (
	"context"
	"sync"
)

// Memory is an in-memory store for tests. PutErr, when set, makes every Put
// fail so callers can exercise the abort-on-upload-failure path.
type Memory struct {
	mu      sync.Mutex
	objects map[string][]byte

	PutErr error
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{objects: make(map[string][]byte)}
}

func (s *Memory) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	if s.PutErr != nil {
		return "", s.PutErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	s.objects[key] = buf
	return "memory://" + key, nil
}

func (s *Memory) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// Get returns a stored object, for test assertions.
func (s *Memory) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	return data, ok
}

// Len returns the number of stored objects.
func (s *Memory) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}
