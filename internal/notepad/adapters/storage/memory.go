// Package storage содержит реализации хранилища ключ-значение для notepad.
package storage

import (
	"context"
	"slices"
	"sync"

	"notepad/internal/notepad/ports/storage"
)

// MemoryStore хранит значения в памяти процесса. Используется в тестах и для
// запуска без диска.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

// NewMemoryStore создает пустое хранилище в памяти.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Get возвращает копию значения.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, storage.ErrStoreClosed
	}
	value, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	return slices.Clone(value), nil
}

// Set сохраняет копию значения.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.ErrStoreClosed
	}
	s.data[key] = slices.Clone(value)
	return nil
}

// Delete удаляет ключ.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.ErrStoreClosed
	}
	delete(s.data, key)
	return nil
}

// Ping проверяет, что хранилище открыто.
func (s *MemoryStore) Ping(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return storage.ErrStoreClosed
	}
	return nil
}

// Close закрывает хранилище. Повторный вызов безопасен.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}
