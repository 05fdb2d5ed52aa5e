package storage

import (
	"context"

	"notepad/internal/notepad/ports/storage"
	"notepad/pkg/resilience"
)

// ResilientStore выполняет операции удаленного хранилища через политику
// повторов и Circuit Breaker.
type ResilientStore struct {
	next   storage.Store
	policy *resilience.Policy
}

// NewResilientStore оборачивает хранилище политикой отказоустойчивости.
func NewResilientStore(next storage.Store, policy *resilience.Policy) *ResilientStore {
	return &ResilientStore{next: next, policy: policy}
}

// Get читает значение с повторами.
func (s *ResilientStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.policy.Execute(ctx, "get", func(ctx context.Context) error {
		v, err := s.next.Get(ctx, key)
		if err != nil {
			return err
		}
		value = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set записывает значение с повторами.
func (s *ResilientStore) Set(ctx context.Context, key string, value []byte) error {
	return s.policy.Execute(ctx, "set", func(ctx context.Context) error {
		return s.next.Set(ctx, key, value)
	})
}

// Delete удаляет ключ с повторами.
func (s *ResilientStore) Delete(ctx context.Context, key string) error {
	return s.policy.Execute(ctx, "delete", func(ctx context.Context) error {
		return s.next.Delete(ctx, key)
	})
}

// Ping не проходит через политику: проверка состояния должна видеть реальную ошибку.
func (s *ResilientStore) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

// Close закрывает вложенное хранилище.
func (s *ResilientStore) Close() error {
	return s.next.Close()
}

// State возвращает состояние Circuit Breaker.
func (s *ResilientStore) State() resilience.CircuitState {
	return s.policy.State()
}

// BreakerState возвращает состояние Circuit Breaker, если в цепочке декораторов
// хранилища есть ResilientStore.
func BreakerState(s storage.Store) (resilience.CircuitState, bool) {
	for s != nil {
		switch t := s.(type) {
		case *ResilientStore:
			return t.State(), true
		case interface{ Unwrap() storage.Store }:
			s = t.Unwrap()
		default:
			return resilience.StateClosed, false
		}
	}
	return resilience.StateClosed, false
}
