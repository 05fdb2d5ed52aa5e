package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"notepad/pkg/logger"
)

// PgxPool - часть пула pgx, нужная хранилищу. Позволяет подставить pgxmock в тестах.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// Константы для логирования postgres хранилища.
const (
	ErrorFailedToSelect = "failed to select value"
	ErrorFailedToUpsert = "failed to upsert value"
	ErrorFailedToRemove = "failed to remove value"
)

// SQL-запросы к таблице kv_store.
const (
	querySelectValue = `SELECT value FROM kv_store WHERE namespace = $1 AND key = $2`
	queryUpsertValue = `INSERT INTO kv_store (namespace, key, value, updated_at) VALUES ($1, $2, $3, NOW())
ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`
	queryDeleteValue = `DELETE FROM kv_store WHERE namespace = $1 AND key = $2`
)

// PostgresStore хранит коллекции в таблице kv_store.
type PostgresStore struct {
	pool      PgxPool
	namespace string
}

// NewPostgresStore создает хранилище поверх пула соединений.
func NewPostgresStore(pool PgxPool, namespace string) *PostgresStore {
	return &PostgresStore{pool: pool, namespace: namespace}
}

// Get возвращает значение ключа или nil, если строки нет.
func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	log := logger.Log(ctx).With(zap.String("method", "PostgresStore.Get"), zap.String("key", key))

	var value []byte
	if err := s.pool.QueryRow(ctx, querySelectValue, s.namespace, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		log.Error(ctx, ErrorFailedToSelect, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrorFailedToSelect, err)
	}

	return value, nil
}

// Set записывает значение, заменяя предыдущее.
func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	log := logger.Log(ctx).With(zap.String("method", "PostgresStore.Set"), zap.String("key", key))

	if _, err := s.pool.Exec(ctx, queryUpsertValue, s.namespace, key, value); err != nil {
		log.Error(ctx, ErrorFailedToUpsert, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToUpsert, err)
	}

	return nil
}

// Delete удаляет ключ.
func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	log := logger.Log(ctx).With(zap.String("method", "PostgresStore.Delete"), zap.String("key", key))

	if _, err := s.pool.Exec(ctx, queryDeleteValue, s.namespace, key); err != nil {
		log.Error(ctx, ErrorFailedToRemove, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToRemove, err)
	}

	return nil
}

// Ping проверяет соединение с базой.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close закрывает пул.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
