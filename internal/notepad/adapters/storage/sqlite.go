package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	// Регистрирует драйвер sqlite3.
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"notepad/pkg/logger"
)

// Константы для логирования sqlite хранилища.
const (
	LogSqliteOpened = "sqlite store opened"
	LogSqliteClosed = "sqlite store closed"

	ErrorFailedToOpenSqlite  = "failed to open sqlite database"
	ErrorFailedToInitSchema  = "failed to initialize sqlite schema"
	ErrorFailedToReadValue   = "failed to read value"
	ErrorFailedToWriteValue  = "failed to write value"
	ErrorFailedToDeleteValue = "failed to delete value"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS kv_store (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SqliteStore хранит коллекции в одном файле sqlite.
type SqliteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSqliteStore открывает (или создает) файл базы и таблицу kv_store.
func NewSqliteStore(ctx context.Context, path string) (*SqliteStore, error) {
	log := logger.Log(ctx).With(zap.String("path", path))

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrorFailedToOpenSqlite, err)
	}
	// Один писатель на файл.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", ErrorFailedToInitSchema, err)
	}

	log.Info(ctx, LogSqliteOpened)
	return &SqliteStore{db: db, now: time.Now}, nil
}

// Get возвращает значение ключа или nil, если ключа нет.
func (s *SqliteStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		logger.Log(ctx).Error(ctx, ErrorFailedToReadValue,
			zap.String("method", "SqliteStore.Get"), zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrorFailedToReadValue, err)
	}
	if value == nil {
		value = []byte{}
	}
	return value, nil
}

// Set записывает значение, заменяя предыдущее.
func (s *SqliteStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, s.now().UnixMilli())
	if err != nil {
		logger.Log(ctx).Error(ctx, ErrorFailedToWriteValue,
			zap.String("method", "SqliteStore.Set"), zap.String("key", key), zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToWriteValue, err)
	}
	return nil
}

// Delete удаляет ключ.
func (s *SqliteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_store WHERE key = ?`, key); err != nil {
		logger.Log(ctx).Error(ctx, ErrorFailedToDeleteValue,
			zap.String("method", "SqliteStore.Delete"), zap.String("key", key), zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToDeleteValue, err)
	}
	return nil
}

// Ping проверяет соединение с файлом базы.
func (s *SqliteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close закрывает базу.
func (s *SqliteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close sqlite database: %w", err)
	}
	logger.Log(context.Background()).Debug(context.Background(), LogSqliteClosed)
	return nil
}
