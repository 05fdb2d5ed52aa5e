// Package storage описывает порт хранилища ключ-значение.
package storage

import (
	"context"
	"errors"
)

// Ключи коллекций.
const (
	KeyNotes   = "notes"
	KeyFolders = "folders"
	KeyAllTags = "allTags"
)

// ErrStoreClosed возвращается при обращении к закрытому хранилищу.
var ErrStoreClosed = errors.New("store is closed")

// Store - хранилище байтовых значений по строковому ключу.
// Get возвращает nil, nil для отсутствующего ключа.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}
