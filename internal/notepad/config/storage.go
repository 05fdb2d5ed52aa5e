package config

import (
	"errors"
	"fmt"
)

// Поддерживаемые хранилища.
const (
	DriverMemory   = "memory"
	DriverSqlite   = "sqlite"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// ErrUnknownDriver возвращается для неподдерживаемого хранилища.
var ErrUnknownDriver = errors.New("unknown storage driver")

// StorageConfig выбирает бэкенд хранилища ключ-значение.
type StorageConfig struct {
	Driver    string `yaml:"driver" env:"NOTEPAD_STORAGE_DRIVER" env-default:"sqlite"`
	Namespace string `yaml:"namespace" env:"NOTEPAD_STORAGE_NAMESPACE" env-default:""`
	// Resilient включает повторы и Circuit Breaker для удаленных хранилищ.
	Resilient bool `yaml:"resilient" env:"NOTEPAD_STORAGE_RESILIENT" env-default:"true"`
}

// Validate проверяет имя драйвера.
func (s *StorageConfig) Validate() error {
	switch s.Driver {
	case DriverMemory, DriverSqlite, DriverRedis, DriverPostgres:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, s.Driver)
	}
}

// IsRemote сообщает, ходит ли хранилище по сети.
func (s *StorageConfig) IsRemote() bool {
	return s.Driver == DriverRedis || s.Driver == DriverPostgres
}
