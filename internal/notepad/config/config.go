// Package config описывает конфигурацию сервиса notepad.
package config

import (
	"context"
	"fmt"

	pkgconfig "notepad/pkg/config"
)

// ServiceName используется в логах загрузки конфигурации.
const ServiceName = "notepad"

// DefaultEnvFiles - файлы окружения, которые читаются при наличии.
var DefaultEnvFiles = []string{".env", "deploy/.env"}

// Config содержит полную конфигурацию сервиса.
type Config struct {
	Storage  StorageConfig
	Sqlite   SqliteConfig
	Redis    RedisConfig
	Postgres PostgresConfig
	HTTP     HTTPConfig
	Logging  LoggingConfig
	Shutdown ShutdownConfig
	Editor   EditorConfig
	Share    ShareConfig
	Startup  StartupConfig
}

// Load загружает конфигурацию из окружения и .env файлов.
func Load(ctx context.Context, envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = DefaultEnvFiles
	}

	cfg, err := pkgconfig.Load[Config](ctx, ServiceName, envFiles...)
	if err != nil {
		return nil, err
	}

	if err := cfg.Storage.Validate(); err != nil {
		return nil, fmt.Errorf("invalid storage config: %w", err)
	}

	return cfg, nil
}
