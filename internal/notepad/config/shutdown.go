package config

import "time"

// ShutdownConfig содержит таймаут корректного завершения.
type ShutdownConfig struct {
	Timeout time.Duration `yaml:"timeout" env:"NOTEPAD_GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"5s"`
}
