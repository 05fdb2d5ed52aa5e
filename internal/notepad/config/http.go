package config

import (
	"fmt"
	"time"
)

// HTTPConfig конфигурация HTTP сервера.
type HTTPConfig struct {
	Host         string        `yaml:"host" env:"NOTEPAD_HTTP_HOST" env-default:"127.0.0.1"`
	Port         int           `yaml:"port" env:"NOTEPAD_HTTP_PORT" env-default:"8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"NOTEPAD_HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"NOTEPAD_HTTP_WRITE_TIMEOUT" env-default:"10s"`
	// RateLimit - запросов в секунду на один IP, 0 отключает ограничение.
	RateLimit float64 `yaml:"rate_limit" env:"NOTEPAD_HTTP_RATE_LIMIT" env-default:"20"`
	RateBurst int     `yaml:"rate_burst" env:"NOTEPAD_HTTP_RATE_BURST" env-default:"40"`
}

// GetAddress возвращает адрес для HTTP сервера.
func (h *HTTPConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}
