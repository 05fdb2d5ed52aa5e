package config

import "time"

// StartupConfig содержит параметры повторов при инициализации.
type StartupConfig struct {
	Retries int           `yaml:"retries" env:"NOTEPAD_STARTUP_RETRIES" env-default:"3"`
	Backoff time.Duration `yaml:"backoff" env:"NOTEPAD_STARTUP_BACKOFF" env-default:"100ms"`
}
