package config

import (
	"time"

	pkgredis "notepad/pkg/db/redis"
)

// RedisConfig содержит настройки подключения к Redis.
type RedisConfig struct {
	Host     string        `yaml:"host" env:"NOTEPAD_REDIS_HOST" env-default:"localhost"`
	Port     int           `yaml:"port" env:"NOTEPAD_REDIS_PORT" env-default:"6379"`
	Password string        `yaml:"password" env:"NOTEPAD_REDIS_PASSWORD" env-default:""`
	DB       int           `yaml:"db" env:"NOTEPAD_REDIS_DB" env-default:"0"`
	PoolSize int           `yaml:"pool_size" env:"NOTEPAD_REDIS_POOL_SIZE" env-default:"10"`
	Timeout  time.Duration `yaml:"timeout" env:"NOTEPAD_REDIS_TIMEOUT" env-default:"5s"`
}

// ClientConfig преобразует настройки в конфигурацию клиента.
func (r *RedisConfig) ClientConfig() *pkgredis.Config {
	return &pkgredis.Config{
		Host:     r.Host,
		Port:     r.Port,
		Password: r.Password,
		DB:       r.DB,
		PoolSize: r.PoolSize,
		Timeout:  r.Timeout,
	}
}
