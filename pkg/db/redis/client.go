package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"notepad/pkg/logger"
)

const (
	logConnected = "connected to redis"
	errConnect   = "failed to connect to redis"
)

// NewClient создает клиент Redis и проверяет соединение командой PING.
func NewClient(ctx context.Context, cfg *Config) (*redis.Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		logger.Log(ctx).Error(ctx, errConnect, zap.String("addr", cfg.Addr()), zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errConnect, err)
	}

	logger.Log(ctx).Info(ctx, logConnected, zap.String("addr", cfg.Addr()), zap.Int("db", cfg.DB))
	return rdb, nil
}
