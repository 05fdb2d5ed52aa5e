package storage

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"notepad/internal/notepad/config"
	"notepad/internal/notepad/db"
	"notepad/internal/notepad/ports/storage"
	pkgredis "notepad/pkg/db/redis"
	"notepad/pkg/logger"
	"notepad/pkg/resilience"
)

// Константы для логирования фабрики.
const (
	LogStoreOpening = "opening store"
	LogStoreReady   = "store ready"

	ErrorFailedToOpenStore = "failed to open store"
)

// Open создает хранилище по конфигурации. Удаленные хранилища при Resilient
// оборачиваются политикой повторов, все хранилища считаются метриками, если reg не nil.
func Open(ctx context.Context, cfg *config.Config, reg prometheus.Registerer) (storage.Store, error) {
	log := logger.Log(ctx).With(zap.String("driver", cfg.Storage.Driver))
	log.Info(ctx, LogStoreOpening)

	store, err := openBackend(ctx, cfg)
	if err != nil {
		log.Error(ctx, ErrorFailedToOpenStore, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrorFailedToOpenStore, err)
	}

	if cfg.Storage.Resilient && cfg.Storage.IsRemote() {
		policy := resilience.NewPolicy("store-"+cfg.Storage.Driver,
			resilience.DefaultRetryConfig(), resilience.DefaultCircuitBreakerConfig())
		store = NewResilientStore(store, policy)
	}

	if reg != nil {
		store = NewMeteredStore(store, cfg.Storage.Driver, NewMetrics(reg))
	}

	log.Info(ctx, LogStoreReady)
	return store, nil
}

func openBackend(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		return NewMemoryStore(), nil
	case config.DriverSqlite:
		return NewSqliteStore(ctx, cfg.Sqlite.Path)
	case config.DriverRedis:
		client, err := pkgredis.NewClient(ctx, cfg.Redis.ClientConfig())
		if err != nil {
			return nil, err
		}
		return NewRedisStore(client, cfg.Storage.Namespace), nil
	case config.DriverPostgres:
		database, err := db.New(ctx, &cfg.Postgres)
		if err != nil {
			return nil, err
		}
		return NewPostgresStore(database.Pool(), cfg.Storage.Namespace), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownDriver, cfg.Storage.Driver)
	}
}
