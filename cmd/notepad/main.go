package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"notepad/internal/notepad/adapters/editor"
	httpServer "notepad/internal/notepad/adapters/http"
	"notepad/internal/notepad/adapters/presenter"
	"notepad/internal/notepad/adapters/storage"
	"notepad/internal/notepad/app"
	"notepad/internal/notepad/config"
	"notepad/pkg/logger"
	"notepad/pkg/resilience"
	"notepad/pkg/shutdown"
)

// Константы для переменных окружения.
const (
	EnvLoggerMode  = "NOTEPAD_LOGGER_MODE"
	EnvLoggerLevel = "NOTEPAD_LOGGER_LEVEL"
)

// Константы для сообщений об ошибках.
const (
	ErrInitLogger           = "failed to initialize logger"
	ErrSyncLogger           = "failed to sync logger"
	ErrLoadConfig           = "failed to load configuration"
	ErrInitLoggerWithConfig = "failed to initialize logger with configuration settings"
	ErrOpenStore            = "failed to open store"
	ErrOpenWorkspace        = "failed to open workspace"
	ErrStartHTTPServer      = "failed to start HTTP server"
)

// Константы для игнорируемых ошибок.
const (
	ErrSyncStderr = "sync /dev/stderr: invalid argument"
	ErrSyncStdout = "sync /dev/stdout: invalid argument"
)

// Константы для сообщений сервиса.
const (
	LogServiceStarted      = "notepad service started"
	LogServiceShutdownDone = "notepad service shutdown complete"
	LogInitStore           = "initializing store"
	LogInitWorkspace       = "initializing workspace"
	LogInitHTTPServer      = "initializing HTTP server"
	LogStartingHTTP        = "starting HTTP server"
	LogStoppingHTTP        = "stopping HTTP server"
	LogClosingWorkspace    = "closing workspace"
)

func main() {
	env := logger.Development
	if strings.ToLower(os.Getenv(EnvLoggerMode)) == "production" {
		env = logger.Production
	}

	log, err := logger.NewLogger(env, os.Getenv(EnvLoggerLevel))
	if err != nil {
		panic(ErrInitLogger + ": " + err.Error())
	}

	logger.SetGlobalLogger(log)

	ctx := logger.NewRequestIDContext(context.Background(), "")

	var exitCode int

	func() {
		defer func() {
			if err := log.Sync(); err != nil {
				errMsg := err.Error()
				if strings.Contains(errMsg, ErrSyncStderr) || strings.Contains(errMsg, ErrSyncStdout) {
					return
				}
				if _, writeErr := fmt.Fprintf(os.Stderr, "%s: %v\n", ErrSyncLogger, err); writeErr != nil {
					panic(writeErr)
				}
			}
		}()

		cfg, err := config.Load(ctx)
		if err != nil {
			log.Error(ctx, ErrLoadConfig, zap.Error(err))
			exitCode = 1
			return
		}

		finalLogger, err := logger.NewLogger(cfg.Logging.GetEnvironment(), cfg.Logging.Level)
		if err != nil {
			log.Error(ctx, ErrInitLoggerWithConfig, zap.Error(err))
			exitCode = 1
			return
		}
		logger.SetGlobalLogger(finalLogger)
		log = finalLogger
		ctx = logger.NewContext(ctx, finalLogger)

		log.Info(ctx, LogServiceStarted,
			zap.String("environment", string(cfg.Logging.GetEnvironment())),
			zap.String("log_level", cfg.Logging.Level),
			zap.String("storage", cfg.Storage.Driver),
			zap.String("startup_time", time.Now().Format(time.RFC3339)))

		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		log.Info(ctx, LogInitStore)
		store, err := storage.Open(ctx, cfg, registry)
		if err != nil {
			log.Error(ctx, ErrOpenStore, zap.Error(err))
			exitCode = 1
			return
		}

		log.Info(ctx, LogInitWorkspace)
		buffer := editor.NewBuffer()
		hub := presenter.NewHub(presenter.DefaultRecentSize)
		hub.RegisterMetrics(registry)

		retry := resilience.DefaultRetryConfig()
		retry.MaxAttempts = cfg.Startup.Retries
		retry.InitialBackoff = cfg.Startup.Backoff

		ws, err := app.Open(ctx, app.Dependencies{
			Store:     store,
			Presenter: hub,
			Document:  buffer,
		}, app.Options{
			SeedWelcome:    cfg.Editor.SeedWelcome,
			ShareBaseURL:   cfg.Share.BaseURL,
			OpenShareID:    cfg.Share.OpenID,
			AutoSaveDelay:  cfg.Editor.AutoSaveDelay,
			MaxImportBytes: cfg.Editor.MaxImportBytes,
			StartupRetry:   retry,
		})
		if err != nil {
			log.Error(ctx, ErrOpenWorkspace, zap.Error(err))
			_ = store.Close()
			exitCode = 1
			return
		}

		log.Info(ctx, LogInitHTTPServer)
		fiberApp := fiber.New(fiber.Config{
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
			BodyLimit:    int(cfg.Editor.MaxImportBytes) + 1<<20,
		})

		httpServer.SetupRouter(fiberApp, httpServer.NewHandler(ws, buffer, hub, store), httpServer.RouterOptions{
			BaseContext: ctx,
			Gatherer:    registry,
			RateLimit:   cfg.HTTP.RateLimit,
			RateBurst:   cfg.HTTP.RateBurst,
		})

		log.Info(ctx, LogStartingHTTP, zap.String("address", cfg.HTTP.GetAddress()))
		go func() {
			if err := fiberApp.Listen(cfg.HTTP.GetAddress()); err != nil {
				log.Error(ctx, ErrStartHTTPServer, zap.Error(err))
			}
		}()

		// Рабочее пространство закрывается только после остановки HTTP, иначе
		// запрос, завершающийся во время остановки, запланирует автосохранение в закрытое хранилище.
		// Hub закрывается первым, чтобы потоки событий не держали соединения открытыми.
		shutdown.Wait(ctx, cfg.Shutdown.Timeout, shutdown.Sequence(
			func(ctx context.Context) error {
				hub.Close(ctx)
				return nil
			},
			func(ctx context.Context) error {
				log.Info(ctx, LogStoppingHTTP)
				return fiberApp.Shutdown()
			},
			func(ctx context.Context) error {
				log.Info(ctx, LogClosingWorkspace)
				return ws.Close(ctx)
			},
		))

		log.Info(ctx, LogServiceShutdownDone)
	}()

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
