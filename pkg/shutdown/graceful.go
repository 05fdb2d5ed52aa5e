// Package shutdown ждет SIGINT/SIGTERM и выполняет хуки остановки в пределах таймаута.
package shutdown

import (
	"context"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"notepad/pkg/logger"
)

// Hook - шаг остановки приложения.
type Hook func(ctx context.Context) error

// Константы для сообщений logger.
const (
	LogSignalReceived = "shutdown signal received"
	LogHookFailed     = "shutdown hook failed"
	LogTimeout        = "shutdown timed out, some hooks did not finish"
)

// Sequence объединяет хуки в один, выполняющий их по порядку. Следующий шаг
// запускается и после ошибки предыдущего, ошибки объединяются.
func Sequence(hooks ...Hook) Hook {
	return func(ctx context.Context) error {
		var err error
		for _, fn := range hooks {
			err = multierr.Append(err, fn(ctx))
		}
		return err
	}
}

// Wait блокируется до сигнала или отмены parent и затем параллельно запускает хуки.
func Wait(parent context.Context, timeout time.Duration, hooks ...Hook) {
	sigCtx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	logger.Log(parent).Info(parent, LogSignalReceived)
	Run(context.WithoutCancel(parent), timeout, hooks...)
}

// Run выполняет хуки параллельно и возвращается, когда все завершились или истек timeout.
func Run(parent context.Context, timeout time.Duration, hooks ...Hook) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	log := logger.Log(ctx)

	var wg sync.WaitGroup
	for i, hook := range hooks {
		wg.Add(1)
		go func(idx int, fn Hook) {
			defer wg.Done()
			if err := fn(ctx); err != nil {
				log.Error(ctx, LogHookFailed, zap.Int("hook", idx), zap.Error(err))
			}
		}(i, hook)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		log.Warn(ctx, LogTimeout, zap.Duration("timeout", timeout))
	}
}
