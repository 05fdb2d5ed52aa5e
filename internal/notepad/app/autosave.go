package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"notepad/pkg/logger"
)

// DefaultAutoSaveDelay - пауза после последней правки до автосохранения.
const DefaultAutoSaveDelay = 2 * time.Second

// AutoSaver откладывает тихое сохранение до паузы в правках. Каждая правка
// переносит таймер, поэтому за период простоя выполняется не более одного сохранения.
type AutoSaver struct {
	delay time.Duration
	save  func(ctx context.Context, silent bool) error

	mu     sync.Mutex
	timer  *time.Timer
	gen    uint64
	closed bool
}

// NewAutoSaver создает AutoSaver поверх функции сохранения.
func NewAutoSaver(delay time.Duration, save func(ctx context.Context, silent bool) error) *AutoSaver {
	if delay <= 0 {
		delay = DefaultAutoSaveDelay
	}
	return &AutoSaver{delay: delay, save: save}
}

// Touch отмечает правку и переносит отложенное сохранение. После Close правки
// не планируются, возвращается ErrWorkspaceClosed.
func (a *AutoSaver) Touch(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		logger.Log(ctx).Warn(ctx, LogAutoSaveClosed)
		return ErrWorkspaceClosed
	}
	if a.timer != nil {
		a.timer.Stop()
	}
	a.gen++
	gen := a.gen
	a.timer = time.AfterFunc(a.delay, func() { a.fire(ctx, gen) })
	return nil
}

func (a *AutoSaver) fire(ctx context.Context, gen uint64) {
	a.mu.Lock()
	if gen != a.gen || a.timer == nil {
		a.mu.Unlock()
		return
	}
	a.timer = nil
	a.mu.Unlock()

	if err := a.save(ctx, true); err != nil {
		logger.Log(ctx).Warn(ctx, "auto-save failed", zap.Error(err))
	}
}

// Flush немедленно выполняет отложенное сохранение, если оно есть.
func (a *AutoSaver) Flush(ctx context.Context) error {
	if !a.cancel() {
		return nil
	}
	return a.save(ctx, true)
}

// Close выполняет отложенное сохранение и запрещает новые.
func (a *AutoSaver) Close(ctx context.Context) error {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()
	return a.Flush(ctx)
}

// Stop отменяет отложенное сохранение.
func (a *AutoSaver) Stop() {
	a.cancel()
}

// Pending сообщает, запланировано ли сохранение.
func (a *AutoSaver) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.timer != nil
}

func (a *AutoSaver) cancel() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.timer == nil {
		return false
	}
	a.timer.Stop()
	a.timer = nil
	a.gen++
	return true
}
