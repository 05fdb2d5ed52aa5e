package http

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"notepad/pkg/logger"
)

// Заголовки и ключи контекста запроса.
const (
	HeaderRequestID = "X-Request-ID"

	localsRequestContext = "requestContext"
)

// Константы для логирования.
const (
	LogRequestStarted   = "request started"
	LogRequestCompleted = "request completed"
	LogRequestFailed    = "request failed"
	LogServerPanic      = "server panic"
	LogRateLimited      = "request rate limited"

	ErrMsgRateLimited = "too many requests"
	ErrMsgInternal    = "internal server error"
)

// NewRequestContextMiddleware создает контекст запроса с request id поверх base.
// Контекст fasthttp переиспользуется после ответа, поэтому отложенная работа
// (автосохранение) должна получать контекст, не связанный с ним.
func NewRequestContextMiddleware(base context.Context) fiber.Handler {
	return func(c fiber.Ctx) error {
		requestCtx := logger.NewRequestIDContext(base, c.Get(HeaderRequestID))
		if id, ok := logger.GetRequestID(requestCtx); ok {
			c.Set(HeaderRequestID, id)
		}
		c.Locals(localsRequestContext, requestCtx)
		return c.Next()
	}
}

// requestContext возвращает контекст, созданный NewRequestContextMiddleware.
func requestContext(c fiber.Ctx) context.Context {
	if ctx, ok := c.Locals(localsRequestContext).(context.Context); ok {
		return ctx
	}
	return context.Background()
}

// NewLoggerMiddleware создает промежуточное ПО для логирования HTTP запросов.
func NewLoggerMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		requestCtx := requestContext(c)
		start := time.Now()

		log := logger.Log(requestCtx).With(
			zap.String("path", c.Path()),
			zap.String("method", c.Method()),
			zap.String("ip", c.IP()),
		)

		log.Debug(requestCtx, LogRequestStarted)

		err := c.Next()

		fields := []zap.Field{
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
		}

		if err != nil {
			log.Error(requestCtx, LogRequestFailed, append(fields, zap.Error(err))...)
			return fmt.Errorf("request processing error: %w", err)
		}

		log.Info(requestCtx, LogRequestCompleted, fields...)
		return nil
	}
}

// NewRecoveryMiddleware создает промежуточное ПО для восстановления после паники.
func NewRecoveryMiddleware() fiber.Handler {
	return func(c fiber.Ctx) (err error) {
		requestCtx := requestContext(c)

		defer func() {
			if r := recover(); r != nil {
				logger.Log(requestCtx).Error(requestCtx, LogServerPanic,
					zap.String("error", fmt.Sprintf("%v", r)),
					zap.String("stack", string(debug.Stack())),
				)
				err = c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: ErrMsgInternal})
			}
		}()

		return c.Next()
	}
}

// NewRateLimitMiddleware ограничивает частоту запросов с одного IP.
func NewRateLimitMiddleware(limiter *RateLimiter) fiber.Handler {
	return func(c fiber.Ctx) error {
		if limiter.Allow(c.IP()) {
			return c.Next()
		}
		requestCtx := requestContext(c)
		logger.Log(requestCtx).Warn(requestCtx, LogRateLimited, zap.String("ip", c.IP()))
		return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{Error: ErrMsgRateLimited})
	}
}
