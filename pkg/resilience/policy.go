package resilience

import (
	"context"

	"go.uber.org/zap"

	"notepad/pkg/logger"
)

// Policy объединяет Circuit Breaker и повторы: каждая серия повторов
// считается одним запросом для Circuit Breaker.
type Policy struct {
	name    string
	breaker *CircuitBreaker
	retry   *Retry
}

// NewPolicy создает политику отказоустойчивости для именованной зависимости.
func NewPolicy(name string, retry RetryConfig, breaker CircuitBreakerConfig) *Policy {
	return &Policy{
		name:    name,
		breaker: NewCircuitBreaker(name, breaker),
		retry:   NewRetry(name, retry),
	}
}

// Execute выполняет операцию под защитой политики.
func (p *Policy) Execute(ctx context.Context, operation string, op Operation) error {
	logger.Log(ctx).Debug(ctx, "executing with resilience",
		zap.String("dependency", p.name),
		zap.String("operation", operation))

	return p.breaker.Execute(ctx, func(ctx context.Context) error {
		return p.retry.Execute(ctx, op)
	})
}

// State возвращает состояние Circuit Breaker политики.
func (p *Policy) State() CircuitState {
	return p.breaker.State()
}
