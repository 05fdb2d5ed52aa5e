package storage

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"notepad/internal/notepad/ports/storage"
)

// Metrics - метрики операций хранилища.
type Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	valueBytes *prometheus.GaugeVec
}

// NewMetrics создает метрики и регистрирует их в реестре.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notepad_store_operations_total",
				Help: "Total number of store operations",
			},
			[]string{"driver", "operation", "key", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "notepad_store_operation_duration_seconds",
				Help:    "Duration of store operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"driver", "operation"},
		),
		valueBytes: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "notepad_store_value_bytes",
				Help: "Size of the last value written per key",
			},
			[]string{"driver", "key"},
		),
	}
	reg.MustRegister(m.operations, m.duration, m.valueBytes)
	return m
}

// MeteredStore считает операции вложенного хранилища.
type MeteredStore struct {
	next    storage.Store
	driver  string
	metrics *Metrics
}

// NewMeteredStore оборачивает хранилище метриками.
func NewMeteredStore(next storage.Store, driver string, metrics *Metrics) *MeteredStore {
	return &MeteredStore{next: next, driver: driver, metrics: metrics}
}

// Unwrap возвращает вложенное хранилище.
func (s *MeteredStore) Unwrap() storage.Store {
	return s.next
}

func (s *MeteredStore) observe(operation, key string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.metrics.operations.WithLabelValues(s.driver, operation, key, status).Inc()
	s.metrics.duration.WithLabelValues(s.driver, operation).Observe(time.Since(start).Seconds())
}

// Get читает значение.
func (s *MeteredStore) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	value, err := s.next.Get(ctx, key)
	s.observe("get", key, start, err)
	return value, err
}

// Set записывает значение и запоминает его размер.
func (s *MeteredStore) Set(ctx context.Context, key string, value []byte) error {
	start := time.Now()
	err := s.next.Set(ctx, key, value)
	s.observe("set", key, start, err)
	if err == nil {
		s.metrics.valueBytes.WithLabelValues(s.driver, key).Set(float64(len(value)))
	}
	return err
}

// Delete удаляет ключ.
func (s *MeteredStore) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := s.next.Delete(ctx, key)
	s.observe("delete", key, start, err)
	return err
}

// Ping проверяет вложенное хранилище.
func (s *MeteredStore) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

// Close закрывает вложенное хранилище.
func (s *MeteredStore) Close() error {
	return s.next.Close()
}
