package logger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"notepad/pkg/logger"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		env     logger.Environment
		level   string
		wantErr bool
	}{
		{name: "development default level", env: logger.Development},
		{name: "production with info", env: logger.Production, level: "info"},
		{name: "upper case level", env: logger.Development, level: "DEBUG"},
		{name: "unknown level", env: logger.Production, level: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := logger.NewLogger(tt.env, tt.level)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, logger.ErrInvalidLevel)
				assert.Nil(t, log)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, log)
		})
	}
}

func TestLoggerWith(t *testing.T) {
	log := logger.NewNop()

	child := log.With(zap.String("key", "value"))
	assert.NotSame(t, log, child)

	named := log.Named("store")
	assert.NotSame(t, log, named)

	assert.NotPanics(t, func() {
		ctx := logger.NewRequestIDContext(context.Background(), "req-1")
		child.Debug(ctx, "debug")
		child.Info(ctx, "info")
		child.Warn(ctx, "warn")
		child.Error(ctx, "error")
	})
}

func TestFromContext(t *testing.T) {
	t.Run("logger stored in context", func(t *testing.T) {
		log := logger.NewNop()
		ctx := logger.NewContext(context.Background(), log)

		got, err := logger.FromContext(ctx)
		require.NoError(t, err)
		assert.Same(t, log, got)
	})

	t.Run("missing logger", func(t *testing.T) {
		got, err := logger.FromContext(context.Background())
		require.ErrorIs(t, err, logger.ErrLoggerNotFound)
		assert.Nil(t, got)
	})
}

func TestLogResolution(t *testing.T) {
	t.Cleanup(func() { logger.SetGlobalLogger(nil) })

	logger.SetGlobalLogger(nil)
	fallback := logger.Log(context.Background())
	require.NotNil(t, fallback)

	global := logger.NewNop()
	logger.SetGlobalLogger(global)
	assert.Same(t, global, logger.Log(context.Background()))

	scoped := logger.NewNop()
	ctx := logger.NewContext(context.Background(), scoped)
	assert.Same(t, scoped, logger.Log(ctx))
}

func TestRequestID(t *testing.T) {
	t.Run("explicit id", func(t *testing.T) {
		ctx := logger.NewRequestIDContext(context.Background(), "abc")
		id, ok := logger.GetRequestID(ctx)
		assert.True(t, ok)
		assert.Equal(t, "abc", id)
	})

	t.Run("generated id", func(t *testing.T) {
		ctx := logger.NewRequestIDContext(context.Background(), "")
		id, ok := logger.GetRequestID(ctx)
		assert.True(t, ok)
		assert.Len(t, id, 36)
	})

	t.Run("WithRequestID without id returns same logger", func(t *testing.T) {
		log := logger.NewNop()
		assert.Same(t, log, log.WithRequestID(context.Background()))
	})

	t.Run("WithRequestID with id returns child", func(t *testing.T) {
		log := logger.NewNop()
		ctx := logger.NewRequestIDContext(context.Background(), "")
		assert.NotSame(t, log, log.WithRequestID(ctx))
	})

	t.Run("generated ids differ", func(t *testing.T) {
		assert.NotEqual(t, logger.GenerateRequestID(), logger.GenerateRequestID())
	})
}
