package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/storefront/backend/internal/infrastructure/config"
)

func TestNew(t *testing.T) {
	t.Run("json format", func(t *testing.T) {
		cfg := ProductionConfig()
		l, err := New(cfg)
		require.NoError(t, err)
		assert.NotNil(t, l)
	})

	t.Run("console format", func(t *testing.T) {
		cfg := DefaultConfig()
		l, err := New(cfg)
		require.NoError(t, err)
		assert.NotNil(t, l)
	})
}

func TestFromAppConfig(t *testing.T) {
	t.Run("production defaults to json", func(t *testing.T) {
		l, err := FromAppConfig(config.LogConfig{}, "production")
		require.NoError(t, err)
		assert.NotNil(t, l)
	})

	t.Run("explicit settings win", func(t *testing.T) {
		l, err := FromAppConfig(config.LogConfig{Level: "debug", Format: "json"}, "development")
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
	})
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("unknown"))
}

func TestContextHelpers(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ctx := context.Background()
	ctx, enriched := WithRequestID(ctx, base, "req-123")
	ctx, _ = WithTenantID(ctx, enriched, "tenant-1")
	ctx, _ = WithUserID(ctx, enriched, "user-1")

	assert.Equal(t, "req-123", GetRequestID(ctx))
	assert.Equal(t, "tenant-1", GetTenantID(ctx))
	assert.Equal(t, "user-1", GetUserID(ctx))

	L(ctx).Info("hello")
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-123", fields["request_id"])
	assert.Equal(t, "tenant-1", fields["tenant_id"])
	assert.Equal(t, "user-1", fields["user_id"])
}

func TestFromContext_MissingLogger(t *testing.T) {
	l := FromContext(context.Background())
	assert.NotNil(t, l)
}
