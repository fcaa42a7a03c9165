package redis_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisstore "github.com/gosuda/agrotrack/internal/store/redis"
)

func TestDiagnosticsChannel(t *testing.T) {
	t.Parallel()

	t.Run("default base", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "agrotrack:diagnostics", redisstore.DiagnosticsChannel("", ""))
		assert.Equal(t, "agrotrack:diagnostics", redisstore.DiagnosticsChannel("  ", " "))
	})

	t.Run("scoped by environment", func(t *testing.T) {
		t.Parallel()

		got := redisstore.DiagnosticsChannel("", "production")
		assert.Equal(t, "agrotrack:diagnostics:production", got)
		assert.True(t, strings.HasPrefix(got, redisstore.DefaultDiagnosticsChannel))
	})

	t.Run("custom base", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "ventas:errores:development", redisstore.DiagnosticsChannel("ventas:errores", "development"))
	})

	t.Run("deterministic", func(t *testing.T) {
		t.Parallel()

		a := redisstore.DiagnosticsChannel("x", "y")
		b := redisstore.DiagnosticsChannel("x", "y")
		assert.Equal(t, a, b)
	})
}

func TestNew_UnreachableServer(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(t.Context(), 3*time.Second)
	defer cancel()

	ps, err := redisstore.New(ctx, redisstore.Options{Addr: "127.0.0.1:1"})

	require.Error(t, err)
	assert.Nil(t, ps)
	assert.Contains(t, err.Error(), "redis.New: ping")
}
