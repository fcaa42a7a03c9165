package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadMap(t *testing.T, env map[string]string) (*Config, error) {
	t.Helper()
	prefixed := make(map[string]string, len(env))
	for k, v := range env {
		prefixed[Prefix+k] = v
	}
	return load(t.Context(), envconfig.MapLookuper(prefixed))
}

// ---------------------------------------------------------------------------
// Defaults
// ---------------------------------------------------------------------------

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := loadMap(t, nil)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8085/v1/api", cfg.API.URL)
	assert.Empty(t, cfg.API.Token)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, time.Second, cfg.API.RetryDelay)
	assert.Equal(t, 1, cfg.API.MaxRetries)
	assert.InDelta(t, 10.0, cfg.API.RateLimit, 1e-9)
	assert.Equal(t, 5, cfg.API.RateBurst)
	assert.Equal(t, 3*time.Second, cfg.Notify.Timer)
	assert.Equal(t, []string{RendererConsole}, cfg.Notify.Renderers)
	assert.Equal(t, "development", cfg.Env)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, 256, cfg.DiagBuffer)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Empty(t, cfg.MetricsAddr)
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel())
	assert.Equal(t, "json", cfg.Log.Format)

	p := cfg.Policy()
	assert.Equal(t, 30*time.Second, p.Timeout)
	assert.Equal(t, 1, p.MaxRetries)
	assert.Equal(t, time.Second, p.RetryDelay)
}

func TestLoad_Overrides(t *testing.T) {
	t.Parallel()

	cfg, err := loadMap(t, map[string]string{
		"API_URL":          "https://ventas.example.com/v1/api",
		"API_TOKEN":        "tok",
		"REQUEST_TIMEOUT":  "5s",
		"RETRY_DELAY":      "250ms",
		"MAX_RETRIES":      "0",
		"RATE_LIMIT":       "2.5",
		"RATE_BURST":       "1",
		"ENV":              " Production ",
		"NOTIFY_TIMER":     "0s",
		"NOTIFY_RENDERERS": "Console, slack",
		"SLACK_BOT_TOKEN":  "xoxb-1",
		"SLACK_CHANNEL":    "C123",
		"REDIS_ADDR":       "localhost:6379",
		"REDIS_DB":         "2",
		"REDIS_CHANNEL":    "ventas",
		"DIAG_BUFFER":      "16",
		"METRICS_ADDR":     ":9100",
		"LOG_LEVEL":        "DEBUG",
		"LOG_FORMAT":       "text",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://ventas.example.com/v1/api", cfg.API.URL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, 250*time.Millisecond, cfg.API.RetryDelay)
	assert.Equal(t, 0, cfg.API.MaxRetries)
	assert.InDelta(t, 2.5, cfg.API.RateLimit, 1e-9)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, time.Duration(0), cfg.Notify.Timer)
	assert.Equal(t, []string{RendererConsole, RendererSlack}, cfg.Notify.Renderers)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, "ventas", cfg.Redis.Channel)
	assert.Equal(t, 16, cfg.DiagBuffer)
	assert.Equal(t, ":9100", cfg.MetricsAddr)
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel())
	assert.Equal(t, "text", cfg.Log.Format)
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

func TestLoad_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{name: "relative url", env: map[string]string{"API_URL": "/v1/api"}, wantErr: "AGROTRACK_API_URL"},
		{name: "ftp url", env: map[string]string{"API_URL": "ftp://host/v1"}, wantErr: "AGROTRACK_API_URL"},
		{name: "zero timeout", env: map[string]string{"REQUEST_TIMEOUT": "0s"}, wantErr: "AGROTRACK_REQUEST_TIMEOUT"},
		{name: "negative delay", env: map[string]string{"RETRY_DELAY": "-1s"}, wantErr: "AGROTRACK_RETRY_DELAY"},
		{name: "second retry", env: map[string]string{"MAX_RETRIES": "2"}, wantErr: "AGROTRACK_MAX_RETRIES"},
		{name: "negative retries", env: map[string]string{"MAX_RETRIES": "-1"}, wantErr: "AGROTRACK_MAX_RETRIES"},
		{name: "negative rate", env: map[string]string{"RATE_LIMIT": "-1"}, wantErr: "AGROTRACK_RATE_LIMIT"},
		{name: "zero burst", env: map[string]string{"RATE_BURST": "0"}, wantErr: "AGROTRACK_RATE_BURST"},
		{name: "negative timer", env: map[string]string{"NOTIFY_TIMER": "-3s"}, wantErr: "AGROTRACK_NOTIFY_TIMER"},
		{name: "negative redis db", env: map[string]string{"REDIS_DB": "-1"}, wantErr: "AGROTRACK_REDIS_DB"},
		{name: "zero buffer", env: map[string]string{"DIAG_BUFFER": "0"}, wantErr: "AGROTRACK_DIAG_BUFFER"},
		{name: "no renderers", env: map[string]string{"NOTIFY_RENDERERS": " , "}, wantErr: "at least one renderer"},
		{name: "unknown renderer", env: map[string]string{"NOTIFY_RENDERERS": "console,sms"}, wantErr: `"sms"`},
		{name: "slack without token", env: map[string]string{"NOTIFY_RENDERERS": "slack", "SLACK_CHANNEL": "C1"}, wantErr: "AGROTRACK_SLACK_BOT_TOKEN"},
		{name: "bad log level", env: map[string]string{"LOG_LEVEL": "loud"}, wantErr: "AGROTRACK_LOG_LEVEL"},
		{name: "bad log format", env: map[string]string{"LOG_FORMAT": "xml"}, wantErr: "AGROTRACK_LOG_FORMAT"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := loadMap(t, tc.env)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoad_UnparsableValue(t *testing.T) {
	t.Parallel()

	_, err := loadMap(t, map[string]string{"MAX_RETRIES": "many"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAX_RETRIES")
}

// ---------------------------------------------------------------------------
// Environment and dotenv files
// ---------------------------------------------------------------------------

func TestLoad_EnvironmentWinsOverDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agrotrack.env")
	require.NoError(t, os.WriteFile(path, []byte(
		"AGROTRACK_API_URL=https://from-file.example.com/v1/api\n"+
			"AGROTRACK_MAX_RETRIES=1\n",
	), 0o600))

	t.Setenv("AGROTRACK_MAX_RETRIES", "0")

	cfg, err := Load(t.Context(), path)
	require.NoError(t, err)
	assert.Equal(t, "https://from-file.example.com/v1/api", cfg.API.URL)
	assert.Equal(t, 0, cfg.API.MaxRetries)
}

func TestLoad_MissingExplicitDotEnv(t *testing.T) {
	t.Parallel()

	_, err := Load(t.Context(), filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config.Load")
}

func TestLoad_MissingDefaultDotEnvIsIgnored(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(t.Context())
	require.NoError(t, err)
	assert.NotNil(t, cfg)
}
