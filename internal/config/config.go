package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sethvargo/go-envconfig"

	"github.com/gosuda/agrotrack/internal/httpclient"
)

// Prefix is prepended to every variable name.
const Prefix = "AGROTRACK_"

// Renderer names accepted in AGROTRACK_NOTIFY_RENDERERS.
const (
	RendererConsole = "console"
	RendererSlack   = "slack"
)

const defaultDotEnv = ".env"

// Config holds all application configuration loaded from environment variables.
type Config struct {
	API         APIConfig
	Notify      NotifyConfig
	Slack       SlackConfig
	Redis       RedisConfig
	Log         LogConfig
	Env         string `env:"ENV,default=development"`
	DiagBuffer  int    `env:"DIAG_BUFFER,default=256"`
	MetricsAddr string `env:"METRICS_ADDR"`
}

// APIConfig holds the sales backend connection settings.
type APIConfig struct {
	URL        string        `env:"API_URL,default=http://localhost:8085/v1/api"`
	Token      string        `env:"API_TOKEN"` //nolint:gosec // G117: bearer token config
	Timeout    time.Duration `env:"REQUEST_TIMEOUT,default=30s"`
	RetryDelay time.Duration `env:"RETRY_DELAY,default=1s"`
	MaxRetries int           `env:"MAX_RETRIES,default=1"`
	RateLimit  float64       `env:"RATE_LIMIT,default=10"`
	RateBurst  int           `env:"RATE_BURST,default=5"`
}

// NotifyConfig selects how notifications are shown.
type NotifyConfig struct {
	Timer     time.Duration `env:"NOTIFY_TIMER,default=3s"`
	Renderers []string      `env:"NOTIFY_RENDERERS,default=console"`
}

// SlackConfig holds the Slack mirror settings.
type SlackConfig struct {
	BotToken string `env:"SLACK_BOT_TOKEN"` //nolint:gosec // G117: Slack token config
	Channel  string `env:"SLACK_CHANNEL"`
}

// RedisConfig holds the diagnostics bus settings. An empty Addr disables it.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"` //nolint:gosec // G117: Redis connection config
	DB       int    `env:"REDIS_DB,default=0"`
	Channel  string `env:"REDIS_CHANNEL"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL,default=info"`
	Format string `env:"LOG_FORMAT,default=json"`
}

// Load reads configuration from the environment. Values missing from the
// environment are taken from the given dotenv files, or from ./.env when none
// are given; a missing ./.env is not an error. Real environment variables
// always win over the files.
func Load(ctx context.Context, dotenv ...string) (*Config, error) {
	files, err := readDotEnv(dotenv)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	cfg, err := load(ctx, envconfig.MultiLookuper(
		envconfig.OsLookuper(),
		envconfig.MapLookuper(files),
	))
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return cfg, nil
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: envconfig.PrefixLookuper(Prefix, l),
	}); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func readDotEnv(paths []string) (map[string]string, error) {
	optional := len(paths) == 0
	if optional {
		paths = []string{defaultDotEnv}
	}

	vars, err := godotenv.Read(paths...)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", strings.Join(paths, ","), err)
	}
	return vars, nil
}

func (c *Config) normalize() {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))

	renderers := make([]string, 0, len(c.Notify.Renderers))
	for _, r := range c.Notify.Renderers {
		if r = strings.ToLower(strings.TrimSpace(r)); r != "" {
			renderers = append(renderers, r)
		}
	}
	c.Notify.Renderers = renderers
}

// validate checks required fields and value bounds.
func (c *Config) validate() error {
	u, err := url.Parse(c.API.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("AGROTRACK_API_URL must be an absolute http(s) URL, got %q", c.API.URL)
	}
	if u.Scheme == "http" && c.IsProduction() {
		log.Warn().Msg("AGROTRACK_API_URL uses plain http in production; bearer tokens travel unencrypted")
	}
	if c.API.Token == "" && c.IsProduction() {
		log.Warn().Msg("AGROTRACK_API_TOKEN is empty; protected resources will answer 401")
	}

	// Bounds checks.
	if c.API.Timeout <= 0 {
		return fmt.Errorf("AGROTRACK_REQUEST_TIMEOUT must be positive, got %s", c.API.Timeout)
	}
	if c.API.RetryDelay < 0 {
		return fmt.Errorf("AGROTRACK_RETRY_DELAY must not be negative, got %s", c.API.RetryDelay)
	}
	// A zero-status failure is retried at most once.
	if c.API.MaxRetries < 0 || c.API.MaxRetries > 1 {
		return fmt.Errorf("AGROTRACK_MAX_RETRIES must be 0 or 1, got %d", c.API.MaxRetries)
	}
	if c.API.RateLimit < 0 {
		return fmt.Errorf("AGROTRACK_RATE_LIMIT must not be negative, got %g", c.API.RateLimit)
	}
	if c.API.RateLimit > 0 && c.API.RateBurst < 1 {
		return fmt.Errorf("AGROTRACK_RATE_BURST must be >= 1, got %d", c.API.RateBurst)
	}
	if c.Notify.Timer < 0 {
		return fmt.Errorf("AGROTRACK_NOTIFY_TIMER must not be negative, got %s", c.Notify.Timer)
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("AGROTRACK_REDIS_DB must be >= 0, got %d", c.Redis.DB)
	}
	if c.DiagBuffer < 1 {
		return fmt.Errorf("AGROTRACK_DIAG_BUFFER must be >= 1, got %d", c.DiagBuffer)
	}

	if len(c.Notify.Renderers) == 0 {
		return errors.New("AGROTRACK_NOTIFY_RENDERERS must name at least one renderer")
	}
	for _, r := range c.Notify.Renderers {
		switch r {
		case RendererConsole:
		case RendererSlack:
			if c.Slack.BotToken == "" || c.Slack.Channel == "" {
				return errors.New("AGROTRACK_SLACK_BOT_TOKEN and AGROTRACK_SLACK_CHANNEL are required for the slack renderer")
			}
		default:
			return fmt.Errorf("AGROTRACK_NOTIFY_RENDERERS: unknown renderer %q", r)
		}
	}

	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("AGROTRACK_LOG_LEVEL: %w", err)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("AGROTRACK_LOG_FORMAT must be 'json' or 'text', got %q", c.Log.Format)
	}

	return nil
}

// IsProduction reports whether unexpected failure details are hidden.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Policy returns the per-call retry and timeout bounds.
func (c *Config) Policy() httpclient.Policy {
	return httpclient.Policy{
		Timeout:    c.API.Timeout,
		MaxRetries: c.API.MaxRetries,
		RetryDelay: c.API.RetryDelay,
	}
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}
