package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	agentpaths "github.com/GriffinCanCode/PhishGuard/backend/internal/shared/paths"
)

// Danger actions applied to a tab after the blocking overlay is shown.
const (
	DangerActionRedirect = "redirect"
	DangerActionClose    = "close"
)

// Identity store backends.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config holds all agent configuration.
type Config struct {
	Server    ServerConfig
	Remote    RemoteConfig
	Guard     GuardConfig
	Store     StoreConfig
	Bridge    BridgeConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8765"`
	Host string `envconfig:"HOST" default:"127.0.0.1"`
}

// RemoteConfig describes the remote analysis service.
type RemoteConfig struct {
	BaseURL           string        `envconfig:"REMOTE_BASE_URL" default:"http://localhost:8000"`
	Timeout           time.Duration `envconfig:"REMOTE_TIMEOUT" default:"4s"`
	Retries           int           `envconfig:"REMOTE_RETRIES" default:"1"`
	RequestsPerSecond float64       `envconfig:"REMOTE_RPS" default:"0"`

	CheckPath          string `envconfig:"REMOTE_CHECK_PATH" default:"/check_blocked"`
	AnalyzePath        string `envconfig:"REMOTE_ANALYZE_PATH" default:"/api/evaluate"`
	InfoPath           string `envconfig:"REMOTE_INFO_PATH" default:"/api/global-info"`
	ReportPath         string `envconfig:"REMOTE_REPORT_PATH" default:"/api/report"`
	OverridePath       string `envconfig:"REMOTE_OVERRIDE_PATH" default:"/api/override"`
	RemoveOverridePath string `envconfig:"REMOTE_REMOVE_OVERRIDE_PATH" default:"/api/remove-override"`
	ListOverridesPath  string `envconfig:"REMOTE_LIST_OVERRIDES_PATH" default:"/api/my-blocked-urls"`
}

// GuardConfig holds navigation guard policy.
type GuardConfig struct {
	Profile              string        `envconfig:"GUARD_PROFILE"`
	DangerAction         string        `envconfig:"GUARD_DANGER_ACTION" default:"redirect"`
	OverlayDelay         time.Duration `envconfig:"GUARD_OVERLAY_DELAY" default:"100ms"`
	Debounce             time.Duration `envconfig:"GUARD_DEBOUNCE" default:"1500ms"`
	ExtensionOrigin      string        `envconfig:"EXTENSION_ORIGIN"`
	BlockPageURL         string        `envconfig:"BLOCK_PAGE_URL"`
	SystemScoreThreshold float64       `envconfig:"SYSTEM_SCORE_THRESHOLD" default:"80"`
	Enrich               bool          `envconfig:"GUARD_ENRICH" default:"true"`
}

// StoreConfig selects where the client identity is persisted.
type StoreConfig struct {
	Backend        string `envconfig:"KV_BACKEND" default:"file"`
	Path           string `envconfig:"KV_PATH"`
	RedisAddr      string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword  string `envconfig:"REDIS_PASSWORD"`
	RedisKeyPrefix string `envconfig:"REDIS_KEY_PREFIX" default:"phishguard:"`
}

// BridgeConfig holds extension bridge settings.
type BridgeConfig struct {
	CommandTimeout time.Duration `envconfig:"BRIDGE_COMMAND_TIMEOUT" default:"2s"`
	AllowedOrigins []string      `envconfig:"BRIDGE_ALLOWED_ORIGINS"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"50"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"100"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// LoadDotEnv loads variables from .env files into the process environment.
// Missing files are ignored; variables already set win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env", agentpaths.EnvFile()}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Load loads configuration from environment variables and applies the guard
// profile if one is configured. GUARD_PROFILE is a file path or the name of a
// profile in the user's profiles directory.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Guard.Profile != "" {
		if err := ApplyProfile(&cfg.Guard, agentpaths.Profile(cfg.Guard.Profile)); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8765",
			Host: "127.0.0.1",
		},
		Remote: RemoteConfig{
			BaseURL:            "http://localhost:8000",
			Timeout:            4 * time.Second,
			Retries:            1,
			CheckPath:          "/check_blocked",
			AnalyzePath:        "/api/evaluate",
			InfoPath:           "/api/global-info",
			ReportPath:         "/api/report",
			OverridePath:       "/api/override",
			RemoveOverridePath: "/api/remove-override",
			ListOverridesPath:  "/api/my-blocked-urls",
		},
		Guard: GuardConfig{
			DangerAction:         DangerActionRedirect,
			OverlayDelay:         100 * time.Millisecond,
			Debounce:             1500 * time.Millisecond,
			SystemScoreThreshold: 80,
			Enrich:               true,
		},
		Store: StoreConfig{
			Backend:        BackendFile,
			RedisAddr:      "localhost:6379",
			RedisKeyPrefix: "phishguard:",
		},
		Bridge: BridgeConfig{
			CommandTimeout: 2 * time.Second,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 50,
			Burst:             100,
			Enabled:           true,
		},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Remote.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: REMOTE_BASE_URL %q", ErrInvalidConfig, c.Remote.BaseURL)
	}
	if c.Remote.Timeout <= 0 {
		return fmt.Errorf("%w: REMOTE_TIMEOUT must be positive", ErrInvalidConfig)
	}
	switch c.Guard.DangerAction {
	case DangerActionRedirect, DangerActionClose:
	default:
		return fmt.Errorf("%w: GUARD_DANGER_ACTION %q", ErrInvalidConfig, c.Guard.DangerAction)
	}
	if c.Guard.OverlayDelay < 0 || c.Guard.Debounce < 0 {
		return fmt.Errorf("%w: guard durations must not be negative", ErrInvalidConfig)
	}
	switch c.Store.Backend {
	case BackendFile, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("%w: KV_BACKEND %q", ErrInvalidConfig, c.Store.Backend)
	}
	return nil
}

// Addr returns the listen address of the HTTP server.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// BlockPage returns the block page URL, defaulting to the agent's own page.
func (c *Config) BlockPage() string {
	if c.Guard.BlockPageURL != "" {
		return c.Guard.BlockPageURL
	}
	return "http://" + c.Addr() + "/blocked"
}
