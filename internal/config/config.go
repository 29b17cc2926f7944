// Package config loads the splash CLI configuration from a YAML file, a .env
// file and the process environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aretw0/splash/internal/logging"
	"github.com/aretw0/splash/pkg/domain"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full CLI configuration.
type Config struct {
	LogLevel   string        `yaml:"log_level" mapstructure:"log_level"`
	LogFormat  string        `yaml:"log_format" mapstructure:"log_format"`
	CatalogDir string        `yaml:"catalog_dir" mapstructure:"catalog_dir"`
	Timing     domain.Timing `yaml:"timing" mapstructure:"timing"`
	Server     Server        `yaml:"server" mapstructure:"server"`
	Store      Store         `yaml:"store" mapstructure:"store"`
	Backend    Backend       `yaml:"backend" mapstructure:"backend"`
	Login      Login         `yaml:"login" mapstructure:"login"`
}

// Server configures `splash serve`.
type Server struct {
	Addr            string        `yaml:"addr" mapstructure:"addr"`
	Metrics         bool          `yaml:"metrics" mapstructure:"metrics"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// Store selects where session snapshots are persisted.
type Store struct {
	Driver      string        `yaml:"driver" mapstructure:"driver"`
	RedisAddr   string        `yaml:"redis_addr" mapstructure:"redis_addr"`
	RedisPrefix string        `yaml:"redis_prefix" mapstructure:"redis_prefix"`
	TTL         time.Duration `yaml:"ttl" mapstructure:"ttl"`
	SQLitePath  string        `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	Lock        bool          `yaml:"lock" mapstructure:"lock"`
}

// Backend holds the hosted backend credentials used by the startup probes.
type Backend struct {
	URL         string `yaml:"url" mapstructure:"url"`
	Key         string `yaml:"key" mapstructure:"key"`
	PolicyTable string `yaml:"policy_table" mapstructure:"policy_table"`
	Probe       bool   `yaml:"probe" mapstructure:"probe"`
}

// Configured reports whether both URL and key are set.
func (b Backend) Configured() bool {
	return b.URL != "" && b.Key != ""
}

// Login configures the simulated sign-in.
type Login struct {
	Delay time.Duration `yaml:"delay" mapstructure:"delay"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: string(logging.FormatText),
		Timing:    domain.DefaultTiming(),
		Server: Server{
			Addr:            ":8080",
			ShutdownTimeout: 5 * time.Second,
		},
		Store: Store{
			Driver:      StoreMemory,
			RedisAddr:   "localhost:6379",
			RedisPrefix: "splash:",
			SQLitePath:  "splash.db",
		},
		Backend: Backend{
			PolicyTable: "products",
			Probe:       true,
		},
		Login: Login{
			Delay: time.Second,
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (optional),
// the .env file at envFile (optional) and the process environment.
// A missing file is only an error when its path was given explicitly.
func Load(path, envFile string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
		if err := Decode(data, &cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
	}

	fileEnv := map[string]string{}
	if envFile != "" {
		var err error
		fileEnv, err = godotenv.Read(envFile)
		if err != nil {
			return cfg, fmt.Errorf("failed to read env file: %w", err)
		}
	} else if _, err := os.Stat(".env"); err == nil {
		if vars, err := godotenv.Read(".env"); err == nil {
			fileEnv = vars
		}
	}

	applyEnv(&cfg, func(key string) string {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v
		}
		return fileEnv[key]
	})

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Decode overlays YAML data onto cfg. Durations are written as "300ms", "6s".
// Unknown keys are rejected.
func Decode(data []byte, cfg *Config) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse yaml: %w", err)
	}
	if len(raw) == 0 {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  mapstructure.StringToTimeDurationHookFunc(),
		ErrorUnused: true,
		Result:      cfg,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// applyEnv overrides fields from environment variables. The backend falls back
// to the SUPABASE_* names used by existing POS deployments.
func applyEnv(cfg *Config, getenv func(string) string) {
	first := func(keys ...string) string {
		for _, k := range keys {
			if v := getenv(k); v != "" {
				return v
			}
		}
		return ""
	}

	if v := first("SPLASH_BACKEND_URL", "SUPABASE_URL", "VITE_SUPABASE_URL"); v != "" {
		cfg.Backend.URL = v
	}
	if v := first("SPLASH_BACKEND_KEY", "SUPABASE_ANON_KEY", "VITE_SUPABASE_ANON_KEY"); v != "" {
		cfg.Backend.Key = v
	}
	if v := getenv("SPLASH_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := getenv("SPLASH_STORE"); v != "" {
		cfg.Store.Driver = strings.ToLower(v)
	}
	if v := getenv("SPLASH_REDIS_ADDR"); v != "" {
		cfg.Store.RedisAddr = v
	}
	if v := getenv("SPLASH_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
}

// Validate checks the values a command cannot run without.
func (c Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	switch logging.Format(c.LogFormat) {
	case logging.FormatText, logging.FormatJSON:
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, c.LogFormat)
	}
	switch c.Store.Driver {
	case StoreMemory, StoreRedis, StoreSQLite:
	default:
		return fmt.Errorf("%w: unknown store driver %q", ErrInvalidConfig, c.Store.Driver)
	}
	if c.Login.Delay < 0 {
		return fmt.Errorf("%w: login delay must not be negative", ErrInvalidConfig)
	}
	steps := domain.DefaultCatalog().Len()
	if c.CatalogDir != "" {
		// The directory catalog is checked again once loaded.
		steps = max(steps, c.Timing.FaultStep+1)
	}
	return c.Timing.Validate(steps)
}
