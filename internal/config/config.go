// Package config loads client and server settings from defaults, an
// optional YAML file and INKED_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	clientsync "github.com/INKEDDRAW/InkedDrawApp-sub003/internal/client/sync"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/logging"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/recognition"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/server"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/vision"
)

// EnvPrefix prefixes environment overrides: INKED_SERVER_URL, INKED_SYNC_CONCURRENCY
const EnvPrefix = "INKED"

// ErrInvalid indicates an unusable configuration
var ErrInvalid = errors.New("invalid configuration")

// Client holds the CLI client settings
type Client struct {
	ServerURL string            `mapstructure:"server_url"`
	DBPath    string            `mapstructure:"db_path"`
	Sync      clientsync.Config `mapstructure:"sync"`
	Logging   logging.Config    `mapstructure:"logging"`
}

// Recognition holds matcher settings
type Recognition struct {
	DictionaryPath string              `mapstructure:"dictionary_path"` // пусто: встроенный словарь
	Weights        recognition.Weights `mapstructure:"weights"`
}

// Server holds the API server settings
type Server struct {
	Addr        string                 `mapstructure:"addr"`
	DBPath      string                 `mapstructure:"db_path"`
	JWTSecret   string                 `mapstructure:"jwt_secret"`
	TokenTTL    time.Duration          `mapstructure:"token_ttl"`
	RateLimit   server.RateLimitConfig `mapstructure:"rate_limit"`
	Vision      vision.Config          `mapstructure:"vision"`
	Recognition Recognition            `mapstructure:"recognition"`
	Logging     logging.Config         `mapstructure:"logging"`
}

// Dir returns the directory holding config.yaml and the local database
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "inked"), nil
}

// New creates a viper instance reading configFile, or config.yaml from
// Dir() and the working directory when configFile is empty. A missing
// default config file is not an error.
func New(configFile string) (*viper.Viper, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		if dir, err := Dir(); err == nil {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	return v, nil
}

// SetClientDefaults registers client defaults. Every key needs a default
// for environment overrides to reach Unmarshal.
func SetClientDefaults(v *viper.Viper) {
	dbPath := "inked.db"
	if dir, err := Dir(); err == nil {
		dbPath = filepath.Join(dir, "inked.db")
	}
	s := clientsync.DefaultConfig()

	v.SetDefault("server_url", "http://localhost:8080")
	v.SetDefault("db_path", dbPath)
	v.SetDefault("sync.concurrency", s.Concurrency)
	v.SetDefault("sync.max_attempts", s.MaxAttempts)
	v.SetDefault("sync.backoff_cap", s.BackoffCap)
	v.SetDefault("sync.stale_after", s.StaleAfter)
	v.SetDefault("sync.poll_interval", s.PollInterval)
	v.SetDefault("sync.health_interval", s.HealthInterval)
	v.SetDefault("sync.pull_page_size", s.PullPageSize)
	setLoggingDefaults(v)
}

// SetServerDefaults registers server defaults
func SetServerDefaults(v *viper.Viper) {
	w := recognition.DefaultWeights()

	v.SetDefault("addr", ":8080")
	v.SetDefault("db_path", "inked-server.db")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("token_ttl", 24*time.Hour)
	v.SetDefault("rate_limit.requests", 600)
	v.SetDefault("rate_limit.window", time.Minute)
	v.SetDefault("rate_limit.recognize_requests", 30)
	v.SetDefault("vision.api_key", "")
	v.SetDefault("vision.credentials_file", "")
	v.SetDefault("vision.endpoint", "")
	v.SetDefault("vision.max_results", 10)
	v.SetDefault("vision.timeout", 15*time.Second)
	v.SetDefault("recognition.dictionary_path", "")
	v.SetDefault("recognition.weights.brand", w.Brand)
	v.SetDefault("recognition.weights.model", w.Model)
	v.SetDefault("recognition.weights.size", w.Size)
	v.SetDefault("recognition.weights.wrapper", w.Wrapper)
	v.SetDefault("recognition.weights.uncorroborated_penalty", w.UncorroboratedPenalty)
	v.SetDefault("recognition.weights.min_category_labels", w.MinCategoryLabels)
	setLoggingDefaults(v)
}

func setLoggingDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age_days", 28)
	v.SetDefault("logging.compress", false)
}

// LoadClient decodes and checks client settings
func LoadClient(v *viper.Viper) (*Client, error) {
	var cfg Client
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode client config: %w", err)
	}
	if cfg.ServerURL == "" {
		return nil, fmt.Errorf("%w: server_url is required", ErrInvalid)
	}
	cfg.ServerURL = strings.TrimRight(cfg.ServerURL, "/")
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("%w: db_path is required", ErrInvalid)
	}
	if _, err := logging.ParseLevel(cfg.Logging.Level); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return &cfg, nil
}

// LoadServer decodes and checks server settings
func LoadServer(v *viper.Viper) (*Server, error) {
	var cfg Server
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode server config: %w", err)
	}
	if len(cfg.JWTSecret) < 16 {
		return nil, fmt.Errorf("%w: jwt_secret must be at least 16 characters", ErrInvalid)
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("%w: token_ttl must be positive", ErrInvalid)
	}
	if cfg.RateLimit.Requests > 0 && cfg.RateLimit.Window <= 0 {
		return nil, fmt.Errorf("%w: rate_limit.window must be positive", ErrInvalid)
	}
	w := cfg.Recognition.Weights
	if w.Brand < 0 || w.Model < 0 || w.Size < 0 || w.Wrapper < 0 || w.Brand+w.Model+w.Size+w.Wrapper == 0 {
		return nil, fmt.Errorf("%w: recognition weights must be non-negative with a positive sum", ErrInvalid)
	}
	if w.UncorroboratedPenalty < 0 || w.UncorroboratedPenalty > 1 {
		return nil, fmt.Errorf("%w: recognition.weights.uncorroborated_penalty must be within [0, 1]", ErrInvalid)
	}
	if _, err := logging.ParseLevel(cfg.Logging.Level); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return &cfg, nil
}
