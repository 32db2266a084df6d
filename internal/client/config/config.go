package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ReloopAI/vibecut-frontend-2/internal/filex"
	"github.com/ReloopAI/vibecut-frontend-2/internal/flagx"
	"github.com/go-playground/validator/v10"
)

// Config holds runtime settings for the vibecut client.
type Config struct {
	APIBaseURL  string        `mapstructure:"api_base_url" env:"VIBECUT_API_BASE_URL" validate:"required,url"`
	DataDir     string        `mapstructure:"data_dir" env:"VIBECUT_DATA_DIR" validate:"required"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout" env:"VIBECUT_HTTP_TIMEOUT" validate:"gte=0"`
	Store       StoreConfig   `mapstructure:"store"`
	Log         LogConfig     `mapstructure:"log"`
	Import      ImportConfig  `mapstructure:"import"`
}

// StoreConfig selects the local keyed store backend.
type StoreConfig struct {
	Driver    string `mapstructure:"driver" env:"VIBECUT_STORE_DRIVER" validate:"oneof=sqlite redis"`
	RedisAddr string `mapstructure:"redis_addr" env:"VIBECUT_REDIS_ADDR" validate:"required_if=Driver redis"`
	RedisDB   int    `mapstructure:"redis_db" env:"VIBECUT_REDIS_DB" validate:"gte=0"`
}

type LogConfig struct {
	Format string `mapstructure:"format" env:"VIBECUT_LOG_FORMAT" validate:"oneof=text json zap"`
	Level  string `mapstructure:"level" env:"VIBECUT_LOG_LEVEL" validate:"oneof=debug info warn error"`
}

// ImportConfig drives the import-folder watcher.
type ImportConfig struct {
	IncludePatterns []string `mapstructure:"include_patterns" env:"VIBECUT_IMPORT_INCLUDE" env-separator:","`
	IgnorePatterns  []string `mapstructure:"ignore_patterns" env:"VIBECUT_IMPORT_IGNORE" env-separator:","`
	DebounceMs      int      `mapstructure:"debounce_ms" env:"VIBECUT_IMPORT_DEBOUNCE_MS" validate:"gte=0"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:3001/api"
	c.DataDir = defaultDataDir()
	c.HTTPTimeout = 30 * time.Second
	c.Store = StoreConfig{Driver: "sqlite"}
	c.Log = LogConfig{Format: "text", Level: "info"}
	c.Import = ImportConfig{
		IncludePatterns: []string{
			"**/*.mp4", "**/*.mov", "**/*.webm", "**/*.mkv",
			"**/*.mp3", "**/*.wav", "**/*.m4a", "**/*.ogg",
			"**/*.png", "**/*.jpg", "**/*.jpeg", "**/*.gif", "**/*.webp",
		},
		IgnorePatterns: []string{"**/.DS_Store", "**/.*/**", "**/*.part", "**/*.crdownload"},
		DebounceMs:     500,
	}
}

// DatabasePath is the SQLite file backing the local store.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "vibecut.db")
}

// LoadConfig builds a Config from defaults, the optional config file, the
// environment and finally the flags found in args (usually os.Args[1:]).
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseFile(cfg, flagx.ConfigFileFlag(args)); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, ".env"); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.APIBaseURL), "/")
	c.DataDir = filex.ExpandPath(c.DataDir)
	c.Store.Driver = strings.ToLower(c.Store.Driver)
	c.Log.Format = strings.ToLower(c.Log.Format)
	c.Log.Level = strings.ToLower(c.Log.Level)
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func defaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "vibecut")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".vibecut"
	}
	return filepath.Join(home, ".vibecut")
}
