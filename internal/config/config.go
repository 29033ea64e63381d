/*
Package config manages the TOML config for ackeys.

Values come from, in increasing priority: built-in defaults, the config
file, and ACKEYS_* environment variables.
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/corey/ackeys/internal/domain/automaton"
)

// Backends accepted in [store].backend.
const (
	BackendBbolt  = "bbolt"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Duration is a time.Duration written as a string like "1s" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config holds the entire config structure
type Config struct {
	Store  StoreConfig  `toml:"store"`
	Redis  RedisConfig  `toml:"redis"`
	Engine EngineConfig `toml:"engine"`
	Log    LogConfig    `toml:"log"`
}

// StoreConfig selects and configures the backend.
type StoreConfig struct {
	Backend string   `toml:"backend"`
	Path    string   `toml:"path"` // bbolt file; empty means <root>/.ackeys/ackeys.db
	Timeout Duration `toml:"timeout"`
}

// RedisConfig holds connection options for the redis backend.
type RedisConfig struct {
	Addr        string   `toml:"addr"`
	DB          int      `toml:"db"`
	Password    string   `toml:"password"`
	DialTimeout Duration `toml:"dial_timeout"`
}

// EngineConfig holds automaton options.
type EngineConfig struct {
	Name      string `toml:"name"`
	ScanBatch int    `toml:"scan_batch"`
}

// LogConfig holds logging options.
type LogConfig struct {
	Level string `toml:"level"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Backend: BackendBbolt,
			Timeout: Duration{time.Second},
		},
		Redis: RedisConfig{
			Addr:        "localhost:6379",
			DB:          12,
			DialTimeout: Duration{2 * time.Second},
		},
		Engine: EngineConfig{
			Name:      "ackeys",
			ScanBatch: 64,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads from a TOML file over the defaults. Keys missing from the
// file keep their default.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()
	if _, err := toml.DecodeFile(configPath, config); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configPath, err)
	}
	return config, nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag (must exist and parse)
// 2. <root>/.ackeys/config.toml, if present
// 3. Builtin defaults
//
// Environment overrides are applied last. The returned path is the file that
// was read, or "" for defaults.
func LoadConfigWithPriority(customPath, defaultPath string) (*Config, string, error) {
	var (
		config *Config
		path   string
		err    error
	)
	switch {
	case customPath != "":
		config, err = LoadConfig(customPath)
		if err != nil {
			return nil, "", err
		}
		path = customPath
	case fileExists(defaultPath):
		config, err = LoadConfig(defaultPath)
		if err != nil {
			log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", defaultPath, err)
			config = DefaultConfig()
		} else {
			path = defaultPath
		}
	default:
		config = DefaultConfig()
	}

	if err := config.applyEnv(); err != nil {
		return nil, "", err
	}
	if err := config.Validate(); err != nil {
		return nil, "", err
	}
	return config, path, nil
}

// SaveConfig saves into a TOML file, creating its directory.
func SaveConfig(config *Config, configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return err
	}
	f, err := os.Create(configPath)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(config); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendBbolt, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("unknown store backend %q (want bbolt, redis or memory)", c.Store.Backend)
	}
	if err := automaton.ValidateName(c.Engine.Name); err != nil {
		return fmt.Errorf("engine name: %w", err)
	}
	if c.Engine.ScanBatch < 1 {
		return fmt.Errorf("engine scan_batch must be positive, got %d", c.Engine.ScanBatch)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Store.Backend = getEnv("ACKEYS_BACKEND", c.Store.Backend)
	c.Store.Path = getEnv("ACKEYS_DB_PATH", c.Store.Path)
	c.Redis.Addr = getEnv("ACKEYS_REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("ACKEYS_REDIS_PASSWORD", c.Redis.Password)
	c.Engine.Name = getEnv("ACKEYS_NAME", c.Engine.Name)
	c.Log.Level = getEnv("ACKEYS_LOG_LEVEL", c.Log.Level)

	if v := os.Getenv("ACKEYS_REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ACKEYS_REDIS_DB: %w", err)
		}
		c.Redis.DB = db
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
