package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/ackeys/internal/domain/automaton"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	assert.Equal(t, BackendBbolt, c.Store.Backend)
	assert.Equal(t, time.Second, c.Store.Timeout.Duration)
	assert.Equal(t, "localhost:6379", c.Redis.Addr)
	assert.Equal(t, 12, c.Redis.DB)
	assert.Equal(t, "ackeys", c.Engine.Name)
	assert.Equal(t, 64, c.Engine.ScanBatch)
	assert.NoError(t, c.Validate())
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, `
[store]
backend = "redis"
timeout = "250ms"

[redis]
addr = "cache:6380"
`)

	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, BackendRedis, c.Store.Backend)
	assert.Equal(t, 250*time.Millisecond, c.Store.Timeout.Duration)
	assert.Equal(t, "cache:6380", c.Redis.Addr)
	assert.Equal(t, 12, c.Redis.DB, "untouched keys keep defaults")
	assert.Equal(t, "ackeys", c.Engine.Name)
}

func TestLoadConfig_BadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, "[store]\ntimeout = \"soon\"\n")

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	c := DefaultConfig()
	c.Engine.Name = "tags"
	c.Redis.DialTimeout = Duration{5 * time.Second}

	require.NoError(t, SaveConfig(c, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `dial_timeout = "5s"`)

	got, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestLoadConfigWithPriority(t *testing.T) {
	dir := t.TempDir()
	defaultPath := filepath.Join(dir, ".ackeys", "config.toml")
	customPath := filepath.Join(dir, "custom.toml")

	// Nothing on disk: defaults.
	c, path, err := LoadConfigWithPriority("", defaultPath)
	require.NoError(t, err)
	assert.Equal(t, "", path)
	assert.Equal(t, DefaultConfig(), c)

	// Default file present.
	writeFile(t, defaultPath, "[engine]\nname = \"proj\"\n")
	c, path, err = LoadConfigWithPriority("", defaultPath)
	require.NoError(t, err)
	assert.Equal(t, defaultPath, path)
	assert.Equal(t, "proj", c.Engine.Name)

	// Custom file wins.
	writeFile(t, customPath, "[engine]\nname = \"custom\"\n")
	c, path, err = LoadConfigWithPriority(customPath, defaultPath)
	require.NoError(t, err)
	assert.Equal(t, customPath, path)
	assert.Equal(t, "custom", c.Engine.Name)

	// A missing custom file is an error, not a silent fallback.
	_, _, err = LoadConfigWithPriority(filepath.Join(dir, "nope.toml"), defaultPath)
	assert.Error(t, err)
}

func TestLoadConfigWithPriority_BrokenDefaultFallsBack(t *testing.T) {
	defaultPath := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, defaultPath, "[engine\nname=")

	c, path, err := LoadConfigWithPriority("", defaultPath)
	require.NoError(t, err)
	assert.Equal(t, "", path)
	assert.Equal(t, DefaultConfig(), c)
}

func TestLoadConfigWithPriority_EnvOverrides(t *testing.T) {
	t.Setenv("ACKEYS_BACKEND", "memory")
	t.Setenv("ACKEYS_NAME", "fromenv")
	t.Setenv("ACKEYS_REDIS_ADDR", "redis.internal:6379")
	t.Setenv("ACKEYS_REDIS_DB", "3")
	t.Setenv("ACKEYS_LOG_LEVEL", "debug")

	c, _, err := LoadConfigWithPriority("", "")
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, c.Store.Backend)
	assert.Equal(t, "fromenv", c.Engine.Name)
	assert.Equal(t, "redis.internal:6379", c.Redis.Addr)
	assert.Equal(t, 3, c.Redis.DB)
	assert.Equal(t, "debug", c.Log.Level)

	t.Setenv("ACKEYS_REDIS_DB", "three")
	_, _, err = LoadConfigWithPriority("", "")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	c := DefaultConfig()
	c.Store.Backend = "postgres"
	assert.ErrorContains(t, c.Validate(), "unknown store backend")

	c = DefaultConfig()
	c.Engine.ScanBatch = 0
	assert.Error(t, c.Validate())

	c = DefaultConfig()
	c.Engine.Name = ""
	assert.Error(t, c.Validate())

	c = DefaultConfig()
	c.Engine.Name = "a:node"
	err := c.Validate()
	assert.ErrorIs(t, err, automaton.ErrInvalidInput)
	assert.ErrorContains(t, err, "engine name")
}

func TestLoadConfigWithPriority_EnvNameWithSeparator(t *testing.T) {
	t.Setenv("ACKEYS_NAME", "ackeys:node")
	_, _, err := LoadConfigWithPriority("", filepath.Join(t.TempDir(), "config.toml"))
	assert.ErrorIs(t, err, automaton.ErrInvalidInput)
}
