package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaths(t *testing.T) {
	p := NewPaths("/project")
	assert.Equal(t, filepath.Join("/project", ".ackeys"), p.Root)
	assert.Equal(t, filepath.Join("/project", ".ackeys", "ackeys.db"), p.DB)
	assert.Equal(t, filepath.Join("/project", ".ackeys", "config.toml"), p.Config)
}

func TestEnsureDirs(t *testing.T) {
	dir := t.TempDir()
	p := NewPaths(dir)

	// First call creates the directory.
	require.NoError(t, p.EnsureDirs())
	info, err := os.Stat(p.Root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Second call is idempotent, no error.
	require.NoError(t, p.EnsureDirs())
}
