package app

import (
	"os"
	"path/filepath"
)

// Paths holds all resolved filesystem paths for the .ackeys/ project directory.
type Paths struct {
	Root   string // .ackeys/
	DB     string // .ackeys/ackeys.db
	Config string // .ackeys/config.toml
}

// NewPaths constructs all resolved paths from a project root directory.
func NewPaths(projectRoot string) *Paths {
	root := filepath.Join(projectRoot, ".ackeys")
	return &Paths{
		Root:   root,
		DB:     filepath.Join(root, "ackeys.db"),
		Config: filepath.Join(root, "config.toml"),
	}
}

// EnsureDirs creates the .ackeys/ directory. Idempotent.
func (p *Paths) EnsureDirs() error {
	return os.MkdirAll(p.Root, 0755)
}
