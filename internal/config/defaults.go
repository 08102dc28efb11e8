package config

import (
	"path/filepath"

	"github.com/dshills/ghop/internal/config/loader"
)

// DefaultFiles are the file names probed, in order, when no file is given.
var DefaultFiles = []string{"ghop.yml", "ghop.yaml", "ghop.toml", "ghop.json"}

// FindDefault returns the first default file that exists in dir, or "".
func FindDefault(dir string) string {
	return FindDefaultFS(loader.DefaultFS(), dir)
}

// FindDefaultFS is FindDefault over fsys.
func FindDefaultFS(fsys loader.FileSystem, dir string) string {
	for _, name := range DefaultFiles {
		path := filepath.Join(dir, name)
		if info, err := fsys.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}
