package platform

import (
	"errors"
	"os"
	"path/filepath"
)

// ErrNoConfig is returned by FindConfig when no project config exists.
var ErrNoConfig = errors.New("config not found")

// FindConfig looks upwards from startDir for a .cleverpad.toml file and
// returns its absolute path.
func FindConfig(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoConfig
		}
		dir = parent
	}
}

// ResolveConfigPath prefers an explicit path, then a project config found
// from the working directory, then the per-user default.
func ResolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if wd, err := os.Getwd(); err == nil {
		if found, err := FindConfig(wd); err == nil {
			return found
		}
	}
	return DefaultConfigPath()
}
