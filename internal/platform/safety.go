package platform

import (
	"os"
	"path/filepath"
	"strings"
)

// IsDevRun detects binaries built by `go run` or `go test`.
func IsDevRun() bool {
	exe, err := os.Executable()
	if err != nil {
		return false
	}
	// go run builds into the temp dir.
	if strings.HasPrefix(strings.ToLower(exe), strings.ToLower(os.TempDir())) {
		return true
	}
	return strings.HasSuffix(exe, ".test") || strings.HasSuffix(exe, ".test.exe")
}

// DefaultStateDir is <user config dir>/cleverpad/state, or ./.cleverpad when
// the platform reports no config directory.
func DefaultStateDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".cleverpad"
	}
	return filepath.Join(dir, "cleverpad", "state")
}

// ResolveStateDir picks the directory actually used for local state. With
// forceTemp, paths outside the system temp dir are re-rooted under
// <tmp>/cleverpad-dev/<base name>.
func ResolveStateDir(userPath string, forceTemp bool) string {
	if userPath == "" {
		userPath = DefaultStateDir()
	}
	if !forceTemp {
		return userPath
	}

	clean := filepath.Clean(userPath)
	if rel, err := filepath.Rel(os.TempDir(), clean); err == nil && !strings.HasPrefix(rel, "..") {
		return clean
	}

	name := filepath.Base(clean)
	if name == "." || name == string(os.PathSeparator) {
		name = "default"
	}
	return filepath.Join(os.TempDir(), "cleverpad-dev", name)
}
