// Package xdg resolves per-user directories following the XDG base directory layout.
package xdg

import (
	"os"
	"path/filepath"
)

// CacheHome is $XDG_CACHE_HOME, or ~/.cache when it is unset or not absolute.
func CacheHome() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); filepath.IsAbs(dir) {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), ".cache")
	}
	return filepath.Join(home, ".cache")
}

// CacheDir is the cache directory of app under CacheHome.
func CacheDir(app string) string {
	return filepath.Join(CacheHome(), app)
}
