package xdg_test

import (
	"path/filepath"
	"testing"

	"github.com/programme-lv/pathtester/internal/xdg"
	"github.com/stretchr/testify/require"
)

func TestCacheDirDefaultsUnderHome(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv("HOME", "/home/me")

	require.Equal(t, filepath.Join("/home/me", ".cache", "pathtester"), xdg.CacheDir("pathtester"))
}

func TestCacheDirFollowsEnvironment(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/var/cache/me")
	t.Setenv("HOME", "/home/me")

	require.Equal(t, "/var/cache/me", xdg.CacheHome())
	require.Equal(t, filepath.Join("/var/cache/me", "pathtester"), xdg.CacheDir("pathtester"))
}

func TestRelativeCacheHomeIsIgnored(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "cache")
	t.Setenv("HOME", "/home/me")

	require.Equal(t, filepath.Join("/home/me", ".cache"), xdg.CacheHome())
}
