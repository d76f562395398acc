package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/cddiagram/pkg/cache"
	"github.com/matzehuels/cddiagram/pkg/config"
)

// isolate points the config and cache locations at fresh temp directories.
func isolate(t *testing.T) (cacheHome string) {
	t.Helper()
	cacheHome = t.TempDir()
	t.Setenv("XDG_CACHE_HOME", cacheHome)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	return cacheHome
}

func TestCacheClearCommand(t *testing.T) {
	cacheHome := isolate(t)
	dir := filepath.Join(cacheHome, appName)
	if err := os.MkdirAll(filepath.Join(dir, "ab"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "ab", "entry"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs([]string{"cache", "clear"})
	if err := root.Execute(); err != nil {
		t.Fatalf("cache clear error: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("cache dir should survive clear: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("cache dir has %d entries after clear", len(entries))
	}
}

func TestCachePathCommand(t *testing.T) {
	cacheHome := isolate(t)

	var out bytes.Buffer
	root := New(io.Discard, LogInfo).RootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"cache", "path"})
	if err := root.Execute(); err != nil {
		t.Fatalf("cache path error: %v", err)
	}

	want := filepath.Join(cacheHome, appName)
	if got := strings.TrimSpace(out.String()); got != want {
		t.Errorf("cache path = %q, want %q", got, want)
	}
}

func TestCacheLocation(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		c    cache.Cache
		want string
	}{
		{"file", fc, "Directory: " + fc.Dir()},
		{"null", cache.NewNullCache(), "Disabled"},
	}

	for _, tt := range tests {
		if got := cacheLocation(tt.c); got != tt.want {
			t.Errorf("%s: cacheLocation() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestNewCacheDisabled(t *testing.T) {
	isolate(t)
	c, err := newCache(t.Context(), cacheConfigFor(false, ""))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(cache.NullCache); !ok {
		t.Errorf("disabled cache = %T, want cache.NullCache", c)
	}
}

func TestNewCacheFile(t *testing.T) {
	isolate(t)
	c, err := newCache(t.Context(), cacheConfigFor(true, ""))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if _, ok := c.(*cache.FileCache); !ok {
		t.Errorf("enabled cache = %T, want *cache.FileCache", c)
	}
}

func TestNewRunnerFallsBackWithoutRedis(t *testing.T) {
	isolate(t)
	cli := New(io.Discard, LogInfo)
	// Nothing listens on port 1, so the redis ping fails.
	r := cli.newRunner(t.Context(), cacheConfigFor(true, "redis://127.0.0.1:1/0"))
	defer r.Close()
	if _, ok := r.Cache.(cache.NullCache); !ok {
		t.Errorf("runner cache = %T, want cache.NullCache", r.Cache)
	}
}

func cacheConfigFor(enabled bool, url string) config.CacheConfig {
	return config.CacheConfig{Enabled: enabled, URL: url}
}
