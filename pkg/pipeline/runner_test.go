package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cddiagram/pkg/cache"
	"github.com/matzehuels/cddiagram/pkg/errors"
	"github.com/matzehuels/cddiagram/pkg/render"
)

// fakeEngine returns canned output and records what it was asked to render.
type fakeEngine struct {
	mu      sync.Mutex
	out     []byte
	err     error
	delay   time.Duration
	calls   int
	lastDOT string
}

func (e *fakeEngine) Name() string { return "fake" }

func (e *fakeEngine) Render(ctx context.Context, dot string, format render.Format) ([]byte, error) {
	e.mu.Lock()
	e.calls++
	e.lastDOT = dot
	e.mu.Unlock()

	if e.delay > 0 {
		select {
		case <-time.After(e.delay):
		case <-ctx.Done():
			return nil, errors.Wrap(errors.ErrCodeRenderTimeout, ctx.Err(), "fake timed out")
		}
	}
	if e.err != nil {
		return nil, e.err
	}
	return append([]byte(string(format)+":"), e.out...), nil
}

// memCache is an in-memory cache.Cache.
type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	getErr  error
}

func newMemCache() *memCache { return &memCache{entries: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	data, ok := c.entries[key]
	return data, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = data
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *memCache) Close() error { return nil }

func newTestRunner(c cache.Cache, engine render.Engine) *Runner {
	r := NewRunner(c, nil, log.NewWithOptions(io.Discard, log.Options{}))
	r.NewEngine = func(string) (render.Engine, error) { return engine, nil }
	return r
}

func TestExecute_WritesArtifact(t *testing.T) {
	dir := t.TempDir()
	engine := &fakeEngine{out: []byte("image")}
	r := newTestRunner(nil, engine)

	res, err := r.Execute(context.Background(), Options{Output: dir})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	want := filepath.Join(dir, "cicd_deployment_pipeline_-_github_to_ec2.png")
	if res.Path != want {
		t.Errorf("Path = %q, want %q", res.Path, want)
	}
	data, err := os.ReadFile(res.Path)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if string(data) != "png:image" {
		t.Errorf("output = %q, want %q", data, "png:image")
	}
	if res.Stats.Nodes != 7 || res.Stats.Edges != 6 || res.Stats.Clusters != 2 {
		t.Errorf("Stats = %+v, want 7/6/2", res.Stats.Stats)
	}
	if res.Stats.Bytes != len(data) {
		t.Errorf("Stats.Bytes = %d, want %d", res.Stats.Bytes, len(data))
	}
	if res.CacheHit {
		t.Error("first run should not hit the cache")
	}
	if !strings.HasPrefix(engine.lastDOT, "digraph G {") {
		t.Errorf("engine received %q, want DOT", engine.lastDOT)
	}
}

func TestExecute_EngineFailureLeavesNoFile(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code errors.Code
	}{
		{"unavailable", errors.New(errors.ErrCodeEngineUnavailable, "dot not found"), errors.ErrCodeEngineUnavailable},
		{"failed", errors.New(errors.ErrCodeRenderFailed, "syntax error"), errors.ErrCodeRenderFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			r := newTestRunner(nil, &fakeEngine{err: tt.err})

			_, err := r.Execute(context.Background(), Options{Output: dir})
			if !errors.Is(err, tt.code) {
				t.Fatalf("Execute error = %v, want %s", err, tt.code)
			}
			assertEmptyDir(t, dir)
		})
	}
}

func TestExecute_Timeout(t *testing.T) {
	dir := t.TempDir()
	r := newTestRunner(nil, &fakeEngine{delay: time.Second})

	_, err := r.Execute(context.Background(), Options{Output: dir, Timeout: 20 * time.Millisecond})
	if !errors.Is(err, errors.ErrCodeRenderTimeout) {
		t.Fatalf("Execute error = %v, want %s", err, errors.ErrCodeRenderTimeout)
	}
	assertEmptyDir(t, dir)
}

func TestExecute_MissingDirectory(t *testing.T) {
	out := filepath.Join(t.TempDir(), "missing", "out.png")
	r := newTestRunner(nil, &fakeEngine{out: []byte("image")})

	_, err := r.Execute(context.Background(), Options{Output: out})
	if !errors.Is(err, errors.ErrCodeIO) {
		t.Fatalf("Execute error = %v, want %s", err, errors.ErrCodeIO)
	}
	if !strings.Contains(errors.UserMessage(err), out) {
		t.Errorf("message %q should name the path", errors.UserMessage(err))
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("no output file should exist")
	}
}

func TestExecute_Canceled(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newTestRunner(nil, &fakeEngine{out: []byte("image")})
	_, err := r.Execute(ctx, Options{Output: dir})
	if err != context.Canceled {
		t.Fatalf("Execute error = %v, want context.Canceled", err)
	}
	assertEmptyDir(t, dir)
}

func TestExecute_EnginelessFormats(t *testing.T) {
	tests := []struct {
		format string
		check  func(t *testing.T, data []byte)
	}{
		{"dot", func(t *testing.T, data []byte) {
			if !strings.HasPrefix(string(data), "digraph G {") {
				t.Errorf("dot output = %q", data)
			}
		}},
		{"json", func(t *testing.T, data []byte) {
			var v map[string]any
			if err := json.Unmarshal(data, &v); err != nil {
				t.Errorf("json output invalid: %v", err)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			engine := &fakeEngine{err: errors.New(errors.ErrCodeEngineUnavailable, "should not run")}
			r := newTestRunner(nil, engine)

			res, err := r.Execute(context.Background(), Options{Output: t.TempDir(), Format: tt.format})
			if err != nil {
				t.Fatalf("Execute error: %v", err)
			}
			if engine.calls != 0 {
				t.Errorf("engine called %d times for %s", engine.calls, tt.format)
			}
			if filepath.Ext(res.Path) != "."+tt.format {
				t.Errorf("Path = %q, want .%s extension", res.Path, tt.format)
			}
			tt.check(t, res.Artifact)
		})
	}
}

func TestRender_CacheHit(t *testing.T) {
	ctx := context.Background()
	c := newMemCache()
	engine := &fakeEngine{out: []byte("image")}
	r := newTestRunner(c, engine)

	opts := Options{Format: "svg"}
	d, err := r.Build(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}

	first, hit, err := r.RenderWithCacheInfo(ctx, d, opts)
	if err != nil || hit {
		t.Fatalf("first render: hit %v, err %v", hit, err)
	}
	second, hit, err := r.RenderWithCacheInfo(ctx, d, opts)
	if err != nil || !hit {
		t.Fatalf("second render: hit %v, err %v", hit, err)
	}
	if string(first) != string(second) {
		t.Errorf("cached artifact %q differs from rendered %q", second, first)
	}
	if engine.calls != 1 {
		t.Errorf("engine calls = %d, want 1", engine.calls)
	}

	// A different format is a different entry.
	if _, hit, _ := r.RenderWithCacheInfo(ctx, d, Options{Format: "png"}); hit {
		t.Error("png should not hit the svg entry")
	}
}

func TestRender_CacheErrorIgnored(t *testing.T) {
	ctx := context.Background()
	c := newMemCache()
	c.getErr = cache.Retryable(cache.ErrNetwork)
	r := newTestRunner(c, &fakeEngine{out: []byte("image")})

	d, err := r.Build(ctx, Options{})
	if err != nil {
		t.Fatal(err)
	}
	data, err := r.Render(ctx, d, Options{})
	if err != nil {
		t.Fatalf("cache failure should not fail the render: %v", err)
	}
	if string(data) != "png:image" {
		t.Errorf("Render = %q", data)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	r := newTestRunner(nil, &fakeEngine{})
	ctx := context.Background()

	d1, err := r.Build(ctx, Options{})
	if err != nil {
		t.Fatal(err)
	}
	d2, err := r.Build(ctx, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if d1.DOT() != d2.DOT() {
		t.Error("two builds should produce identical descriptions")
	}
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("output dir should be empty, found %v", names)
	}
}
