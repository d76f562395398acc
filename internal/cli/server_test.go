package cli

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cddiagram/pkg/cache"
	"github.com/matzehuels/cddiagram/pkg/errors"
	"github.com/matzehuels/cddiagram/pkg/pipeline"
	"github.com/matzehuels/cddiagram/pkg/render"
)

// stubEngine renders every format as "<format>:stub" unless err is set.
type stubEngine struct {
	err   error
	delay time.Duration
}

func (e stubEngine) Name() string { return "stub" }

func (e stubEngine) Render(ctx context.Context, dot string, format render.Format) ([]byte, error) {
	if e.delay > 0 {
		select {
		case <-time.After(e.delay):
		case <-ctx.Done():
			return nil, errors.Wrap(errors.ErrCodeRenderTimeout, ctx.Err(), "stub timed out")
		}
	}
	if e.err != nil {
		return nil, e.err
	}
	return []byte(string(format) + ":stub"), nil
}

func newTestServer(t *testing.T, c cache.Cache, engine render.Engine, defaults pipeline.Options) *httptest.Server {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(c, nil, logger)
	runner.NewEngine = func(string) (render.Engine, error) { return engine, nil }

	ts := httptest.NewServer(newServer(runner, defaults, logger).routes())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, string(body)
}

func TestServerHealth(t *testing.T) {
	ts := newTestServer(t, nil, stubEngine{}, pipeline.Options{})

	resp, body := get(t, ts.URL+"/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var v struct {
		Status string         `json:"status"`
		Build  map[string]any `json:"build"`
	}
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		t.Fatalf("invalid JSON %q: %v", body, err)
	}
	if v.Status != "ok" || v.Build["version"] == nil {
		t.Errorf("health = %+v", v)
	}
}

func TestServerDiagram(t *testing.T) {
	ts := newTestServer(t, nil, stubEngine{}, pipeline.Options{})

	tests := []struct {
		path        string
		contentType string
		bodyPrefix  string
	}{
		{"/diagram.svg", "image/svg+xml", "svg:stub"},
		{"/diagram.png", "image/png", "png:stub"},
		{"/diagram.dot", "text/vnd.graphviz", "digraph G {"},
		{"/diagram.json", "application/json", "{"},
		{"/diagram.dot?direction=TB", "text/vnd.graphviz", "digraph G {"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, body := get(t, ts.URL+tt.path)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d, body %q", resp.StatusCode, body)
			}
			if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, tt.contentType) {
				t.Errorf("Content-Type = %q, want %q", ct, tt.contentType)
			}
			if !strings.HasPrefix(body, tt.bodyPrefix) {
				t.Errorf("body = %q, want prefix %q", body, tt.bodyPrefix)
			}
		})
	}
}

func TestServerDirectionParam(t *testing.T) {
	ts := newTestServer(t, nil, stubEngine{}, pipeline.Options{})

	_, body := get(t, ts.URL+"/diagram.dot?direction=tb")
	if !strings.Contains(body, "rankdir=TB") {
		t.Errorf("direction=tb should produce rankdir=TB:\n%s", body)
	}
}

func TestServerErrors(t *testing.T) {
	tests := []struct {
		name   string
		engine render.Engine
		opts   pipeline.Options
		path   string
		status int
		code   errors.Code
	}{
		{"unknown format", stubEngine{}, pipeline.Options{}, "/diagram.gif", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"bad direction", stubEngine{}, pipeline.Options{}, "/diagram.svg?direction=up", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"engine unavailable", stubEngine{err: errors.New(errors.ErrCodeEngineUnavailable, "dot not found")}, pipeline.Options{}, "/diagram.svg", http.StatusServiceUnavailable, errors.ErrCodeEngineUnavailable},
		{"timeout", stubEngine{delay: time.Second}, pipeline.Options{Timeout: 20 * time.Millisecond}, "/diagram.svg", http.StatusGatewayTimeout, errors.ErrCodeRenderTimeout},
		{"render failed", stubEngine{err: errors.New(errors.ErrCodeRenderFailed, "syntax error")}, pipeline.Options{}, "/diagram.png", http.StatusInternalServerError, errors.ErrCodeRenderFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, nil, tt.engine, tt.opts)

			resp, body := get(t, ts.URL+tt.path)
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d (body %q)", resp.StatusCode, tt.status, body)
			}
			var v map[string]string
			if err := json.Unmarshal([]byte(body), &v); err != nil {
				t.Fatalf("error body %q is not JSON: %v", body, err)
			}
			if v["code"] != string(tt.code) {
				t.Errorf("code = %q, want %q", v["code"], tt.code)
			}
			if v["error"] == "" {
				t.Error("error message is empty")
			}
		})
	}
}

func TestServerCacheHeader(t *testing.T) {
	dir := t.TempDir()
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	ts := newTestServer(t, fc, stubEngine{}, pipeline.Options{})

	first, _ := get(t, ts.URL+"/diagram.svg")
	second, _ := get(t, ts.URL+"/diagram.svg")
	if got := first.Header.Get("X-Cache"); got != "MISS" {
		t.Errorf("first X-Cache = %q, want MISS", got)
	}
	if got := second.Header.Get("X-Cache"); got != "HIT" {
		t.Errorf("second X-Cache = %q, want HIT", got)
	}
}

func TestServerRootRedirects(t *testing.T) {
	ts := newTestServer(t, nil, stubEngine{}, pipeline.Options{})

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, err := client.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/diagram.svg" {
		t.Errorf("GET / = %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.New(errors.ErrCodeInvalidInput, "x"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeUnsupported, "x"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeEngineUnavailable, "x"), http.StatusServiceUnavailable},
		{errors.New(errors.ErrCodeRenderTimeout, "x"), http.StatusGatewayTimeout},
		{errors.New(errors.ErrCodeIO, "x"), http.StatusInternalServerError},
		{io.EOF, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := statusCode(tt.err); got != tt.want {
			t.Errorf("statusCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
