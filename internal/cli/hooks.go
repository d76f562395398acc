package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cddiagram/pkg/observability"
)

// logHooks reports pipeline, cache and server events at debug level.
// They are registered when --verbose is given.
type logHooks struct {
	logger *log.Logger
}

func registerLogHooks(l *log.Logger) {
	h := logHooks{logger: l}
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
	observability.SetServerHooks(h)
}

func (h logHooks) OnBuild(_ context.Context, title string, nodes, edges, clusters int) {
	h.logger.Debug("build", "title", title, "nodes", nodes, "edges", edges, "clusters", clusters)
}

func (h logHooks) OnRenderStart(_ context.Context, engine, format string) {
	h.logger.Debug("render start", "engine", engine, "format", format)
}

func (h logHooks) OnRenderComplete(_ context.Context, engine, format string, size int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("render failed", "engine", engine, "format", format, "duration", d, "error", err)
		return
	}
	h.logger.Debug("render done", "engine", engine, "format", format, "bytes", size, "duration", d)
}

func (h logHooks) OnWrite(_ context.Context, path string, size int, err error) {
	if err != nil {
		h.logger.Debug("write failed", "path", path, "error", err)
		return
	}
	h.logger.Debug("write done", "path", path, "bytes", size)
}

func (h logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h logHooks) OnRequest(context.Context, string, string) {}

func (h logHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "path", path, "status", status, "duration", d)
}

var (
	_ observability.PipelineHooks = logHooks{}
	_ observability.CacheHooks    = logHooks{}
	_ observability.ServerHooks   = logHooks{}
)
