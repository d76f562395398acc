package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/cddiagram/pkg/buildinfo"
	"github.com/matzehuels/cddiagram/pkg/errors"
	"github.com/matzehuels/cddiagram/pkg/observability"
	"github.com/matzehuels/cddiagram/pkg/pipeline"
)

// server renders the diagram per request. Each request builds its own
// diagram, so handlers share nothing but the runner.
type server struct {
	runner   *pipeline.Runner
	defaults pipeline.Options
	logger   *log.Logger
}

func newServer(runner *pipeline.Runner, defaults pipeline.Options, logger *log.Logger) *server {
	return &server{runner: runner, defaults: defaults, logger: logger}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/diagram.svg", http.StatusFound)
	})
	r.Get("/healthz", s.handleHealth)
	r.Get("/diagram.{format}", s.handleDiagram)

	return r
}

// observe reports every request to the server hooks and the debug log.
func (s *server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.Server()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, elapsed)
		s.logger.Debug("request",
			"id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", elapsed)
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"build":  buildinfo.Get(),
	})
}

func (s *server) handleDiagram(w http.ResponseWriter, r *http.Request) {
	opts := s.defaults
	opts.Output = ""
	opts.Format = chi.URLParam(r, "format")
	q := r.URL.Query()
	if title := q.Get("title"); title != "" {
		opts.Title = title
	}
	if dir := q.Get("direction"); dir != "" {
		opts.Direction = dir
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		s.writeError(w, err)
		return
	}

	ctx := r.Context()
	d, err := s.runner.Build(ctx, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	data, hit, err := s.runner.RenderWithCacheInfo(ctx, d, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	format := opts.RenderFormat()
	cacheStatus := "MISS"
	if hit {
		cacheStatus = "HIT"
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", d.Filename()+"."+format.Ext()))
	w.Header().Set("X-Cache", cacheStatus)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// statusCode maps an error to the HTTP status reported for it.
func statusCode(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeUnsupported:
		return http.StatusBadRequest
	case errors.ErrCodeEngineUnavailable:
		return http.StatusServiceUnavailable
	case errors.ErrCodeRenderTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *server) writeError(w http.ResponseWriter, err error) {
	status := statusCode(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	body := map[string]string{"error": userMessage(err)}
	if code := errors.GetCode(err); code != "" {
		body["code"] = string(code)
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
