// Package httpapi serves the read-mostly reporting API over chi.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/example/strata/internal/core/errs"
	"github.com/example/strata/internal/core/trace"
	"github.com/example/strata/internal/ctxutil"
	"github.com/example/strata/internal/ports/primary"
)

// Header names.
const (
	HeaderRequestID = "X-Request-ID"
	HeaderActor     = "X-Actor"
)

// Services are the primary ports the API exposes.
type Services struct {
	KPIs       primary.KPIService
	KeyResults primary.KeyResultService
	Trace      primary.TraceService
	Workflows  primary.WorkflowService
}

// Server routes HTTP requests to the application services.
type Server struct {
	services    Services
	metrics     http.Handler
	defaultHops int
	logger      *slog.Logger
}

// NewServer creates a Server. metrics may be nil, in which case /metrics is
// not mounted. defaultHops applies when a trace request has no hops query.
func NewServer(services Services, metrics http.Handler, defaultHops int, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{services: services, metrics: metrics, defaultHops: defaultHops, logger: logger}
}

// Router builds the chi router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestContext)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/api", func(api chi.Router) {
		api.Get("/trace/up/{taskID}", s.traceUp)
		api.Get("/trace/down/{kpiID}", s.traceDown)
		api.Get("/trace/objective/{id}", s.traceObjective)
		api.Get("/kpis/{id}/status", s.kpiStatus)
		api.Post("/key-results/{id}/sync", s.syncKeyResult)
		api.Get("/workflows/{id}/progress", s.workflowProgress)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// ============================================================================
// Handlers
// ============================================================================

func (s *Server) traceUp(w http.ResponseWriter, r *http.Request) {
	opts, ok := s.traceOptions(w, r)
	if !ok {
		return
	}
	res, err := s.services.Trace.TraceUp(r.Context(), chi.URLParam(r, "taskID"), opts)
	s.respondTrace(w, r, res, err)
}

func (s *Server) traceDown(w http.ResponseWriter, r *http.Request) {
	opts, ok := s.traceOptions(w, r)
	if !ok {
		return
	}
	res, err := s.services.Trace.TraceDown(r.Context(), chi.URLParam(r, "kpiID"), opts)
	s.respondTrace(w, r, res, err)
}

func (s *Server) traceObjective(w http.ResponseWriter, r *http.Request) {
	opts, ok := s.traceOptions(w, r)
	if !ok {
		return
	}
	res, err := s.services.Trace.TraceObjective(r.Context(), chi.URLParam(r, "id"), opts)
	s.respondTrace(w, r, res, err)
}

func (s *Server) kpiStatus(w http.ResponseWriter, r *http.Request) {
	res, err := s.services.KPIs.GetStatus(r.Context(), chi.URLParam(r, "id"))
	s.respond(w, r, res, err)
}

func (s *Server) syncKeyResult(w http.ResponseWriter, r *http.Request) {
	res, err := s.services.KeyResults.SyncKeyResult(r.Context(), chi.URLParam(r, "id"))
	s.respond(w, r, res, err)
}

func (s *Server) workflowProgress(w http.ResponseWriter, r *http.Request) {
	res, err := s.services.Workflows.GetProgress(r.Context(), chi.URLParam(r, "id"))
	s.respond(w, r, res, err)
}

func (s *Server) traceOptions(w http.ResponseWriter, r *http.Request) (primary.TraceOptions, bool) {
	raw := r.URL.Query().Get("hops")
	if raw == "" {
		return primary.TraceOptions{Hops: s.defaultHops}, true
	}
	hops, err := strconv.Atoi(raw)
	if err != nil || hops < 0 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid hops %q", raw))
		return primary.TraceOptions{}, false
	}
	return primary.TraceOptions{Hops: hops}, true
}

// respondTrace encodes an empty trace with an empty node list.
func (s *Server) respondTrace(w http.ResponseWriter, r *http.Request, res *primary.TraceResult, err error) {
	if err == nil && res != nil && res.Nodes == nil {
		res.Nodes = []trace.Node{}
	}
	s.respond(w, r, res, err)
}

// respond writes res as JSON, or maps err to a status code.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, res any, err error) {
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			s.logger.Error("request failed", append(ctxutil.LogAttrs(r.Context()), "path", r.URL.Path, "error", err)...)
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func statusFor(err error) int {
	switch {
	case errs.IsNotFound(err):
		return http.StatusNotFound
	case errs.IsInvalidState(err), errors.Is(err, errs.ErrNotKPIBased):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ============================================================================
// Middleware
// ============================================================================

// requestContext attaches the request ID and actor to the request context.
func requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)

		ctx := ctxutil.WithRequestID(r.Context(), id)
		if actor := r.Header.Get(HeaderActor); actor != "" {
			ctx = ctxutil.WithActorID(ctx, actor)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			append(ctxutil.LogAttrs(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start))...)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
