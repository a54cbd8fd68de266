package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nao1215/privacyscan/internal/database"
	"github.com/nao1215/privacyscan/internal/model"
	"github.com/nao1215/privacyscan/internal/pipeline"
	"github.com/nao1215/privacyscan/internal/scoring"
)

// Store is what the server reads from and writes to.
// *database.Store implements it.
type Store interface {
	pipeline.Store
	ListScans(ctx context.Context) ([]model.Scan, error)
	GetResult(ctx context.Context, scanID string) (*model.ScoreResult, string, error)
}

// Config configures a Server.
type Config struct {
	// ListenAddr is the address passed to http.Server.
	ListenAddr string

	// CacheTTL bounds how long a score stays cached. Zero keeps entries
	// until the scan is rescored.
	CacheTTL time.Duration

	// Engine scores rescore requests. Nil uses scoring defaults.
	Engine *scoring.Engine

	// Logger receives request and error logs. Nil uses slog.Default().
	Logger *slog.Logger

	// Version is reported by /healthz.
	Version string
}

// Server is the HTTP API surface for privacyscan.
type Server struct {
	cfg    Config
	store  Store
	cache  *reportCache
	router chi.Router
	logger *slog.Logger
}

// New creates a Server over store.
func New(store Store, cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:    cfg,
		store:  store,
		cache:  newReportCache(cfg.CacheTTL),
		router: chi.NewRouter(),
		logger: logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/scans", func(r chi.Router) {
		r.Get("/", s.handleListScans)
		r.Get("/{id}", s.handleGetScan)
		r.Get("/{id}/score", s.handleGetScore)
		r.Post("/{id}/rescore", s.handleRescore)
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug("http_request",
		"method", r.Method,
		"path", r.URL.Path,
	)
	s.router.ServeHTTP(w, r)
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := s.HTTPServer()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// statusFor maps store errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, database.ErrScanNotFound), errors.Is(err, database.ErrResultNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// etag formats a result digest as a strong entity tag.
func etag(digest string) string {
	return `"` + digest + `"`
}

// matchesETag reports whether an If-None-Match header matches tag.
func matchesETag(header, tag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == tag {
			return true
		}
	}
	return false
}

// --- HTTP handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Version: s.cfg.Version})
}

func (s *Server) handleListScans(w http.ResponseWriter, r *http.Request) {
	scans, err := s.store.ListScans(r.Context())
	if err != nil {
		s.logger.Warn("listing scans", "error", err)
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ScanListResponse{Scans: scans, Count: len(scans)})
}

func (s *Server) handleGetScan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	scan, err := s.store.GetScan(r.Context(), id)
	if err != nil {
		if statusFor(err) != http.StatusNotFound {
			s.logger.Warn("getting scan", "scan_id", id, "error", err)
		}
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, scan)
}

func (s *Server) handleGetScore(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rep, cached := s.cache.get(id)
	if !cached {
		var err error
		rep, err = s.loadReport(r.Context(), id)
		if err != nil {
			if statusFor(err) != http.StatusNotFound {
				s.logger.Warn("loading score", "scan_id", id, "error", err)
			}
			writeError(w, statusFor(err), err.Error())
			return
		}
		s.cache.put(id, rep)
	}

	tag := etag(rep.Digest)
	w.Header().Set("ETag", tag)
	if cached {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}

	if inm := r.Header.Get("If-None-Match"); inm != "" && matchesETag(inm, tag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// loadReport reads a scan and its stored result.
func (s *Server) loadReport(ctx context.Context, id string) (*model.ScanReport, error) {
	scan, err := s.store.GetScan(ctx, id)
	if err != nil {
		return nil, err
	}
	result, digest, err := s.store.GetResult(ctx, id)
	if err != nil {
		return nil, err
	}
	return model.NewScanReport(*scan, result, digest), nil
}

func (s *Server) handleRescore(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.cache.invalidate(id)

	job := pipeline.NewJob(id)
	p := pipeline.DefaultPipeline(s.store, s.cfg.Engine, pipeline.WithLogger(s.logger))
	if err := p.Execute(r.Context(), job); err != nil {
		if statusFor(err) != http.StatusNotFound {
			s.logger.Warn("rescoring", "scan_id", id, "error", err)
		}
		writeError(w, statusFor(err), err.Error())
		return
	}

	// Reload so the response carries the stored scan state (status, scored_at).
	rep, err := s.loadReport(r.Context(), id)
	if err != nil {
		rep = job.Report()
	}
	s.cache.put(id, rep)

	s.logger.Info("rescored scan", "scan_id", id, "score", rep.Result.Score)
	w.Header().Set("ETag", etag(rep.Digest))
	writeJSON(w, http.StatusOK, rep)
}
