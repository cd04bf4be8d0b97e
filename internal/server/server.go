// Package server exposes a loaded dependency graph over HTTP.
//
// One [pipeline.Snapshot] is loaded at startup and shared read-only; every
// request runs its own engine call against it. With watching enabled the
// snapshot is replaced atomically when the graph file changes, so in-flight
// requests finish on the snapshot they started with.
//
// Routes:
//
//	GET  /healthz      liveness and snapshot summary
//	GET  /tree         tree view (depth, duplicates, features, no_dev, invert, format)
//	GET  /path         attribution path (name, version, source)
//	GET  /duplicates   duplicate report
//	GET  /graph        normalized graph JSON
//	POST /audit        attribute an advisory report in the request body
//	GET  /metrics      Prometheus metrics, when configured
package server

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/matzehuels/upkeep/pkg/pipeline"
)

// MaxBodyBytes bounds POST /audit request bodies.
const MaxBodyBytes = 10 << 20

// Options configures a Server.
type Options struct {
	Logger *log.Logger

	// RateLimit is the sustained requests per second across all clients.
	// Zero disables limiting.
	RateLimit float64
	Burst     int

	// Metrics serves GET /metrics when set.
	Metrics http.Handler
}

// Server serves queries over the current snapshot.
type Server struct {
	runner  *pipeline.Runner
	logger  *log.Logger
	limiter *rate.Limiter
	metrics http.Handler
	snap    atomic.Pointer[pipeline.Snapshot]
}

// New creates a server for snap.
func New(runner *pipeline.Runner, snap *pipeline.Snapshot, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = runner.Logger
	}
	s := &Server{
		runner:  runner,
		logger:  logger,
		metrics: opts.Metrics,
	}
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = max(1, int(opts.RateLimit))
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	s.snap.Store(snap)
	return s
}

// Snapshot returns the snapshot new requests are served from.
func (s *Server) Snapshot() *pipeline.Snapshot { return s.snap.Load() }

// Swap replaces the current snapshot.
func (s *Server) Swap(snap *pipeline.Snapshot) { s.snap.Store(snap) }

// Reload loads the current snapshot's file again and swaps it in. The old
// snapshot stays in place when loading fails.
func (s *Server) Reload(ctx context.Context) error {
	old := s.Snapshot()
	snap, err := s.runner.Load(ctx, old.Path, nil)
	if err != nil {
		return err
	}
	s.Swap(snap)
	s.logger.Info("reloaded graph", "path", snap.Path, "nodes", snap.Graph.NodeCount())
	return nil
}

// Handler returns the HTTP handler with all routes and middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)
	if s.limiter != nil {
		r.Use(s.rateLimit)
	}

	r.Get("/healthz", s.handleHealth)
	r.Get("/tree", s.handleTree)
	r.Get("/path", s.handlePath)
	r.Get("/duplicates", s.handleDuplicates)
	r.Get("/graph", s.handleGraph)
	r.Post("/audit", s.handleAudit)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, notFound(r.URL.Path))
	})
	return r
}

// newHTTPServer wraps h with the timeouts used by Run.
func newHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
