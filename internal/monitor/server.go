// Package monitor serves a read-only debug view of a running session:
// JSON status, stored runs, rendered snapshots and a live frame stream.
package monitor

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/banshee-data/pathviz/internal/db"
	"github.com/banshee-data/pathviz/internal/session"
)

// DefaultCallTimeout bounds how long a request waits for the session loop.
const DefaultCallTimeout = 2 * time.Second

// RunLister reads stored run summaries.
type RunLister interface {
	RecentRuns(ctx context.Context, limit int) ([]db.Run, error)
	GetRun(ctx context.Context, id string) (db.Run, error)
	CountRuns(ctx context.Context) (map[string]int, error)
}

// Config configures a Server. Runs and Hub are optional.
type Config struct {
	Address     string
	Loop        *session.Loop
	Session     *session.Session
	Runs        RunLister
	Hub         *Hub
	CallTimeout time.Duration
}

// Server is the debug HTTP server.
type Server struct {
	address     string
	loop        *session.Loop
	sess        *session.Session
	runs        RunLister
	hub         *Hub
	callTimeout time.Duration
	server      *http.Server
}

// NewServer creates a server with the provided configuration.
func NewServer(cfg Config) *Server {
	s := &Server{
		address:     cfg.Address,
		loop:        cfg.Loop,
		sess:        cfg.Session,
		runs:        cfg.Runs,
		hub:         cfg.Hub,
		callTimeout: cfg.CallTimeout,
	}
	if s.callTimeout <= 0 {
		s.callTimeout = DefaultCallTimeout
	}
	s.server = &http.Server{
		Addr:              s.address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	api.HandleFunc("/runs", s.handleRuns).Methods(http.MethodGet)
	api.HandleFunc("/runs/summary", s.handleRunSummary).Methods(http.MethodGet)
	api.HandleFunc("/runs/{id}", s.handleRun).Methods(http.MethodGet)

	debug := r.PathPrefix("/debug").Subrouter()
	debug.HandleFunc("/cost", s.handleCostChart).Methods(http.MethodGet)
	debug.HandleFunc("/cost.{format:png|svg}", s.handleCostPlot).Methods(http.MethodGet)
	debug.HandleFunc("/view.json", s.handleViewOps).Methods(http.MethodGet)
	debug.HandleFunc("/view.{format:png|svg}", s.handleView).Methods(http.MethodGet)

	if s.hub != nil {
		r.Handle("/ws/frames", s.hub)
	}
	return r
}

// Start serves until ctx is cancelled, then shuts down.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		diagf("listening on %s", s.address)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			opsf("server failed: %v", err)
		}
		return err
	case <-ctx.Done():
	}

	diagf("shutting down")
	if s.hub != nil {
		s.hub.Close()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		opsf("shutdown: %v", err)
		if err := s.server.Close(); err != nil {
			opsf("force close: %v", err)
		}
	}
	return nil
}

// onLoop runs fn on the session loop, giving up after the call timeout.
func (s *Server) onLoop(ctx context.Context, fn func()) error {
	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	return s.loop.Call(ctx, fn)
}
