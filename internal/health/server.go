package health

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

// Pinger is satisfied by internal/store.DB: readiness is reported
// unavailable until the document store answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server serves liveness/readiness probes and the Prometheus scrape
// endpoint alongside the crawler.
type Server struct {
	pinger Pinger
	port   int
	ready  atomic.Bool
	server *http.Server
}

// NewServer returns a health server bound to port, reporting
// readiness once SetReady(true) is called and pinger answers.
func NewServer(pinger Pinger, port int) *Server {
	return &Server{pinger: pinger, port: port}
}

// SetReady flips the readiness flag the /readyz handler reports.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
}

// Start blocks serving HTTP until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/readyz", s.handleReadyz)
	mux.Handle("/metrics", promhttp.Handler())

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           mux,
		ReadHeaderTimeout: shutdownTimeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		_ = s.server.Shutdown(shutdownCtx)
	}()

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("start health server: %w", err)
	}

	return nil
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if !s.ready.Load() {
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), shutdownTimeout)
	defer cancel()

	if err := s.pinger.Ping(ctx); err != nil {
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
