package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes the registry over HTTP when the metrics setting is
// on. Start and Stop may be called repeatedly as the setting flips.
type Server struct {
	log *slog.Logger

	mu   sync.Mutex
	srv  *http.Server
	reg  *prometheus.Registry
	once sync.Once
}

func NewServer(log *slog.Logger) *Server {
	return &Server{log: log, reg: prometheus.NewRegistry()}
}

// Start begins serving /metrics on addr. Calling Start while already
// serving restarts on the new address.
func (s *Server) Start(addr string) {
	s.once.Do(func() { Register(s.reg) })

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv != nil {
		s.shutdownLocked()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))
	s.srv = &http.Server{Addr: addr, Handler: mux}

	srv := s.srv
	go func() {
		s.log.Info("metrics listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Warn("metrics server", "error", err)
		}
	}()
}

// Stop shuts the listener down. No-op when not serving.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shutdownLocked()
}

func (s *Server) shutdownLocked() {
	if s.srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		s.log.Warn("metrics shutdown", "error", err)
	}
	s.srv = nil
}
