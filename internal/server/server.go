package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"
)

// DefaultShutdownTimeout bounds graceful shutdown when Config leaves it unset.
const DefaultShutdownTimeout = 10 * time.Second

// Config assembles a runnable backend.
type Config struct {
	Addr            string
	Drafter         Drafter
	Options         Options
	ShutdownTimeout time.Duration
}

// Server owns the HTTP listener for the reference backend.
type Server struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration
}

// New builds a Server; call Run to start listening.
func New(cfg Config) *Server {
	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}
	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           NewRouter(NewHandler(cfg.Drafter), cfg.Options),
			ReadHeaderTimeout: 10 * time.Second,
		},
		shutdownTimeout: timeout,
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run listens on the configured address until ctx is cancelled, then drains
// in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	logger := httpLogger()
	logger.Info("backend listening", "operation", "server_start", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "operation", "server_shutdown", "outcome", "failure", "error", err.Error())
		return err
	}
	logger.Info("backend stopped", "operation", "server_shutdown", "outcome", "success")
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
