// Package server exposes the weather hotline's Twilio webhook API over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/calloway/weatherline/config"
	"github.com/calloway/weatherline/internal/util"
)

// Server runs the webhook API with lifecycle management around a net/http
// server.
type Server struct {
	cfg    config.ServerOptions
	router *Router
	logger util.Logger

	mu   sync.Mutex
	addr net.Addr
}

// New creates a Server for the given router.
func New(cfg config.ServerOptions, router *Router) *Server {
	return &Server{
		cfg:    cfg,
		router: router,
		logger: util.GetLogger("server"),
	}
}

// Serve listens on the configured address and serves until ctx is
// cancelled, then drains in-flight requests within the shutdown timeout.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Handler:      s.router.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		ErrorLog:     util.NewLogLogger("HttpServer", util.ErrorLevel),
	}

	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr(), err)
	}
	s.mu.Lock()
	s.addr = ln.Addr()
	s.mu.Unlock()

	serverErr := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", ln.Addr().String()).Msg("Hotline server listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		s.logger.Info().Msg("Shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	s.logger.Info().Msg("Server stopped cleanly")
	return nil
}

// Addr returns the bound listen address, or nil before Serve binds one.
// Useful when the configured port is 0.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}
