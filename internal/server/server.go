// Package server owns the HTTP listener lifecycle: one Run, one graceful
// Shutdown.
package server

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// Server wraps an *http.Server configured for this service.
type Server struct {
	httpServer *http.Server
}

// Run blocks serving HTTP on the given port ("8080" and ":8080" both work).
// The write timeout must outlive a slow feed poll behind /api.
func (s *Server) Run(port string, handler http.Handler) error {
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	s.httpServer = &http.Server{
		Addr:              port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
