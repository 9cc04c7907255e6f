// Package handlers exposes the lifecycle, termination and audit operations
// over HTTP, translating between JSON payloads and domain models.
package handlers

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/novapark/officelease/internal/lease/auth"
	"go.uber.org/zap"
)

// NewRouter assembles the HTTP surface. Every mutating and audit route is
// gated on the admin role; authorization itself stays in the auth package.
func NewRouter(h *GatewayHandler, jwtSecret string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(auth.Middleware(jwtSecret))

	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(auth.RoleAdmin))

			r.Post("/restore/campuses/{id}", h.RestoreCampus)
			r.Post("/restore/blocks/{id}", h.RestoreBlock)
			r.Post("/restore/units/{id}", h.RestoreUnit)
			r.Post("/restore/companies/{id}", h.RestoreCompany)
			r.Post("/restore/companies/{id}/lease", h.RestoreLease)

			r.Get("/deleted", h.ListDeleted)
			r.Delete("/entities/{type}/{id}", h.SoftDeleteEntity)
			r.Delete("/companies/{id}/termination", h.TerminateCompany)
			r.Get("/audit", h.ListAudit)
		})
	})
	return r
}

// Server wraps the HTTP listener with graceful shutdown.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

func NewServer(port int, handler http.Handler, logger *zap.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: handler,
		},
		logger: logger,
	}
}

// Start begins serving in the background, returning immediately once the
// listener is bound.
func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("HTTP listen error: %w", err)
	}

	s.logger.Info("Starting HTTP server", zap.String("endpoint", s.httpServer.Addr))
	go func() {
		if err := s.httpServer.Serve(lis); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP serve error", zap.Error(err))
		}
	}()
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() {
	s.logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	s.logger.Info("Server stopped")
}
