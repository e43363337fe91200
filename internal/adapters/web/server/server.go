package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/lcalzada-xor/where/internal/adapters/web/handlers"
	"github.com/lcalzada-xor/where/internal/adapters/web/middleware"
	"github.com/lcalzada-xor/where/internal/adapters/web/websocket"
	"github.com/lcalzada-xor/where/internal/core/ports"
	"github.com/lcalzada-xor/where/internal/core/services/actions"
	"github.com/lcalzada-xor/where/internal/core/services/export"
	"github.com/lcalzada-xor/where/internal/core/services/filter"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Calls allowed per client per minute.
const callsPerMinute = 5

// Server handles HTTP and WebSocket connections.
type Server struct {
	Addr          string
	WSManager     *websocket.WSManager
	StateHandler  *handlers.StateHandler
	ActionHandler *handlers.ActionHandler
	ExportHandler *handlers.ExportHandler

	callLimiter *middleware.RateLimiter
	srv         *http.Server
}

// NewServer creates a new web server.
func NewServer(addr string, reconciler ports.Reconciler, ws *websocket.WSManager, actionSvc *actions.Service, exportSvc *export.Service) *Server {
	return &Server{
		Addr:          addr,
		WSManager:     ws,
		StateHandler:  handlers.NewStateHandler(reconciler, filter.NewSelector(reconciler)),
		ActionHandler: handlers.NewActionHandler(actionSvc),
		ExportHandler: handlers.NewExportHandler(exportSvc),
		callLimiter:   middleware.NewRateLimiter(callsPerMinute, time.Minute),
	}
}

// Handler returns the instrumented route tree.
func (s *Server) Handler() http.Handler {
	// "where-server" is the name of the operation (span)
	return otelhttp.NewHandler(SetupRoutes(s), "where-server")
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		slog.Info("Web server shutting down")
		s.callLimiter.Stop()
		s.WSManager.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Web server shutdown error", "error", err)
		}
	}()

	slog.Info("Web server listening", "addr", s.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
