// Package server exposes the operational HTTP endpoints: health checks and
// the manual reminder trigger.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/almahdi/dentalbot/internal/database"
	"github.com/almahdi/dentalbot/internal/reminder"
)

// Server is the ops HTTP server.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates the ops HTTP server listening on addr.
func New(addr string, store database.Store, reminders *reminder.Dispatcher, logger *slog.Logger) *Server {
	log := logger.With("component", "http_server")

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		status := "ok"
		code := http.StatusOK
		if err := store.Ping(req.Context()); err != nil {
			log.ErrorContext(req.Context(), "Health check database ping failed", "error", err)
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, map[string]string{"status": status})
	})

	r.Post("/reminders/run", func(w http.ResponseWriter, req *http.Request) {
		sent, err := reminders.Run(req.Context())
		if err != nil {
			log.ErrorContext(req.Context(), "Manual reminder run failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "reminder run failed"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"sent": sent})
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: log,
	}
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("HTTP server shutdown failed", "error", err)
			return err
		}
		s.logger.Info("HTTP server stopped gracefully.")
		return nil
	case err := <-errCh:
		return err
	}
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
