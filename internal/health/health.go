// Package health serves the liveness endpoint.
package health

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/m3rciful/typekeeper/core/logger"
)

const component = "http"

// Pinger is anything that can report whether its backend answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Router returns GET /healthz: 200 when db answers a ping within a second, 503 otherwise.
func Router(db Pinger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), time.Second)
		defer cancel()
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err := db.Ping(ctx); err != nil {
			logger.Warn(ctx, component, "healthz", slog.String("status", "fail"), logger.Err(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("db unavailable\n"))
			return
		}
		_, _ = w.Write([]byte("ok\n"))
	})
	return r
}

// Server runs Router on addr until Shutdown.
type Server struct {
	srv *http.Server
}

// NewServer prepares the listener without starting it.
func NewServer(addr string, db Pinger) *Server {
	return &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           Router(db),
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

// Start listens in the background; a listen failure is logged.
func (s *Server) Start(ctx context.Context) {
	go func() {
		logger.Info(ctx, component, "listen", slog.String("status", "ok"), slog.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, component, "listen", slog.String("status", "fail"), logger.Err(err))
		}
	}()
}

// Shutdown stops the listener, waiting for in-flight requests until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
