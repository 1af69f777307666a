// Package api wires the preview endpoints into an HTTP server.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/avdrav1/vibehuntr-preview/internal/api/handlers"
	apimw "github.com/avdrav1/vibehuntr-preview/internal/api/middleware"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// Options configures the API server.
type Options struct {
	Port           int
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
}

type Server struct {
	port   int
	router chi.Router
	logger *zerolog.Logger
}

func NewServer(opts Options, service handlers.PreviewService, logger *zerolog.Logger) *Server {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(apimw.RequestLog(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	limiter := apimw.NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst)
	previewHandler := handlers.NewPreviewHandler(service, logger)

	r.With(limiter.Middleware).Post("/api/link-preview", previewHandler.HandlePreview)

	return &Server{
		port:   opts.Port,
		router: r,
		logger: logger,
	}
}

// Router exposes the configured routes, mostly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)

		defer cancel()

		//nolint:errcheck,contextcheck // shutdown is best-effort, non-inherited context intentional
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info().Int("port", s.port).Msg("API server starting")

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}
