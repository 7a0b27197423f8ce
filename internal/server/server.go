// Package server exposes the bot's HTTP surface: the payment webhook,
// a health probe, and Prometheus metrics.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/astrelia/tarotbot/pkg/billing"
)

// Config holds HTTP server settings.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// ReadTimeout and WriteTimeout bound request handling. Defaults: 10s/30s.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server is the HTTP side of the bot.
type Server struct {
	srv    *http.Server
	logger zerolog.Logger
}

// New builds the router and the underlying http.Server. The payments
// provider may be nil, in which case no webhook route is mounted.
func New(cfg Config, payments billing.Provider, registry *prometheus.Registry, logger zerolog.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	if registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	if payments != nil {
		r.Method(http.MethodPost, "/webhook/"+payments.Name(), payments.WebhookHandler())
	}

	return &Server{
		srv: &http.Server{
			Addr:         cfg.Addr,
			Handler:      r,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		logger: logger,
	}
}

// Start listens until the server is shut down. It returns nil on a clean
// shutdown.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.srv.Addr).Msg("http server listening")
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests within the context's deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
