package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/edvin/billing/internal/api/handler"
	mw "github.com/edvin/billing/internal/api/middleware"
	"github.com/edvin/billing/internal/config"
	"github.com/edvin/billing/internal/core"
)

type Server struct {
	router   chi.Router
	logger   zerolog.Logger
	services *core.Services
	pool     *pgxpool.Pool
	cfg      *config.Config
}

func NewServer(logger zerolog.Logger, pool *pgxpool.Pool, gw core.Gateway, cfg *config.Config) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		logger:   logger,
		services: core.NewServices(pool, gw, logger),
		pool:     pool,
		cfg:      cfg,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics)
}

func (s *Server) setupRoutes() {
	// Prometheus metrics endpoint
	s.router.Handle("/metrics", promhttp.Handler())

	// Health check endpoints
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	// Gateway callbacks. The signature check runs before any handler work.
	webhook := handler.NewWebhook(s.services.Webhook)
	s.router.Route("/webhooks", func(r chi.Router) {
		r.Use(mw.WebhookSignature(s.cfg.IyzicoSecretKey))
		r.Post("/iyzico", webhook.Receive)
	})

	s.router.Route("/api/v1", func(r chi.Router) {
		subscription := handler.NewSubscription(s.services.Subscription, handler.SubscriptionDefaults{
			TrialDays: s.cfg.TrialDays,
			Currency:  s.cfg.Currency,
		})
		r.Get("/owners/{ownerID}/subscriptions", subscription.List)
		r.Post("/owners/{ownerID}/subscriptions", subscription.Create)
		r.Get("/owners/{ownerID}/subscriptions/{name}", subscription.Get)
		r.Post("/owners/{ownerID}/subscriptions/{name}/cancel", subscription.Cancel)
		r.Post("/owners/{ownerID}/subscriptions/{name}/resume", subscription.Resume)
		r.Post("/owners/{ownerID}/subscriptions/{name}/retry", subscription.Retry)
		r.Post("/owners/{ownerID}/subscriptions/{name}/activate", subscription.Activate)
		r.Post("/owners/{ownerID}/subscriptions/{name}/upgrade", subscription.Upgrade)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if err := s.pool.Ping(ctx); err != nil {
		checks["db"] = err.Error()
		healthy = false
	} else {
		checks["db"] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(checks)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
