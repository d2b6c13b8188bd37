package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jw6ventures/callhistory/internal/calls"
	"github.com/jw6ventures/callhistory/internal/config"
	"github.com/jw6ventures/callhistory/internal/http/csrf"
	"github.com/jw6ventures/callhistory/internal/http/ratelimit"
	"github.com/jw6ventures/callhistory/internal/logging"
	"github.com/jw6ventures/callhistory/internal/metrics"
	"github.com/jw6ventures/callhistory/internal/session"
	"github.com/jw6ventures/callhistory/internal/ui"
)

// NewRouter wires all HTTP routes. The returned func stops the rate
// limiter's background sweeper and must be called on shutdown.
func NewRouter(cfg *config.Config, source calls.Source, filters session.FilterStore, logger *zap.Logger) (http.Handler, func()) {
	r := chi.NewRouter()

	// UI pages: 10 requests per second, burst of 20
	uiRateLimiter := ratelimit.New(rate.Limit(10), 20, 5*time.Minute, cfg.TrustedProxies)

	r.Use(middleware.RequestID)
	r.Use(logging.Middleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware())

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := source.HealthCheck(ctx); err != nil {
			logging.FromContext(r.Context()).Warn("readiness check failed", zap.Error(err))
			http.Error(w, "unready", http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if cfg.PrometheusEnabled {
		r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			metrics.Handler().ServeHTTP(w, r)
		})
	}

	uiHandler := ui.NewHandler(cfg, source, filters)

	r.Group(func(r chi.Router) {
		r.Use(uiRateLimiter.Middleware())
		r.Use(csrf.Middleware(cfg.SecureCookies()))

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/calls", http.StatusFound)
		})
		r.Get("/calls", uiHandler.ListCalls)
		r.Post("/calls/filters", uiHandler.UpdateFilters)
		r.Get("/calls/{id}", uiHandler.ViewCall)
	})

	r.NotFound(uiHandler.NotFound)
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	})

	return r, uiRateLimiter.Close
}
