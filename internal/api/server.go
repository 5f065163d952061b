package api

import (
	"net/http"
	"time"

	"github.com/futig/oportune/internal/api/docs"
	"github.com/futig/oportune/internal/api/middleware"
	sessionapi "github.com/futig/oportune/internal/api/session"
	"github.com/futig/oportune/internal/pkg/response"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// SetupRouter creates and configures the HTTP router
func SetupRouter(sessionHandler *sessionapi.Handler, gatherer prometheus.Gatherer, logger *zap.Logger, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	docs.RegisterRoutes(r, docs.DefaultSpecPath)

	// Runs can take minutes; the timeout covers the slowest synchronous route.
	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.Timeout(requestTimeout))
		sessionapi.RegisterRoutes(r, sessionHandler)
	})

	return r
}
