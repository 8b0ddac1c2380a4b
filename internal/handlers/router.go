// Package handlers exposes the catalog over HTTP.
package handlers

import (
	"net/http"

	"reminer-backend/internal/handlers/middleware"
	"reminer-backend/pkg/api"
	"reminer-backend/pkg/observability"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// RouterConfig holds the cross-cutting router settings.
type RouterConfig struct {
	AllowedOrigins []string
}

// NewRouter wires every route onto a chi mux.
func NewRouter(apps *AppHandler, reviews *ReviewHandler, metrics observability.Recorder, cfg RouterConfig, logger *zap.Logger) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Metrics(metrics))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Amz-Date", "X-Api-Key", "X-Amz-Security-Token", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	router.Get("/docs/openapi", api.OpenAPIHandler())

	router.Route("/apps", func(r chi.Router) {
		r.Post("/", apps.CreateApps)
		r.Get("/", apps.ListApps)
		r.Put("/", apps.UpdateApp)
		r.Delete("/", apps.DeleteApp)
		r.Get("/names", apps.ListAppNames)
	})

	router.Route("/reviews", func(r chi.Router) {
		r.Post("/", reviews.CreateReviews)
		r.Get("/", reviews.ListReviews)
		r.Put("/", reviews.UpdateReview)
		r.Delete("/", reviews.DeleteReview)
		r.Get("/detailed", reviews.DetailedReviews)
		r.Get("/detailed/app", reviews.DetailedAppReviews)
		r.Get("/review/{id}", reviews.GetReview)
		r.Post("/analyze", reviews.AnalyzeReviews)
	})

	return router
}
