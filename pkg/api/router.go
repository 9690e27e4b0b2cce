package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"architecture-risk-engine/pkg/config"
	"architecture-risk-engine/pkg/simulation"
)

// NewRouter builds the full HTTP surface. swaggerPath points at the
// checked-in OpenAPI document.
func NewRouter(cfg *config.Config, svc *simulation.Service, swaggerPath string) http.Handler {
	apiHandler := NewHandler(cfg, svc)
	diagramsHandler := &DiagramsHandler{Service: svc}

	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(CorrelationMiddleware)
	if cfg.Metrics.Enabled {
		r.Use(MetricsMiddleware)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Correlation-Id"},
		ExposedHeaders: []string{"X-Correlation-Id"},
		MaxAge:         300,
	}))

	// Swagger UI
	r.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, swaggerPath)
	})
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))

	r.Get("/health", apiHandler.HealthHandler)
	if cfg.Metrics.Enabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Group(func(r chi.Router) {
		if cfg.RateLimit.RequestsPerSecond > 0 {
			r.Use(NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst).Middleware)
		}

		r.Post("/api/analyze", apiHandler.AnalyzeHandler)
		r.Post("/api/analyze/cascade", apiHandler.CascadeHandler)
		r.Post("/api/analyze/stress", apiHandler.StressHandler)
		r.Post("/api/analyze/weakpoint", apiHandler.WeakPointHandler)
		r.Post("/api/traffic", apiHandler.TrafficHandler)
		r.Post("/api/traffic/timeline", apiHandler.TimelineHandler)

		diagramsHandler.RegisterRoutes(r)
	})

	return r
}
