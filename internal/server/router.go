package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tildaslashalef/codecritic/internal/config"
	"github.com/tildaslashalef/codecritic/internal/metrics"
	"github.com/tildaslashalef/codecritic/internal/review"
	"github.com/tildaslashalef/codecritic/internal/server/handler"
)

// NewRouter creates and configures a new HTTP router with middleware and API routes.
func NewRouter(cfg config.HTTPConfig, service review.ReviewService) *chi.Mux {
	r := chi.NewRouter()

	// Configure middleware stack
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(requestLog)
	r.Use(middleware.Recoverer)
	if cfg.MaxBodyBytes > 0 {
		r.Use(middleware.RequestSize(cfg.MaxBodyBytes))
	}
	if cfg.WriteTimeout > 2*time.Second {
		// Leave room to write the error response before the server cuts the connection
		r.Use(middleware.Timeout(cfg.WriteTimeout - time.Second))
	}

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// API routes
	r.Route("/api/reviews", func(r chi.Router) {
		reviews := handler.NewReviewHandler(service)
		r.Post("/", reviews.Create)
		r.Get("/", reviews.List)
		r.Get("/{id}", reviews.Get)
		r.Delete("/{id}", reviews.Delete)
	})

	return r
}
