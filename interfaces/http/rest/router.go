package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"kgraph/interfaces/http/rest/handlers"
	"kgraph/interfaces/http/rest/middleware"
	"kgraph/pkg/auth"
)

// Router creates and configures the HTTP router
type Router struct {
	graphHandler *handlers.GraphHandler
	queryHandler *handlers.QueryHandler
	metrics      http.Handler
	validator    *auth.JWTValidator
	enableCORS   bool
	logger       *zap.Logger
}

// NewRouter creates a new router instance. validator may be nil, in
// which case the API is served unauthenticated; metrics may be nil to
// disable the /metrics endpoint.
func NewRouter(
	graphHandler *handlers.GraphHandler,
	queryHandler *handlers.QueryHandler,
	metrics http.Handler,
	validator *auth.JWTValidator,
	enableCORS bool,
	logger *zap.Logger,
) *Router {
	return &Router{
		graphHandler: graphHandler,
		queryHandler: queryHandler,
		metrics:      metrics,
		validator:    validator,
		enableCORS:   enableCORS,
		logger:       logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.enableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Operational endpoints
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.metrics != nil {
		router.Handle("/metrics", rt.metrics)
	}

	// API v1 routes
	router.Route("/api/v1", func(r chi.Router) {
		if rt.validator != nil {
			r.Use(middleware.Authenticate(rt.validator, rt.logger))
		}

		r.Route("/graphs", func(r chi.Router) {
			r.Post("/", rt.graphHandler.BuildGraph)
			r.Get("/", rt.graphHandler.ListGraphs)
			r.Get("/{corpusID}", rt.graphHandler.GetGraph)
			r.Delete("/{corpusID}", rt.graphHandler.DeleteGraph)

			// Read-only query operations over a stored snapshot
			r.Get("/{corpusID}/subgraph", rt.queryHandler.Subgraph)
			r.Get("/{corpusID}/search", rt.queryHandler.Search)
			r.Get("/{corpusID}/neighbors", rt.queryHandler.Neighbors)
			r.Get("/{corpusID}/similarity", rt.queryHandler.Similarity)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
