package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"graphcore/infrastructure/di"
	"graphcore/interfaces/http/rest/handlers"
	"graphcore/interfaces/http/rest/middleware"
)

// Router creates and configures the HTTP router
type Router struct {
	container *di.Container
}

// NewRouter creates a new router instance
func NewRouter(container *di.Container) *Router {
	return &Router{container: container}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	c := rt.container

	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(c.ErrorHandler.Middleware)
	router.Use(middleware.Logger(c.Logger))
	if c.Metrics != nil {
		router.Use(middleware.Metrics(c.Metrics))
	}

	if c.Config.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	if c.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(
			c.Metrics.GetRegistry(),
			promhttp.HandlerOpts{},
		))
	}

	graphHandler := handlers.NewGraphHandler(
		c.Store, c.Processor, c.LinkManager, c.Metrics, c.ErrorHandler, c.Logger,
		c.Config.SimilarityThreshold,
	)
	linkHandler := handlers.NewLinkHandler(c.Store, c.LinkManager, c.Metrics, c.ErrorHandler, c.Logger)
	layoutHandler := handlers.NewLayoutHandler(
		c.Store, c.LinkManager, c.LayoutEngine, c.Metrics, c.ErrorHandler, c.Logger,
		c.Config.LayoutDefaults(),
	)
	clusterHandler := handlers.NewClusterHandler(
		c.Store, c.LinkManager, c.ClusteringEngine, c.Metrics, c.ErrorHandler, c.Logger,
		c.Config.ClusteringDefaults(),
	)

	router.Route("/api/v1", func(r chi.Router) {
		// Graph endpoints
		r.Route("/graph", func(r chi.Router) {
			r.Get("/", graphHandler.GetGraph)
			r.Post("/process", graphHandler.ProcessData)
			r.Post("/filter", graphHandler.FilterGraph)
			r.Post("/similarity", graphHandler.DetectSimilarity)

			r.Route("/nodes", func(r chi.Router) {
				r.Post("/", graphHandler.AddNode)
				r.Delete("/{nodeID}", graphHandler.RemoveNode)
				r.Get("/{nodeID}/links", linkHandler.GetNodeLinks)
				r.Get("/{nodeID}/suggestions", linkHandler.GetSuggestions)
				r.Get("/{nodeID}/neighborhood", linkHandler.GetNeighborhood)
			})
		})

		// Link endpoints
		r.Route("/links", func(r chi.Router) {
			r.Get("/", linkHandler.ListLinks)
			r.Post("/", linkHandler.CreateLink)
			r.Get("/analysis", linkHandler.AnalyzeNetwork)
			r.Get("/path", linkHandler.FindPath)
			r.Get("/{linkID}", linkHandler.GetLink)
			r.Put("/{linkID}", linkHandler.UpdateLink)
			r.Delete("/{linkID}", linkHandler.DeleteLink)
		})

		// Layout endpoints
		r.Route("/layout", func(r chi.Router) {
			r.Post("/apply", layoutHandler.ApplyLayout)
			r.Get("/suggest", layoutHandler.SuggestLayout)
			r.Get("/metrics", layoutHandler.LayoutMetrics)
		})

		// Clustering endpoint
		r.Post("/clusters", clusterHandler.PerformClustering)
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
