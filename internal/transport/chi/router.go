package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docinsight/internal/metrics"
)

// RouterConfig holds middleware settings.
type RouterConfig struct {
	APIKeys []string
	// Tokens verifies user access tokens on /api.
	Tokens TokenVerifier
	// RequireLogin rejects anonymous /api requests even without API keys.
	RequireLogin bool
	Logger       *zap.Logger
}

// NewRouter mounts the server's handlers. Application routes live under /api;
// /, /health, /metrics and /auth stay at the root and skip auth.
func NewRouter(s *Server, cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(jsonRecoverer(log))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"X-Request-ID", "X-Embedding-Tokens", "X-LLM-Tokens"},
		MaxAge:         300,
	}))
	r.Use(metrics.Middleware())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/", s.Root)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	if s.svc.Auth != nil {
		r.Route("/auth", func(a chi.Router) {
			a.Post("/register", s.Register)
			a.Post("/token", s.Token)
		})
	}

	r.Route("/api", func(api chi.Router) {
		api.Use(BearerAuthMiddleware(AuthConfig{
			APIKeys:  cfg.APIKeys,
			Tokens:   cfg.Tokens,
			Required: cfg.RequireLogin,
		}))

		api.Post("/upload", s.Upload)
		api.Get("/documents", s.Documents)
		api.Get("/sources", s.Sources)
		api.Get("/query", s.Query)
		api.Get("/insights", s.Insights)
		api.Post("/compare", s.Compare)

		api.Route("/evaluate", func(ev chi.Router) {
			ev.Post("/generate", s.GenerateTestSet)
			ev.Post("/run_single", s.RunSingle)
			ev.Post("/run", s.RunBatch)
		})
	})

	return r
}
