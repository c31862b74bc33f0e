package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"tagboard/internal/handlers"
	"tagboard/internal/metrics"
	"tagboard/internal/service"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	SearchService service.SearchService
	// Metrics may be nil; MetricsHandler is mounted at /metrics when set.
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
	// AdminToken protects /api/admin when non-empty.
	AdminToken string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	// Add chi middleware
	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(Metrics(deps.Metrics))

	// Add CORS middleware
	r.Use(CORS)

	svc := deps.SearchService

	// Register API routes. Handlers check the method themselves so a wrong
	// method gets the JSON error body.
	r.Route("/api", func(r chi.Router) {
		r.Handle("/posts/search", handlers.NewPostSearchHandler(svc))
		r.Handle("/notes/search", handlers.NewNoteSearchHandler(svc))
		r.Handle("/tags/tree", handlers.NewTagTreeHandler(svc))
		r.Handle("/tags/autocomplete", handlers.NewAutocompleteHandler(svc))
		r.Handle("/tags/categories", handlers.NewCategoryHandler(svc))
		r.Handle("/meta-tags", handlers.NewMetaTagHandler(svc))
		r.Handle("/health", handlers.NewHealthHandler(svc))

		r.Group(func(r chi.Router) {
			r.Use(AdminAuth(deps.AdminToken))
			r.Handle("/admin/invalidate", handlers.NewInvalidateHandler(svc))
			r.Handle("/admin/recompute", handlers.NewRecomputeHandler(svc))
		})
	})

	// Rendered note pages
	r.Method(http.MethodGet, "/notes/{id}", handlers.NewNoteHandler(svc))

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	return r
}
