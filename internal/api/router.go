package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hoanghai1803/synopsis/internal/api/handlers"
	"github.com/hoanghai1803/synopsis/internal/auth"
	"github.com/hoanghai1803/synopsis/internal/config"
	"github.com/hoanghai1803/synopsis/internal/storage"
	"github.com/hoanghai1803/synopsis/internal/summary"
	"github.com/hoanghai1803/synopsis/internal/themes"
)

// Fetcher loads article text and feed entries. *feeds.Fetcher implements it.
type Fetcher interface {
	handlers.ArticleExtractor
	handlers.FeedFetcher
}

// Dependencies are the services the router hands to its handlers.
type Dependencies struct {
	Store    *storage.Store
	Service  *summary.Service
	Settings *config.Holder
	Themes   *themes.Store
	Gateway  *auth.Gateway
	Fetcher  Fetcher

	// Registry, when set, receives HTTP metrics and is served on /metrics.
	Registry *prometheus.Registry
}

// NewRouter creates and configures the HTTP router with the public summary
// API, the admin API and the operational endpoints.
func NewRouter(deps Dependencies) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(RequestLogger)
	r.Use(Recovery)
	if deps.Registry != nil {
		r.Use(NewHTTPMetrics(deps.Registry).Middleware)
	}
	r.Use(CORS(deps.Settings))

	// Public API used by the blog.
	r.Route("/api", func(api chi.Router) {
		api.Use(RateLimit(deps.Settings.Current().Config.Server.RateLimitPerMinute))

		api.Post("/summary", handlers.Summarize(deps.Service, deps.Fetcher))
		api.Post("/summary/content", handlers.SummarizeContent(deps.Service))
		api.Get("/card-template", handlers.CardTemplate(deps.Settings, deps.Themes))
	})

	// Admin API.
	r.Route("/admin/api", func(admin chi.Router) {
		admin.Post("/login", handlers.Login(deps.Store, deps.Gateway))

		admin.Group(func(protected chi.Router) {
			protected.Use(auth.RequireAdmin(deps.Gateway))

			protected.Get("/summaries", handlers.ListSummaries(deps.Service))
			protected.Delete("/summaries/{id}", handlers.DeleteSummary(deps.Service))
			protected.Post("/summaries/{id}/refresh", handlers.RefreshSummary(deps.Service))
			protected.Get("/stats", handlers.Stats(deps.Service))
			protected.Get("/feed-audit", handlers.FeedAudit(deps.Service, deps.Fetcher, deps.Settings))

			protected.Get("/themes", handlers.ListThemes(deps.Themes, deps.Settings))
			protected.Get("/themes/{name}", handlers.GetTheme(deps.Themes))
			protected.Put("/themes/{name}", handlers.PutTheme(deps.Themes))
			protected.Delete("/themes/{name}", handlers.DeleteTheme(deps.Themes, deps.Settings))

			protected.Get("/config", handlers.GetConfig(deps.Settings))
			protected.Put("/config", handlers.UpdateConfig(deps.Settings, deps.Store, deps.Themes))
		})
	})

	r.Get("/healthz", handlers.Health(deps.Store.DB()))
	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	return r
}
