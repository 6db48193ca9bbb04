package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"fibermeta/internal/config"
	"fibermeta/internal/middleware"
)

// NewRouter builds the HTTP router with the standard middleware chain and
// all catalog routes mounted under /v1.
func NewRouter(h *Handler, cfg *config.Config) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(middleware.RateLimiter(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	}))

	r.Get("/healthz", h.healthz)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/functions", h.listFunctions)

		r.Route("/databases", func(r chi.Router) {
			r.Get("/", h.listDatabases)
			r.Post("/", h.createDatabase)

			r.Route("/{database}", func(r chi.Router) {
				r.Post("/tables", h.createTable)

				r.Route("/tables/{table}", func(r chi.Router) {
					r.Get("/", h.getTableHandle)
					r.Get("/layout", h.getTableLayout)
					r.Get("/columns", h.listColumns)
					r.Get("/columns/metadata", h.listColumnMetadata)

					r.Post("/fibers", h.registerFiber)
					r.Route("/fibers/{value}/ranges", func(r chi.Router) {
						r.Post("/", h.registerFiberTimeRange)
						r.Get("/", h.listFiberTimeRanges)
					})
				})
			})
		})

		r.Get("/tables", h.listTables)
	})

	return r
}
