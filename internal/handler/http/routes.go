package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Init builds the router. Sync responses are compressed when the client
// accepts gzip.
func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID, h.withLogging)

	// routes without authorization
	router.Get("/api/health", h.health)

	router.Group(func(r chi.Router) {
		r.Use(h.auth, middleware.Compress(5, "application/json"))
		r.Post("/api/sync", h.sync)
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
