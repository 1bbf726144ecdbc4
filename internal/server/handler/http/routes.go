package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/atinyakov/TodoSync/internal/middleware"
)

// NewRouter constructs the HTTP handler serving the todo sync API.
//
// Routes:
//
//	GET  /health                                → liveness probe
//	GET  /metrics                               → prometheus metrics
//	POST /api/auth/register                     → AuthHandler.Register
//	POST /api/auth/authorize                    → AuthHandler.Authorize
//	GET  /api/lists                             → ListHandler.List
//	POST /api/lists                             → ListHandler.Create
//	POST /api/lists/join                        → ListHandler.Join
//	GET  /api/lists/{listID}/stream             → ListHandler.Stream (SSE)
//	GET  /api/todos/{listID}                    → TodoHandler.List
//	POST /api/todos/{listID}                    → TodoHandler.Create
//	POST /api/todos/{listID}/{todoID}/transition → TodoHandler.Transition
//	DELETE /api/todos/{listID}/{todoID}         → TodoHandler.Delete
//
// Everything under /api except auth requires a valid bearer token.
func NewRouter(
	authHandler *AuthHandler,
	listHandler *ListHandler,
	todoHandler *TodoHandler,
	metricsHandler http.Handler,
	tokens middleware.TokenValidator,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.WithRequestLogging(logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Route("/api", func(r chi.Router) {
		// Only allow requests with JSON bodies (bodyless requests pass).
		r.Use(chiMiddleware.AllowContentType("application/json"))

		// Public endpoints
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/authorize", authHandler.Authorize)
		})

		// Protected group: requires a valid token
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(tokens, logger))

			r.Route("/lists", func(r chi.Router) {
				r.Get("/", listHandler.List)
				r.Post("/", listHandler.Create)
				r.Post("/join", listHandler.Join)
				r.Get("/{listID}/stream", listHandler.Stream)
			})

			r.Route("/todos", func(r chi.Router) {
				r.Get("/{listID}", todoHandler.List)
				r.Post("/{listID}", todoHandler.Create)
				r.Post("/{listID}/{todoID}/transition", todoHandler.Transition)
				r.Delete("/{listID}/{todoID}", todoHandler.Delete)
			})
		})
	})

	return r
}
