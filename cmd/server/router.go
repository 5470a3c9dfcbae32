package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/confhub/internal/api"
	apiMiddleware "github.com/phrazzld/confhub/internal/api/middleware"
)

// setupRouter builds the router with the /config2 routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))
	r.Use(apiMiddleware.SpanMiddleware(app.tracing.Tracer()))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(app.config.Server.WriteTimeout))

	configHandler := api.NewConfigHandler(app.registry, app.logger)
	r.Route("/config2", configHandler.Routes)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
