// Package api exposes the chunkstream debug HTTP server.
//
// The server is a read-only window onto the recording catalog plus the
// usual operational endpoints: /api/v1/health behind the API key, and
// /metrics left open for scraping.
package api

import (
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Routes builds the router for the debug server. Split out from
// StartServer so tests can exercise the full middleware chain without
// binding a socket.
func Routes(server *Server, config ServerConfig, metrics *Metrics, gatherer prometheus.Gatherer) chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// API key authentication middleware for protected routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(metrics.InstrumentAuthMiddleware(apiKeyMiddleware(config.APIKey)))

		// Health check
		r.Get("/health", metrics.InstrumentHandler("GET", "/api/v1/health", server.handleHealth))

		// Recording catalog
		r.Get("/recordings", metrics.InstrumentHandler("GET", "/api/v1/recordings", server.handleListRecordings))
		r.Get("/recordings/{id}", metrics.InstrumentHandler("GET", "/api/v1/recordings/{id}", server.handleGetRecording))
		r.Delete("/recordings/{id}", metrics.InstrumentHandler("DELETE", "/api/v1/recordings/{id}", server.handleDeleteRecording))
	})

	return r
}

// StartServer starts the HTTP server with all routes configured
func StartServer(catalog RecordingCatalog, config ServerConfig) error {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)

	server := NewServer(catalog, config, metrics)
	r := Routes(server, config, metrics, registry)

	addr := fmt.Sprintf("%s:%d", config.Bind, config.Port)
	fmt.Printf("Starting chunkstream debug server on %s\n", addr)
	fmt.Printf("Metrics available at: http://%s/metrics\n", addr)
	log.Fatal(http.ListenAndServe(addr, r))

	return nil
}
