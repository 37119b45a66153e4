package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/gilchrisn/linkage-graph-service/backend/utils"
	"github.com/gilchrisn/linkage-graph-service/pkg/config"
	"github.com/gilchrisn/linkage-graph-service/pkg/pipeline"
)

// SetupRoutes registers every endpoint on router
func SetupRoutes(router *mux.Router, handlers *Handlers) {
	// API version prefix
	api := router.PathPrefix("/api/v1").Subrouter()

	// Analyses are computed and returned in one call; nothing is stored
	api.HandleFunc("/analyses", handlers.CreateAnalysis).Methods(http.MethodPost)

	api.HandleFunc("/sample", handlers.GetSample).Methods(http.MethodGet)
	api.HandleFunc("/layouts", handlers.ListLayouts).Methods(http.MethodGet)
	api.HandleFunc("/health", handlers.HealthCheck).Methods(http.MethodGet)

	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteErrorResponse(w, http.StatusNotFound, "Resource not found", nil)
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
	})
}

// NewRouter wires handlers, middleware and CORS into one http.Handler
func NewRouter(cfg *config.Config, engine *pipeline.Engine, logger zerolog.Logger) http.Handler {
	handlers := NewHandlers(engine, cfg)

	router := mux.NewRouter()
	SetupRoutes(router, handlers)

	// Add middleware stack
	router.Use(LoggingMiddleware)
	router.Use(RecoveryMiddleware)

	// request ids wrap everything so preflight and 404 responses carry one too
	withCORS := NewCORS(cfg.AllowedOrigins()).Handler(router)
	return RequestIDMiddleware(logger)(withCORS)
}
