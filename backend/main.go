package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gilchrisn/linkage-graph-service/backend/api"
	"github.com/gilchrisn/linkage-graph-service/pkg/config"
	"github.com/gilchrisn/linkage-graph-service/pkg/pipeline"
)

func main() {
	configPath := flag.String("config", os.Getenv("LINKGRAPH_CONFIG"), "Optional YAML/JSON configuration file")
	flag.Parse()

	// Load configuration
	cfg := config.NewConfig()
	if *configPath != "" {
		if err := cfg.LoadFromFile(*configPath); err != nil {
			bootLogger := cfg.CreateLogger("linkgraph-api")
			bootLogger.Fatal().Err(err).Str("path", *configPath).Msg("Failed to load configuration")
		}
	}

	logger := cfg.CreateLogger("linkgraph-api")
	logger.Info().Msg("Starting linkage graph service")

	logger.Info().
		Str("address", cfg.ServerAddress()).
		Str("default_layout", cfg.LayoutAlgorithm()).
		Dur("request_timeout", cfg.RequestTimeout()).
		Msg("Configuration loaded")

	// The engine is stateless; one instance serves every request
	engine := pipeline.NewEngine(cfg, logger)

	// Create HTTP server with proper timeouts
	server := &http.Server{
		Addr:         cfg.ServerAddress(),
		Handler:      api.NewRouter(cfg, engine, logger),
		ReadTimeout:  cfg.ReadTimeout(),
		WriteTimeout: cfg.WriteTimeout(),
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("address", cfg.ServerAddress()).
			Msg("HTTP server starting")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutdown signal received")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server shutdown complete")
}
