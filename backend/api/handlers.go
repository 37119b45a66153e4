package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/gilchrisn/linkage-graph-service/backend/utils"
	"github.com/gilchrisn/linkage-graph-service/pkg/config"
	"github.com/gilchrisn/linkage-graph-service/pkg/linkage"
	"github.com/gilchrisn/linkage-graph-service/pkg/models"
	"github.com/gilchrisn/linkage-graph-service/pkg/pipeline"
)

const version = "1.0.0"

// Handlers contains HTTP request handlers. They hold no per-request state:
// every analysis is computed from its request body alone.
type Handlers struct {
	engine *pipeline.Engine
	config *config.Config
}

// NewHandlers creates new API handlers
func NewHandlers(engine *pipeline.Engine, cfg *config.Config) *Handlers {
	return &Handlers{engine: engine, config: cfg}
}

// CreateAnalysis runs one analysis over the posted request
func (h *Handlers) CreateAnalysis(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	if !utils.ValidateContentType(r, "application/json") {
		utils.WriteErrorResponse(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json", nil)
		return
	}

	body := http.MaxBytesReader(w, r.Body, h.config.MaxBodyBytes())
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()

	var req models.AnalysisRequest
	if err := decoder.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.WriteErrorResponse(w, http.StatusRequestEntityTooLarge, "Request body too large", err)
			return
		}
		logger.Warn().Err(err).Msg("Invalid analysis request body")
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid JSON request body", err)
		return
	}

	ctx := r.Context()
	if timeout := h.config.RequestTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	resp, err := h.engine.Analyze(ctx, &req)
	if err != nil {
		var verrs models.ValidationErrors
		switch {
		case errors.As(err, &verrs):
			logger.Info().Strs("fields", verrs.Fields()).Msg("Analysis request rejected")
			utils.WriteValidationErrorResponse(w, "Invalid analysis request", verrs)
		case errors.Is(err, context.DeadlineExceeded):
			logger.Warn().Err(err).Msg("Analysis timed out")
			utils.WriteErrorResponse(w, http.StatusServiceUnavailable, "Analysis timed out", err)
		case errors.Is(err, context.Canceled):
			logger.Info().Msg("Analysis cancelled by client")
			utils.WriteErrorResponse(w, http.StatusServiceUnavailable, "Analysis cancelled", err)
		default:
			logger.Error().Err(err).Msg("Analysis failed")
			utils.WriteErrorResponse(w, http.StatusInternalServerError, "Analysis failed", err)
		}
		return
	}

	logger.Info().
		Int("nodes", resp.Summary.NodeCount).
		Int("edges", resp.Summary.EdgeCount).
		Msg("Analysis completed successfully")

	utils.WriteSuccessResponse(w, "Analysis completed successfully", resp)
}

// GetSample returns the demonstration request, ready to post back
func (h *Handlers) GetSample(w http.ResponseWriter, r *http.Request) {
	utils.WriteSuccessResponse(w, "Sample request retrieved successfully", linkage.SampleRequest())
}

// ListLayouts lists the layout algorithms and their defaults
func (h *Handlers) ListLayouts(w http.ResponseWriter, r *http.Request) {
	descriptions := map[models.LayoutAlgorithm]string{
		models.LayoutSpring:      "Fruchterman-Reingold force-directed layout, seeded",
		models.LayoutCircular:    "Nodes evenly spaced on a circle in insertion order",
		models.LayoutKamadaKawai: "Stress minimization over graph distances",
		models.LayoutMDS:         "Classical multidimensional scaling of graph distances",
	}

	layouts := make([]map[string]interface{}, 0, len(descriptions))
	for _, algorithm := range models.SupportedLayouts() {
		defaults := h.engine.LayoutConfig(models.VisualizationConfig{Layout: algorithm})
		layouts = append(layouts, map[string]interface{}{
			"name":        algorithm,
			"description": descriptions[algorithm],
			"parameters": []map[string]interface{}{
				{"name": "spacing", "type": "number", "default": defaults.Spacing, "description": "Target distance between linked nodes"},
				{"name": "iterations", "type": "integer", "default": defaults.Iterations, "description": "Relaxation steps (spring, kamada_kawai)"},
				{"name": "seed", "type": "integer", "default": defaults.Seed, "description": "Initial placement seed (spring)"},
				{"name": "timeout_ms", "type": "integer", "default": defaults.Timeout.Milliseconds(), "description": "Wall-clock cutoff, 0 for none"},
			},
		})
	}

	community := map[string]interface{}{
		"default": h.config.CommunityMethod(),
		"methods": models.SupportedCommunityMethods(),
	}

	utils.WriteSuccessResponse(w, "Layouts retrieved successfully", map[string]interface{}{
		"default":   h.config.LayoutAlgorithm(),
		"layouts":   layouts,
		"top_k":     h.config.TopK(),
		"community": community,
	})
}

// HealthCheck returns server health status
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   version,
	}
	utils.WriteSuccessResponse(w, "Service is healthy", health)
}
