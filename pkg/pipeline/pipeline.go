// Package pipeline runs one analysis end to end: validate, normalize, build
// the linkage graph, compute metrics and layout concurrently, and assemble the
// response. An Engine holds configuration only; no request state outlives a
// call to Analyze.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/gilchrisn/linkage-graph-service/pkg/config"
	"github.com/gilchrisn/linkage-graph-service/pkg/instrument"
	"github.com/gilchrisn/linkage-graph-service/pkg/layout"
	"github.com/gilchrisn/linkage-graph-service/pkg/linkage"
	"github.com/gilchrisn/linkage-graph-service/pkg/metrics"
	"github.com/gilchrisn/linkage-graph-service/pkg/models"
	"github.com/gilchrisn/linkage-graph-service/pkg/normalize"
	"github.com/gilchrisn/linkage-graph-service/pkg/result"
	"github.com/gilchrisn/linkage-graph-service/pkg/validation"
)

// Engine runs analyses with configured defaults
type Engine struct {
	config *config.Config
	logger zerolog.Logger
}

// NewEngine creates an engine. A nil config selects the built-in defaults.
func NewEngine(cfg *config.Config, logger zerolog.Logger) *Engine {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &Engine{config: cfg, logger: logger}
}

// LayoutConfig resolves the visualization settings of a request against the
// configured defaults
func (e *Engine) LayoutConfig(vis models.VisualizationConfig) layout.Config {
	cfg := layout.Config{
		Algorithm: vis.Layout,
		Spacing:   e.config.LayoutSpacing(),
		Seed:      e.config.LayoutSeed(),
		Timeout:   e.config.LayoutTimeout(),
	}
	if cfg.Algorithm == "" {
		cfg.Algorithm = models.LayoutAlgorithm(e.config.LayoutAlgorithm())
	}

	cfg.Iterations = e.config.SpringIterations()
	if cfg.Algorithm == models.LayoutKamadaKawai {
		cfg.Iterations = e.config.KamadaKawaiIterations()
	}

	if vis.Spacing != nil {
		cfg.Spacing = *vis.Spacing
	}
	if vis.Iterations != nil {
		cfg.Iterations = *vis.Iterations
	}
	if vis.Seed != nil {
		cfg.Seed = *vis.Seed
	}
	if vis.TimeoutMS > 0 {
		cfg.Timeout = time.Duration(vis.TimeoutMS) * time.Millisecond
	}
	return cfg
}

// TopK resolves the requested top-k against the configured default
func (e *Engine) TopK(requested int) int {
	if requested > 0 {
		return requested
	}
	return e.config.TopK()
}

// MetricsOptions resolves the metric settings of a request against the
// configured defaults
func (e *Engine) MetricsOptions(req *models.AnalysisRequest) metrics.Options {
	opts := metrics.Options{
		TopK:      e.TopK(req.TopK),
		Community: req.Community,
		Seed:      e.config.CommunitySeed(),
	}
	if opts.Community == "" {
		opts.Community = models.CommunityMethod(e.config.CommunityMethod())
	}
	return opts
}

// Analyze runs the full pipeline for one request. Invalid requests fail with
// models.ValidationErrors before any graph work. Input without a single value
// is not an error: the response is marked empty.
func (e *Engine) Analyze(ctx context.Context, req *models.AnalysisRequest) (*result.Response, error) {
	startTime := time.Now()

	// Step 1: validate the request and the resolved layout parameters
	if err := validation.ValidateRequest(req); err != nil {
		instrument.AnalysesTotal.WithLabelValues(instrument.OutcomeInvalid).Inc()
		return nil, err
	}
	layoutCfg := e.LayoutConfig(req.Visualization)
	if err := layoutCfg.Validate(); err != nil {
		instrument.AnalysesTotal.WithLabelValues(instrument.OutcomeInvalid).Inc()
		return nil, err
	}
	metricsOpts := e.MetricsOptions(req)
	if !metricsOpts.Community.IsValid() {
		instrument.AnalysesTotal.WithLabelValues(instrument.OutcomeInvalid).Inc()
		return nil, models.ValidationErrors{{
			Field:   "community",
			Message: fmt.Sprintf("unsupported community method, expected one of %v", models.SupportedCommunityMethods()),
			Value:   string(metricsOpts.Community),
		}}
	}
	logger := e.logger.With().Str("layout", string(layoutCfg.Algorithm)).Logger()
	layoutCfg.Logger = &logger
	metricsOpts.Logger = &logger

	// Step 2: normalize raw values
	stageStart := time.Now()
	normalizer := normalize.New(normalize.Options{
		FoldCase:   req.FoldCase || e.config.FoldCase(),
		KeepBlanks: req.AlignedRows,
	})
	fields := normalizer.Fields(req.Values, req.Text)
	observe(instrument.StageNormalize, stageStart)

	if normalize.IsEmpty(fields) {
		return e.empty(ctx, req, fields, layoutCfg, metricsOpts, logger)
	}

	// Step 3: build the graph
	stageStart = time.Now()
	g := linkage.Build(req.Fields, fields)
	observe(instrument.StageBuild, stageStart)
	instrument.GraphNodes.Observe(float64(g.NodeCount()))
	instrument.GraphEdges.Observe(float64(g.EdgeCount()))

	logger.Debug().
		Int("fields", len(req.Fields)).
		Int("records", g.Rows()).
		Int("nodes", g.NodeCount()).
		Int("edges", g.EdgeCount()).
		Msg("Graph built")

	// Step 4: metrics and layout are independent reads of the same graph
	var (
		metricsResult *metrics.Result
		layoutResult  *layout.Result
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		stageStart := time.Now()
		defer observe(instrument.StageMetrics, stageStart)

		var err error
		metricsResult, err = metrics.Compute(groupCtx, g, metricsOpts)
		if err != nil {
			return fmt.Errorf("metrics computation failed: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		stageStart := time.Now()
		defer observe(instrument.StageLayout, stageStart)

		var err error
		layoutResult, err = layout.Compute(groupCtx, g, layoutCfg)
		if err != nil {
			return fmt.Errorf("layout computation failed: %w", err)
		}
		return nil
	})
	if err := group.Wait(); err != nil {
		instrument.AnalysesTotal.WithLabelValues(instrument.OutcomeError).Inc()
		logger.Error().Err(err).Msg("Analysis failed")
		return nil, err
	}
	if layoutResult.Truncated {
		instrument.LayoutTruncations.WithLabelValues(string(layoutCfg.Algorithm)).Inc()
	}

	// Step 5: assemble
	stageStart = time.Now()
	resp := result.Assemble(req.Fields, fields, g, metricsResult, layoutResult)
	observe(instrument.StageAssemble, stageStart)

	instrument.AnalysesTotal.WithLabelValues(instrument.OutcomeOK).Inc()

	logger.Info().
		Int("nodes", resp.Summary.NodeCount).
		Int("edges", resp.Summary.EdgeCount).
		Int("components", resp.Summary.ComponentCount).
		Bool("layout_truncated", resp.Layout.Truncated).
		Dur("elapsed", time.Since(startTime)).
		Msg("Analysis complete")

	return resp, nil
}

// empty answers a request without a single value: zero metrics, no layout
func (e *Engine) empty(ctx context.Context, req *models.AnalysisRequest, fields map[string][]string, layoutCfg layout.Config, metricsOpts metrics.Options, logger zerolog.Logger) (*result.Response, error) {
	g := linkage.NewGraph()
	metricsResult, err := metrics.Compute(ctx, g, metricsOpts)
	if err != nil {
		instrument.AnalysesTotal.WithLabelValues(instrument.OutcomeError).Inc()
		return nil, fmt.Errorf("metrics computation failed: %w", err)
	}
	layoutResult, err := layout.Compute(ctx, g, layoutCfg)
	if err != nil {
		instrument.AnalysesTotal.WithLabelValues(instrument.OutcomeError).Inc()
		return nil, fmt.Errorf("layout computation failed: %w", err)
	}

	instrument.AnalysesTotal.WithLabelValues(instrument.OutcomeEmpty).Inc()
	logger.Info().Int("fields", len(req.Fields)).Msg("No values supplied, returning empty analysis")
	return result.Assemble(req.Fields, fields, g, metricsResult, layoutResult), nil
}

// IsValidationError reports whether err rejects the request itself
func IsValidationError(err error) bool {
	var verrs models.ValidationErrors
	var verr models.ValidationError
	return errors.As(err, &verrs) || errors.As(err, &verr)
}

func observe(stage string, since time.Time) {
	instrument.StageDuration.WithLabelValues(stage).Observe(time.Since(since).Seconds())
}
