// Package layout assigns 2-D coordinates to the nodes of a linkage graph.
//
// Four algorithms are available: a seeded force-directed (spring) simulation,
// a circular placement, Kamada-Kawai stress minimization and classical MDS.
// Every layout is centred on the origin and rescaled into [-1, 1]² with the
// aspect ratio preserved, so runs with the same parameters are comparable.
package layout

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/gilchrisn/linkage-graph-service/pkg/linkage"
	"github.com/gilchrisn/linkage-graph-service/pkg/models"
)

const (
	DefaultSpringIterations      = 50
	DefaultKamadaKawaiIterations = 500
	DefaultSpacing               = 1.0
	DefaultSeed                  = 42
)

// Config holds the numeric parameters of one layout run
type Config struct {
	Algorithm  models.LayoutAlgorithm
	Spacing    float64 // target inter-node distance; 0 lets the algorithm choose
	Iterations int     // relaxation steps for spring and kamada_kawai
	Seed       int64   // initial placement seed for spring
	Timeout    time.Duration

	Logger *zerolog.Logger
}

// DefaultConfig returns the reference parameters for an algorithm
func DefaultConfig(algorithm models.LayoutAlgorithm) Config {
	cfg := Config{
		Algorithm:  algorithm,
		Spacing:    DefaultSpacing,
		Iterations: DefaultSpringIterations,
		Seed:       DefaultSeed,
	}
	if algorithm == models.LayoutKamadaKawai {
		cfg.Iterations = DefaultKamadaKawaiIterations
	}
	return cfg
}

// Validate reports every invalid parameter at once
func (c Config) Validate() error {
	var errs models.ValidationErrors

	if !c.Algorithm.IsValid() {
		errs = append(errs, models.ValidationError{
			Field:   "visualization.layout",
			Message: fmt.Sprintf("unsupported layout algorithm, expected one of %v", models.SupportedLayouts()),
			Value:   string(c.Algorithm),
		})
	}
	if c.Spacing < 0 || math.IsNaN(c.Spacing) || math.IsInf(c.Spacing, 0) {
		errs = append(errs, models.ValidationError{
			Field:   "visualization.spacing",
			Message: "spacing must be a finite non-negative number",
			Value:   fmt.Sprint(c.Spacing),
		})
	}
	if c.Iterations < 0 {
		errs = append(errs, models.ValidationError{
			Field:   "visualization.iterations",
			Message: "iterations must be non-negative",
			Value:   fmt.Sprint(c.Iterations),
		})
	}
	if c.Timeout < 0 {
		errs = append(errs, models.ValidationError{
			Field:   "visualization.timeout_ms",
			Message: "timeout must be non-negative",
			Value:   fmt.Sprint(c.Timeout.Milliseconds()),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Position is the coordinate of one node
type Position struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Result is a complete layout. Positions follow graph insertion order.
type Result struct {
	Algorithm  models.LayoutAlgorithm `json:"algorithm"`
	Positions  []Position             `json:"positions"`
	Iterations int                    `json:"iterations"`
	Truncated  bool                   `json:"truncated"`
	RuntimeMS  int64                  `json:"runtime_ms"`

	byID map[string]int
}

// Position returns the coordinate of one node
func (r *Result) Position(id string) (Position, bool) {
	i, exists := r.byID[id]
	if !exists {
		return Position{}, false
	}
	return r.Positions[i], true
}

// run is the outcome of a single algorithm before normalization
type run struct {
	points     []point
	iterations int
	truncated  bool
}

type algorithm func(ctx context.Context, g *linkage.Graph, cfg Config, deadline time.Time) (run, error)

var algorithms = map[models.LayoutAlgorithm]algorithm{
	models.LayoutSpring:      spring,
	models.LayoutCircular:    circularRun,
	models.LayoutKamadaKawai: kamadaKawai,
	models.LayoutMDS:         classicalMDS,
}

// Compute lays out g. An invalid Config is rejected before any work. When the
// timeout or the context deadline cuts a run short, the best layout found so
// far is returned with Truncated set.
func Compute(ctx context.Context, g *linkage.Graph, cfg Config) (*Result, error) {
	startTime := time.Now()
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if g == nil {
		return nil, fmt.Errorf("graph is nil")
	}

	n := g.NodeCount()
	result := &Result{
		Algorithm: cfg.Algorithm,
		Positions: make([]Position, n),
		byID:      make(map[string]int, n),
	}
	for i, node := range g.Nodes() {
		result.Positions[i] = Position{ID: node.ID}
		result.byID[node.ID] = i
	}

	// trivial layouts never reach a solver
	if n <= 1 {
		result.RuntimeMS = time.Since(startTime).Milliseconds()
		return result, nil
	}

	var deadline time.Time
	if cfg.Timeout > 0 {
		deadline = startTime.Add(cfg.Timeout)
	}
	if d, ok := ctx.Deadline(); ok && (deadline.IsZero() || d.Before(deadline)) {
		deadline = d
	}

	out, err := algorithms[cfg.Algorithm](ctx, g, cfg, deadline)
	if err != nil {
		return nil, fmt.Errorf("%s layout failed: %w", cfg.Algorithm, err)
	}

	rescale(out.points)
	for i, p := range out.points {
		result.Positions[i].X = p.X
		result.Positions[i].Y = p.Y
	}
	result.Iterations = out.iterations
	result.Truncated = out.truncated
	result.RuntimeMS = time.Since(startTime).Milliseconds()

	event := logger.Debug()
	if out.truncated {
		event = logger.Warn()
	}
	event.
		Str("algorithm", string(cfg.Algorithm)).
		Int("nodes", n).
		Int("iterations", out.iterations).
		Bool("truncated", out.truncated).
		Int64("runtime_ms", result.RuntimeMS).
		Msg("Layout computed")

	return result, nil
}

// expired reports whether the run must stop now
func expired(ctx context.Context, deadline time.Time) bool {
	if ctx.Err() != nil {
		return true
	}
	return !deadline.IsZero() && !time.Now().Before(deadline)
}
