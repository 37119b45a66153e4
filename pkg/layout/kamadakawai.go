package layout

import (
	"context"
	"errors"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/gilchrisn/linkage-graph-service/pkg/linkage"
)

// kamadaKawai minimizes the spring stress
//
//	E = Σ_{i<j} (|p_i - p_j| - L·d_ij)² / (2·d_ij²)
//
// with L-BFGS, starting from the circular placement. d_ij are hop distances,
// so the result depends only on the graph and is fully deterministic.
func kamadaKawai(ctx context.Context, g *linkage.Graph, cfg Config, deadline time.Time) (run, error) {
	n := g.NodeCount()
	initial := circle(n)
	out := run{points: initial}

	if cfg.Iterations == 0 {
		return out, nil
	}
	if expired(ctx, deadline) {
		out.truncated = true
		return out, nil
	}

	spacing := cfg.Spacing
	if spacing == 0 {
		spacing = DefaultSpacing
	}
	dist := shortestPaths(g)
	limit, ok := remaining(ctx, deadline)
	if !ok {
		out.truncated = true
		return out, nil
	}
	stress := &stressFunc{n: n, dist: dist, spacing: spacing}

	x0 := make([]float64, 2*n)
	for i, p := range initial {
		x0[2*i], x0[2*i+1] = p.X, p.Y
	}

	settings := &optimize.Settings{
		MajorIterations:   cfg.Iterations,
		GradientThreshold: 1e-6,
		Runtime:           limit,
	}

	problem := optimize.Problem{
		Func: stress.value,
		Grad: stress.gradient,
		// checked after every evaluation, so cancellation stops the search
		Status: func() (optimize.Status, error) {
			if ctx.Err() != nil {
				return optimize.RuntimeLimit, nil
			}
			return optimize.NotTerminated, nil
		},
	}
	res, err := optimize.Minimize(problem, x0, settings, &optimize.LBFGS{})
	if res == nil {
		if err == nil {
			err = errors.New("optimizer returned no result")
		}
		return run{}, err
	}
	// line search failures still leave a usable location
	if err != nil && len(res.X) != 2*n {
		return run{}, err
	}

	for i := range out.points {
		out.points[i].X = res.X[2*i]
		out.points[i].Y = res.X[2*i+1]
	}
	out.iterations = res.Stats.MajorIterations
	out.truncated = res.Status == optimize.RuntimeLimit || ctx.Err() != nil
	return out, nil
}

type stressFunc struct {
	n       int
	dist    *mat.SymDense
	spacing float64
}

func (s *stressFunc) value(x []float64) float64 {
	energy := 0.0
	for i := 0; i < s.n; i++ {
		for j := i + 1; j < s.n; j++ {
			d := s.dist.At(i, j)
			dx := x[2*i] - x[2*j]
			dy := x[2*i+1] - x[2*j+1]
			diff := math.Hypot(dx, dy) - s.spacing*d
			energy += diff * diff / (2 * d * d)
		}
	}
	return energy
}

func (s *stressFunc) gradient(grad, x []float64) {
	for i := range grad {
		grad[i] = 0
	}
	for i := 0; i < s.n; i++ {
		for j := i + 1; j < s.n; j++ {
			d := s.dist.At(i, j)
			dx := x[2*i] - x[2*j]
			dy := x[2*i+1] - x[2*j+1]
			r := math.Max(math.Hypot(dx, dy), 1e-9)
			c := (r - s.spacing*d) / (d * d * r)
			grad[2*i] += c * dx
			grad[2*i+1] += c * dy
			grad[2*j] -= c * dx
			grad[2*j+1] -= c * dy
		}
	}
}

// remaining returns the optimizer runtime left before deadline. Zero means
// no limit. ok is false when the context is done or the deadline has passed,
// since the optimizer reads a non-positive runtime as unlimited.
func remaining(ctx context.Context, deadline time.Time) (time.Duration, bool) {
	if ctx.Err() != nil {
		return 0, false
	}
	if deadline.IsZero() {
		return 0, true
	}
	left := time.Until(deadline)
	return left, left > 0
}
