package layout

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/gilchrisn/linkage-graph-service/pkg/linkage"
)

const (
	minSpringDistance = 0.01
	initialTemp       = 0.1
)

// spring runs Fruchterman-Reingold: every pair repels with k²/d, every edge
// attracts with d²/k, and the step length cools linearly to zero. The initial
// placement is drawn uniformly from the unit square with a PCG seeded by
// cfg.Seed, so equal seeds give equal layouts.
func spring(ctx context.Context, g *linkage.Graph, cfg Config, deadline time.Time) (run, error) {
	n := g.NodeCount()
	rng := rand.New(rand.NewPCG(uint64(cfg.Seed), uint64(cfg.Seed)>>32|1))

	pos := make([]point, n)
	for i := range pos {
		pos[i] = point{X: rng.Float64(), Y: rng.Float64()}
	}

	k := cfg.Spacing
	if k == 0 {
		k = 1 / math.Sqrt(float64(n))
	}

	out := run{points: pos}
	temp := initialTemp
	cooling := temp / float64(cfg.Iterations+1)
	disp := make([]point, n)

	for iter := 0; iter < cfg.Iterations; iter++ {
		if expired(ctx, deadline) {
			out.truncated = true
			break
		}

		for i := range disp {
			disp[i] = point{}
		}

		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				delta := r2.Sub(pos[i], pos[j])
				d := math.Max(r2.Norm(delta), minSpringDistance)
				force := k * k / (d * d)
				disp[i] = r2.Add(disp[i], r2.Scale(force, delta))
				disp[j] = r2.Sub(disp[j], r2.Scale(force, delta))
			}
		}

		for i := 0; i < n; i++ {
			for _, j := range g.Adjacency(i) {
				if j < i {
					continue
				}
				delta := r2.Sub(pos[i], pos[j])
				d := math.Max(r2.Norm(delta), minSpringDistance)
				force := d / k
				disp[i] = r2.Sub(disp[i], r2.Scale(force, delta))
				disp[j] = r2.Add(disp[j], r2.Scale(force, delta))
			}
		}

		for i := range pos {
			length := math.Max(r2.Norm(disp[i]), minSpringDistance)
			pos[i] = r2.Add(pos[i], r2.Scale(temp/length, disp[i]))
		}

		temp -= cooling
		out.iterations++
	}

	return out, nil
}
