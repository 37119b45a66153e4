package layout

import (
	"context"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/mds"

	"github.com/gilchrisn/linkage-graph-service/pkg/linkage"
)

// classicalMDS embeds the hop-distance matrix with Torgerson scaling and keeps
// the two leading dimensions. A missing second dimension is padded with zeros
// and a failed decomposition falls back to the circular placement.
func classicalMDS(_ context.Context, g *linkage.Graph, cfg Config, _ time.Time) (run, error) {
	n := g.NodeCount()
	dist := shortestPaths(g)
	if cfg.Spacing > 0 {
		dist.ScaleSym(cfg.Spacing, dist)
	}

	var coords mat.Dense
	k, _ := mds.TorgersonScaling(&coords, nil, dist)
	if k == 0 || coords.IsEmpty() {
		return run{points: circle(n)}, nil
	}

	_, cols := coords.Dims()
	points := make([]point, n)
	for i := range points {
		points[i].X = coords.At(i, 0)
		if cols > 1 {
			points[i].Y = coords.At(i, 1)
		}
	}
	return run{points: points}, nil
}
