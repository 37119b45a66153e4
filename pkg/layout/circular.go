package layout

import (
	"context"
	"time"

	"github.com/gilchrisn/linkage-graph-service/pkg/linkage"
)

// circularRun places nodes around the unit circle in insertion order
func circularRun(_ context.Context, g *linkage.Graph, _ Config, _ time.Time) (run, error) {
	return run{points: circle(g.NodeCount())}, nil
}
