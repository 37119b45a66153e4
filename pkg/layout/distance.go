package layout

import (
	"gonum.org/v1/gonum/mat"

	"github.com/gilchrisn/linkage-graph-service/pkg/linkage"
)

// shortestPaths returns hop distances between every pair of nodes by a BFS
// from each node. Pairs in different components get one more than the
// largest finite distance so that components stay apart without dominating.
func shortestPaths(g *linkage.Graph) *mat.SymDense {
	n := g.NodeCount()
	dist := mat.NewSymDense(n, nil)

	unreachable := -1.0
	maxFinite := 0.0
	level := make([]int, n)

	for src := 0; src < n; src++ {
		for i := range level {
			level[i] = -1
		}
		level[src] = 0
		queue := []int{src}
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			for _, next := range g.Adjacency(current) {
				if level[next] < 0 {
					level[next] = level[current] + 1
					queue = append(queue, next)
				}
			}
		}

		for dst := src + 1; dst < n; dst++ {
			d := float64(level[dst])
			if level[dst] < 0 {
				d = unreachable
			} else if d > maxFinite {
				maxFinite = d
			}
			dist.SetSym(src, dst, d)
		}
	}

	fill := maxFinite + 1
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if dist.At(i, j) == unreachable {
				dist.SetSym(i, j, fill)
			}
		}
	}
	return dist
}
