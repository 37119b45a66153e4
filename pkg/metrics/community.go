package metrics

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/community"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/gilchrisn/linkage-graph-service/pkg/linkage"
)

// minModularityGain is the smallest merge gain treated as an improvement
const minModularityGain = 1e-12

// Partition is a community assignment of node indices
type Partition struct {
	Communities [][]int // sorted members; largest community first
	Modularity  float64
	Merges      int // greedy merges performed
	Levels      int // Louvain aggregation levels
}

// GreedyModularity runs Clauset-Newman-Moore agglomeration: every node starts
// in its own community and the connected pair with the largest modularity
// gain is merged until no merge improves Q. Equal gains resolve to the pair
// with the lowest community ids.
//
// A graph without edges has no meaningful partition; nil is returned.
func GreedyModularity(g *linkage.Graph) (*Partition, error) {
	if g.EdgeCount() == 0 {
		return nil, nil
	}

	n := g.NodeCount()
	m := float64(g.EdgeCount())

	between := make([]map[int]int, n) // edges between communities i and j
	degree := make([]int, n)          // degree sum of community i
	internal := make([]int, n)        // edges inside community i
	members := make([][]int, n)
	alive := make([]bool, n)

	for i := 0; i < n; i++ {
		adj := g.Adjacency(i)
		between[i] = make(map[int]int, len(adj))
		for _, j := range adj {
			between[i][j] = 1
		}
		degree[i] = len(adj)
		members[i] = []int{i}
		alive[i] = true
	}

	gain := func(i, j int) float64 {
		return float64(between[i][j])/m - float64(degree[i])*float64(degree[j])/(2*m*m)
	}

	merges := 0
	for {
		bestI, bestJ := -1, -1
		bestGain := 0.0
		for i := 0; i < n; i++ {
			if !alive[i] {
				continue
			}
			for j := range between[i] {
				if j <= i {
					continue
				}
				dq := gain(i, j)
				if dq <= minModularityGain {
					continue
				}
				better := bestI < 0 || dq > bestGain+minModularityGain
				tied := bestI >= 0 && math.Abs(dq-bestGain) <= minModularityGain &&
					(i < bestI || (i == bestI && j < bestJ))
				if better || tied {
					bestI, bestJ, bestGain = i, j, dq
				}
			}
		}
		if bestI < 0 {
			break
		}

		mergeCommunities(bestI, bestJ, between, degree, internal, members)
		alive[bestJ] = false
		merges++
	}

	communities := make([][]int, 0)
	own := 0.0
	for i := 0; i < n; i++ {
		if !alive[i] {
			continue
		}
		sorted := append([]int(nil), members[i]...)
		sort.Ints(sorted)
		communities = append(communities, sorted)
		share := float64(degree[i]) / (2 * m)
		own += float64(internal[i])/m - share*share
	}
	orderCommunities(communities)

	q := Modularity(g, communities)
	if math.Abs(q-own) > 1e-9 {
		return nil, fmt.Errorf("modularity mismatch: incremental %.12f, recomputed %.12f", own, q)
	}

	return &Partition{
		Communities: communities,
		Modularity:  q,
		Merges:      merges,
	}, nil
}

// orderCommunities sorts communities by descending size, then by their
// lowest member. Members must already be sorted.
func orderCommunities(communities [][]int) {
	sort.SliceStable(communities, func(a, b int) bool {
		if len(communities[a]) != len(communities[b]) {
			return len(communities[a]) > len(communities[b])
		}
		return communities[a][0] < communities[b][0]
	})
}

// mergeCommunities folds community j into community i
func mergeCommunities(i, j int, between []map[int]int, degree, internal []int, members [][]int) {
	internal[i] += internal[j] + between[i][j]
	for k, e := range between[j] {
		if k == i {
			continue
		}
		between[i][k] += e
		between[k][i] += e
		delete(between[k], j)
	}
	delete(between[i], j)
	between[j] = nil

	degree[i] += degree[j]
	degree[j] = 0
	internal[j] = 0
	members[i] = append(members[i], members[j]...)
	members[j] = nil
}

// Modularity evaluates Newman's Q of a partition given as node indices
func Modularity(g *linkage.Graph, communities [][]int) float64 {
	if g.EdgeCount() == 0 {
		return 0
	}
	groups := make([][]graph.Node, len(communities))
	for c, idx := range communities {
		nodes := make([]graph.Node, len(idx))
		for k, i := range idx {
			nodes[k] = simple.Node(int64(i))
		}
		groups[c] = nodes
	}
	return community.Q(g.Gonum(), groups, 1)
}
