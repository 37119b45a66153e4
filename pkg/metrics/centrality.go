package metrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/graph/network"

	"github.com/gilchrisn/linkage-graph-service/pkg/linkage"
)

const (
	pageRankDamping       = 0.85
	pageRankTolerance     = 1e-12
	pageRankMaxIterations = 1000
)

// DegreeCentrality returns degree/(n-1) per node, indexed by insertion order.
// All zeros when the graph has fewer than two nodes.
func DegreeCentrality(g *linkage.Graph) []float64 {
	n := g.NodeCount()
	out := make([]float64, n)
	if n <= 1 {
		return out
	}
	for i := 0; i < n; i++ {
		out[i] = float64(len(g.Adjacency(i))) / float64(n-1)
	}
	return out
}

// TopK ranks nodes by degree centrality, descending, ties broken by value.
// k <= 0 selects DefaultTopK.
func TopK(g *linkage.Graph, centrality []float64, k int) []Ranked {
	if k <= 0 {
		k = DefaultTopK
	}
	nodes := g.Nodes()
	ranked := make([]Ranked, len(nodes))
	for i, node := range nodes {
		ranked[i] = Ranked{
			ID:               node.ID,
			FieldID:          node.FieldID,
			Degree:           len(g.Adjacency(i)),
			DegreeCentrality: centrality[i],
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].DegreeCentrality != ranked[j].DegreeCentrality {
			return ranked[i].DegreeCentrality > ranked[j].DegreeCentrality
		}
		return ranked[i].ID < ranked[j].ID
	})

	if k > len(ranked) {
		k = len(ranked)
	}
	return ranked[:k]
}

// PageRank returns PageRank scores per node (insertion order), normalized to
// sum to one. Edgeless graphs get the uniform distribution. The power
// iteration walks nodes and adjacency lists in insertion order, so identical
// graphs give bit-identical scores. Isolated nodes spread their mass evenly.
func PageRank(g *linkage.Graph) []float64 {
	n := g.NodeCount()
	rank := make([]float64, n)
	if n == 0 {
		return rank
	}
	uniform := 1 / float64(n)
	for i := range rank {
		rank[i] = uniform
	}
	if g.EdgeCount() == 0 {
		return rank
	}

	next := make([]float64, n)
	for iter := 0; iter < pageRankMaxIterations; iter++ {
		dangling := 0.0
		for i := range next {
			next[i] = 0
		}
		for i := 0; i < n; i++ {
			adj := g.Adjacency(i)
			if len(adj) == 0 {
				dangling += rank[i]
				continue
			}
			share := rank[i] / float64(len(adj))
			for _, j := range adj {
				next[j] += share
			}
		}

		base := (1-pageRankDamping)*uniform + pageRankDamping*dangling*uniform
		delta := 0.0
		for i := range next {
			v := base + pageRankDamping*next[i]
			delta += math.Abs(v - rank[i])
			next[i] = v
		}
		rank, next = next, rank
		if delta < pageRankTolerance {
			break
		}
	}

	total := 0.0
	for _, v := range rank {
		total += v
	}
	for i := range rank {
		rank[i] /= total
	}
	return rank
}

// Betweenness returns shortest-path betweenness per node (insertion order),
// normalized into [0, 1]. Graphs with fewer than three nodes score zero.
func Betweenness(g *linkage.Graph) []float64 {
	n := g.NodeCount()
	out := make([]float64, n)
	if n < 3 || g.EdgeCount() == 0 {
		return out
	}

	// gonum accumulates over ordered (s, t) pairs, so each undirected pair
	// is counted twice; (n-1)(n-2) is the matching upper bound.
	raw := network.Betweenness(g.Gonum())
	scale := float64((n - 1) * (n - 2))
	for i := range out {
		v := raw[int64(i)] / scale
		if v > 1 {
			v = 1
		}
		out[i] = v
	}
	return out
}
