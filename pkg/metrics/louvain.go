package metrics

import (
	"math/rand/v2"
	"sort"

	"github.com/gilchrisn/linkage-graph-service/pkg/linkage"
)

// DefaultLouvainPasses bounds the local-move passes of one Louvain level
const DefaultLouvainPasses = 100

// levelGraph is the weighted graph of one Louvain level. A self loop is
// stored once in its node's list and counts twice toward the degree.
type levelGraph struct {
	neighbors [][]int
	weights   [][]float64
	degree    []float64
	total     float64 // sum of edge weights, self loops included
}

func newLevelGraph(g *linkage.Graph) *levelGraph {
	n := g.NodeCount()
	lg := &levelGraph{
		neighbors: make([][]int, n),
		weights:   make([][]float64, n),
		degree:    make([]float64, n),
		total:     float64(g.EdgeCount()),
	}
	for i := 0; i < n; i++ {
		adj := append([]int(nil), g.Adjacency(i)...)
		sort.Ints(adj)
		lg.neighbors[i] = adj
		lg.weights[i] = make([]float64, len(adj))
		for k := range adj {
			lg.weights[i][k] = 1
		}
		lg.degree[i] = float64(len(adj))
	}
	return lg
}

// oneLevel moves nodes between neighboring communities while modularity
// improves. It returns the community of every node and whether any node moved.
func (lg *levelGraph) oneLevel(rng *rand.Rand, maxPasses int) ([]int, bool) {
	n := len(lg.neighbors)
	nodeComm := make([]int, n)
	commTotal := make([]float64, n)
	for i := 0; i < n; i++ {
		nodeComm[i] = i
		commTotal[i] = lg.degree[i]
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	m2 := 2 * lg.total
	moved := false
	linkWeight := make(map[int]float64)

	for pass := 0; pass < maxPasses; pass++ {
		moves := 0
		rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })

		for _, node := range order {
			oldComm := nodeComm[node]
			k := lg.degree[node]

			clear(linkWeight)
			candidates := []int{oldComm}
			for idx, nb := range lg.neighbors[node] {
				if nb == node {
					continue
				}
				c := nodeComm[nb]
				if _, seen := linkWeight[c]; !seen && c != oldComm {
					candidates = append(candidates, c)
				}
				linkWeight[c] += lg.weights[node][idx]
			}
			sort.Ints(candidates[1:])

			// take the node out, then put it back where the gain is largest
			commTotal[oldComm] -= k
			bestComm := oldComm
			bestGain := linkWeight[oldComm] - commTotal[oldComm]*k/m2
			for _, c := range candidates[1:] {
				gain := linkWeight[c] - commTotal[c]*k/m2
				if gain > bestGain+minModularityGain {
					bestComm, bestGain = c, gain
				}
			}
			commTotal[bestComm] += k

			if bestComm != oldComm {
				nodeComm[node] = bestComm
				moves++
			}
		}

		if moves == 0 {
			break
		}
		moved = true
	}
	return nodeComm, moved
}

// aggregate collapses every community into one node. Communities are
// renumbered densely in order of their lowest node; the mapping is returned.
func (lg *levelGraph) aggregate(nodeComm []int) (*levelGraph, []int) {
	renumber := make(map[int]int)
	mapping := make([]int, len(nodeComm))
	for i, c := range nodeComm {
		id, ok := renumber[c]
		if !ok {
			id = len(renumber)
			renumber[c] = id
		}
		mapping[i] = id
	}

	k := len(renumber)
	links := make([]map[int]float64, k)
	for c := range links {
		links[c] = make(map[int]float64)
	}
	for i, nbs := range lg.neighbors {
		ci := mapping[i]
		for idx, j := range nbs {
			w := lg.weights[i][idx]
			cj := mapping[j]
			switch {
			case i == j:
				links[ci][ci] += w
			case ci == cj:
				// internal edges are listed from both ends
				links[ci][ci] += w / 2
			default:
				links[ci][cj] += w
			}
		}
	}

	next := &levelGraph{
		neighbors: make([][]int, k),
		weights:   make([][]float64, k),
		degree:    make([]float64, k),
		total:     lg.total,
	}
	for c, row := range links {
		targets := make([]int, 0, len(row))
		for t := range row {
			targets = append(targets, t)
		}
		sort.Ints(targets)
		next.neighbors[c] = targets
		next.weights[c] = make([]float64, len(targets))
		for idx, t := range targets {
			w := row[t]
			next.weights[c][idx] = w
			if t == c {
				next.degree[c] += 2 * w
			} else {
				next.degree[c] += w
			}
		}
	}
	return next, mapping
}

// Louvain detects communities by alternating local moves and community
// aggregation until a level changes nothing. Node visiting order is shuffled
// with seed, so a fixed seed gives a fixed partition.
//
// A graph without edges has no meaningful partition; nil is returned.
func Louvain(g *linkage.Graph, seed int64) (*Partition, error) {
	if g.EdgeCount() == 0 {
		return nil, nil
	}

	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>32|1))
	lg := newLevelGraph(g)

	membership := make([]int, g.NodeCount())
	for i := range membership {
		membership[i] = i
	}

	levels := 0
	for {
		nodeComm, moved := lg.oneLevel(rng, DefaultLouvainPasses)
		if !moved {
			break
		}
		levels++

		var mapping []int
		lg, mapping = lg.aggregate(nodeComm)
		for i, c := range membership {
			membership[i] = mapping[c]
		}
		if len(lg.neighbors) == 1 {
			break
		}
	}

	groups := make(map[int][]int)
	for node, c := range membership {
		groups[c] = append(groups[c], node)
	}
	communities := make([][]int, 0, len(groups))
	for _, members := range groups {
		communities = append(communities, members)
	}
	orderCommunities(communities)

	return &Partition{
		Communities: communities,
		Modularity:  Modularity(g, communities),
		Levels:      levels,
	}, nil
}
