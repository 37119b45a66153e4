package metrics

import (
	"sort"

	"gonum.org/v1/gonum/graph/topo"

	"github.com/gilchrisn/linkage-graph-service/pkg/linkage"
)

// Clustering returns the local clustering coefficient of every node
// (insertion order): 2T / (d(d-1)), zero below degree two.
func Clustering(g *linkage.Graph) []float64 {
	n := g.NodeCount()
	out := make([]float64, n)

	neighbors := make([]map[int]struct{}, n)
	for i := 0; i < n; i++ {
		adj := g.Adjacency(i)
		set := make(map[int]struct{}, len(adj))
		for _, j := range adj {
			set[j] = struct{}{}
		}
		neighbors[i] = set
	}

	for i := 0; i < n; i++ {
		adj := g.Adjacency(i)
		d := len(adj)
		if d < 2 {
			continue
		}
		triangles := 0
		for a := 0; a < d; a++ {
			for b := a + 1; b < d; b++ {
				if _, linked := neighbors[adj[a]][adj[b]]; linked {
					triangles++
				}
			}
		}
		out[i] = 2 * float64(triangles) / (float64(d) * float64(d-1))
	}
	return out
}

// AverageClustering is the mean local coefficient, zero for no nodes
func AverageClustering(clustering []float64) float64 {
	if len(clustering) == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range clustering {
		sum += c
	}
	return sum / float64(len(clustering))
}

// ConnectedComponents partitions node indices into maximal connected sets.
// Members are sorted by insertion index and components are ordered by their
// earliest member, so ids are stable across runs.
func ConnectedComponents(g *linkage.Graph) [][]int {
	raw := topo.ConnectedComponents(g.Gonum())

	components := make([][]int, 0, len(raw))
	for _, cc := range raw {
		members := make([]int, len(cc))
		for k, node := range cc {
			members[k] = int(node.ID())
		}
		sort.Ints(members)
		components = append(components, members)
	}

	sort.Slice(components, func(i, j int) bool {
		return components[i][0] < components[j][0]
	})
	return components
}

// SharedConnections lists values linked to more than one other value, by
// degree descending then value
func SharedConnections(g *linkage.Graph) []SharedConnection {
	shared := []SharedConnection{}
	for _, node := range g.Nodes() {
		if d := g.Degree(node.ID); d > 1 {
			shared = append(shared, SharedConnection{ID: node.ID, FieldID: node.FieldID, Degree: d})
		}
	}
	sort.SliceStable(shared, func(i, j int) bool {
		if shared[i].Degree != shared[j].Degree {
			return shared[i].Degree > shared[j].Degree
		}
		return shared[i].ID < shared[j].ID
	})
	return shared
}

// CrossFieldValues lists values supplied under more than one field, in
// insertion order
func CrossFieldValues(g *linkage.Graph) []CrossFieldValue {
	out := []CrossFieldValue{}
	for _, node := range g.Nodes() {
		if node.CrossField() {
			fields := make([]string, len(node.Fields))
			copy(fields, node.Fields)
			out = append(out, CrossFieldValue{ID: node.ID, Fields: fields})
		}
	}
	return out
}
