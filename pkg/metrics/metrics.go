// Package metrics computes structural measures of a linkage graph: degree,
// centrality, clustering, connected components and modularity communities
// (greedy agglomeration or Louvain).
//
// Every measure is a pure function of the graph and is well defined on empty
// and edgeless graphs, where "no shared connections" is a normal outcome.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/gilchrisn/linkage-graph-service/pkg/linkage"
	"github.com/gilchrisn/linkage-graph-service/pkg/models"
)

// DefaultTopK is the number of central nodes reported when none is requested
const DefaultTopK = 5

// Options tunes metric computation
type Options struct {
	TopK      int
	Community models.CommunityMethod // greedy when empty
	Seed      int64                  // Louvain visiting order
	Logger    *zerolog.Logger
}

// NodeMetrics holds every per-node measure
type NodeMetrics struct {
	ID               string  `json:"id"`
	Degree           int     `json:"degree"`
	DegreeCentrality float64 `json:"degree_centrality"`
	Clustering       float64 `json:"clustering"`
	PageRank         float64 `json:"pagerank"`
	Betweenness      float64 `json:"betweenness"`
	Component        int     `json:"component"`
	Community        int     `json:"community"` // -1 when communities were not computed
}

// Ranked is one entry of the top-k centrality list
type Ranked struct {
	ID               string  `json:"id"`
	FieldID          string  `json:"field_id"`
	Degree           int     `json:"degree"`
	DegreeCentrality float64 `json:"degree_centrality"`
}

// SharedConnection is a value linked to more than one other value
type SharedConnection struct {
	ID      string `json:"id"`
	FieldID string `json:"field_id"`
	Degree  int    `json:"degree"`
}

// CrossFieldValue is a value supplied under more than one field
type CrossFieldValue struct {
	ID     string   `json:"id"`
	Fields []string `json:"fields"`
}

// Result is the complete metrics output. Nodes follow graph insertion order.
type Result struct {
	Nodes             []NodeMetrics      `json:"nodes"`
	NodeCount         int                `json:"node_count"`
	EdgeCount         int                `json:"edge_count"`
	Density           float64            `json:"density"`
	ComponentCount    int                `json:"component_count"`
	Components        [][]string         `json:"components"`
	AverageClustering float64            `json:"average_clustering"`
	CommunityMethod   string             `json:"community_method,omitempty"`
	CommunityCount    *int               `json:"community_count"`
	Modularity        *float64           `json:"modularity"`
	Communities       [][]string         `json:"communities,omitempty"`
	TopK              []Ranked           `json:"top_k"`
	SharedConnections []SharedConnection `json:"shared_connections"`
	CrossFieldValues  []CrossFieldValue  `json:"cross_field_values"`
	RuntimeMS         int64              `json:"runtime_ms"`

	byID map[string]int
}

// Node returns the metrics of one value
func (r *Result) Node(id string) (NodeMetrics, bool) {
	i, exists := r.byID[id]
	if !exists {
		return NodeMetrics{}, false
	}
	return r.Nodes[i], true
}

// Compute runs every measure over g
func Compute(ctx context.Context, g *linkage.Graph, opts Options) (*Result, error) {
	startTime := time.Now()
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	if g == nil {
		return nil, fmt.Errorf("graph is nil")
	}

	n := g.NodeCount()
	nodes := g.Nodes()
	result := &Result{
		Nodes:             make([]NodeMetrics, n),
		NodeCount:         n,
		EdgeCount:         g.EdgeCount(),
		Density:           Density(g),
		Components:        [][]string{},
		TopK:              []Ranked{},
		SharedConnections: []SharedConnection{},
		CrossFieldValues:  []CrossFieldValue{},
		byID:              make(map[string]int, n),
	}

	centrality := DegreeCentrality(g)
	for i, node := range nodes {
		result.byID[node.ID] = i
		result.Nodes[i] = NodeMetrics{
			ID:               node.ID,
			Degree:           g.Degree(node.ID),
			DegreeCentrality: centrality[i],
			Community:        -1,
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clustering := Clustering(g)
	result.AverageClustering = AverageClustering(clustering)
	for i := range result.Nodes {
		result.Nodes[i].Clustering = clustering[i]
	}

	components := ConnectedComponents(g)
	result.ComponentCount = len(components)
	for cid, members := range components {
		ids := make([]string, len(members))
		for k, idx := range members {
			ids[k] = nodes[idx].ID
			result.Nodes[idx].Component = cid
		}
		result.Components = append(result.Components, ids)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	partition, err := detectCommunities(g, opts)
	if err != nil {
		return nil, fmt.Errorf("community detection failed: %w", err)
	}
	if partition != nil {
		result.CommunityMethod = string(communityMethod(opts))
		count := len(partition.Communities)
		q := partition.Modularity
		result.CommunityCount = &count
		result.Modularity = &q
		result.Communities = make([][]string, count)
		for cid, members := range partition.Communities {
			ids := make([]string, len(members))
			for k, idx := range members {
				ids[k] = nodes[idx].ID
				result.Nodes[idx].Community = cid
			}
			result.Communities[cid] = ids
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pagerank := PageRank(g)
	betweenness := Betweenness(g)
	for i := range result.Nodes {
		result.Nodes[i].PageRank = pagerank[i]
		result.Nodes[i].Betweenness = betweenness[i]
	}

	result.TopK = TopK(g, centrality, opts.TopK)
	result.SharedConnections = SharedConnections(g)
	result.CrossFieldValues = CrossFieldValues(g)
	result.RuntimeMS = time.Since(startTime).Milliseconds()

	logger.Debug().
		Int("nodes", result.NodeCount).
		Int("edges", result.EdgeCount).
		Int("components", result.ComponentCount).
		Bool("communities_computed", result.CommunityCount != nil).
		Int64("runtime_ms", result.RuntimeMS).
		Msg("Metrics computed")

	return result, nil
}

func communityMethod(opts Options) models.CommunityMethod {
	if opts.Community == "" {
		return models.CommunityGreedy
	}
	return opts.Community
}

func detectCommunities(g *linkage.Graph, opts Options) (*Partition, error) {
	switch method := communityMethod(opts); method {
	case models.CommunityGreedy:
		return GreedyModularity(g)
	case models.CommunityLouvain:
		return Louvain(g, opts.Seed)
	default:
		return nil, fmt.Errorf("unknown community method: %s", method)
	}
}

// Density is 2|E| / (|V|(|V|-1)), zero for graphs with fewer than two nodes
func Density(g *linkage.Graph) float64 {
	n := g.NodeCount()
	if n <= 1 {
		return 0
	}
	return 2 * float64(g.EdgeCount()) / (float64(n) * float64(n-1))
}
