// Package result joins a linkage graph, its metrics and its layout into the
// flat response handed to the presentation layer. Nothing is computed here
// beyond the join itself.
package result

import (
	"github.com/gilchrisn/linkage-graph-service/pkg/layout"
	"github.com/gilchrisn/linkage-graph-service/pkg/linkage"
	"github.com/gilchrisn/linkage-graph-service/pkg/metrics"
	"github.com/gilchrisn/linkage-graph-service/pkg/models"
)

// NodeRow is one node with every attribute the presentation layer draws
type NodeRow struct {
	ID               string   `json:"id"`
	FieldID          string   `json:"field_id"`
	Fields           []string `json:"fields"`
	Degree           int      `json:"degree"`
	DegreeCentrality float64  `json:"degree_centrality"`
	Clustering       float64  `json:"clustering"`
	PageRank         float64  `json:"pagerank"`
	Betweenness      float64  `json:"betweenness"`
	Component        int      `json:"component"`
	Community        int      `json:"community"`
	X                float64  `json:"x"`
	Y                float64  `json:"y"`
}

// EdgeRow is one co-occurrence edge
type EdgeRow struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Weight int    `json:"weight"`
}

// Summary holds the graph-level numbers
type Summary struct {
	NodeCount         int              `json:"node_count"`
	EdgeCount         int              `json:"edge_count"`
	RecordCount       int              `json:"record_count"`
	Density           float64          `json:"density"`
	ComponentCount    int              `json:"component_count"`
	AverageClustering float64          `json:"average_clustering"`
	CommunityMethod   string           `json:"community_method,omitempty"`
	CommunityCount    *int             `json:"community_count"`
	Modularity        *float64         `json:"modularity"`
	TopK              []metrics.Ranked `json:"top_k"`
	Empty             bool             `json:"empty"`
	Degenerate        bool             `json:"degenerate"`
}

// FieldSummary is a FieldSpec with the number of normalized values supplied
type FieldSummary struct {
	models.FieldSpec
	ValueCount int `json:"value_count"`
}

// LayoutInfo describes how the coordinates were produced
type LayoutInfo struct {
	Algorithm  models.LayoutAlgorithm `json:"algorithm"`
	Iterations int                    `json:"iterations"`
	Truncated  bool                   `json:"truncated"`
}

// Response is the complete, serializable outcome of one analysis
type Response struct {
	Nodes             []NodeRow                  `json:"nodes"`
	Edges             []EdgeRow                  `json:"edges"`
	Summary           Summary                    `json:"summary"`
	Fields            []FieldSummary             `json:"fields"`
	Components        [][]string                 `json:"components"`
	Communities       [][]string                 `json:"communities,omitempty"`
	SharedConnections []metrics.SharedConnection `json:"shared_connections"`
	CrossFieldValues  []metrics.CrossFieldValue  `json:"cross_field_values"`
	Layout            LayoutInfo                 `json:"layout"`
}

// Node returns the row of one value
func (r *Response) Node(id string) (NodeRow, bool) {
	for _, row := range r.Nodes {
		if row.ID == id {
			return row, true
		}
	}
	return NodeRow{}, false
}

// Assemble joins the stage outputs. fields carries the normalized values per
// field so the response can report how much data each field contributed.
// A nil layout leaves every coordinate at the origin.
func Assemble(specs []models.FieldSpec, fields map[string][]string, g *linkage.Graph, m *metrics.Result, l *layout.Result) *Response {
	resp := &Response{
		Nodes:             make([]NodeRow, 0, g.NodeCount()),
		Edges:             make([]EdgeRow, 0, g.EdgeCount()),
		Fields:            make([]FieldSummary, len(specs)),
		Components:        m.Components,
		Communities:       m.Communities,
		SharedConnections: m.SharedConnections,
		CrossFieldValues:  m.CrossFieldValues,
		Summary: Summary{
			NodeCount:         m.NodeCount,
			EdgeCount:         m.EdgeCount,
			RecordCount:       g.Rows(),
			Density:           m.Density,
			ComponentCount:    m.ComponentCount,
			AverageClustering: m.AverageClustering,
			CommunityMethod:   m.CommunityMethod,
			CommunityCount:    m.CommunityCount,
			Modularity:        m.Modularity,
			TopK:              m.TopK,
			Empty:             g.IsEmpty(),
			Degenerate:        g.EdgeCount() == 0,
		},
	}

	for i, spec := range specs {
		resp.Fields[i] = FieldSummary{FieldSpec: spec, ValueCount: len(fields[spec.FieldID])}
	}

	for _, node := range g.Nodes() {
		row := NodeRow{
			ID:      node.ID,
			FieldID: node.FieldID,
			Fields:  node.Fields,
		}
		if nm, ok := m.Node(node.ID); ok {
			row.Degree = nm.Degree
			row.DegreeCentrality = nm.DegreeCentrality
			row.Clustering = nm.Clustering
			row.PageRank = nm.PageRank
			row.Betweenness = nm.Betweenness
			row.Component = nm.Component
			row.Community = nm.Community
		}
		if l != nil {
			if pos, ok := l.Position(node.ID); ok {
				row.X, row.Y = pos.X, pos.Y
			}
		}
		resp.Nodes = append(resp.Nodes, row)
	}

	for _, edge := range g.Edges() {
		resp.Edges = append(resp.Edges, EdgeRow{Source: edge.From, Target: edge.To, Weight: edge.Weight})
	}

	if l != nil {
		resp.Layout = LayoutInfo{Algorithm: l.Algorithm, Iterations: l.Iterations, Truncated: l.Truncated}
	}

	return resp
}
