package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilchrisn/linkage-graph-service/pkg/models"
)

func communityOf(t *testing.T, r *Result, id string) int {
	t.Helper()
	node, ok := r.Node(id)
	require.True(t, ok, id)
	return node.Community
}

func TestLouvainTwoTriangles(t *testing.T) {
	g := twoTriangles()

	partition, err := Louvain(g, 42)
	require.NoError(t, err)
	require.NotNil(t, partition)

	assert.Equal(t, [][]int{{0, 1, 2}, {3, 4, 5}}, partition.Communities)
	assert.InDelta(t, 10.0/28.0, partition.Modularity, tolerance)
	assert.GreaterOrEqual(t, partition.Levels, 1)
}

func TestLouvainDeterministic(t *testing.T) {
	g := edgeGraph([][2]string{
		{"a", "b"}, {"a", "c"}, {"b", "c"}, {"c", "d"},
		{"d", "e"}, {"e", "f"}, {"d", "f"}, {"f", "g"},
		{"g", "h"}, {"h", "i"}, {"g", "i"}, {"i", "a"},
	})

	first, err := Louvain(g, 7)
	require.NoError(t, err)
	second, err := Louvain(g, 7)
	require.NoError(t, err)

	assert.Equal(t, first.Communities, second.Communities)
	assert.Equal(t, first.Modularity, second.Modularity)
	assert.Greater(t, first.Modularity, 0.0)

	covered := 0
	for _, members := range first.Communities {
		covered += len(members)
	}
	assert.Equal(t, g.NodeCount(), covered)
}

func TestLouvainEdgeless(t *testing.T) {
	g := build(map[string][]string{"A": {"1", "2"}}, "A")

	partition, err := Louvain(g, 42)
	require.NoError(t, err)
	assert.Nil(t, partition)
}

func TestComputeWithLouvain(t *testing.T) {
	r, err := Compute(context.Background(), twoTriangles(), Options{Community: models.CommunityLouvain, Seed: 3})
	require.NoError(t, err)

	require.NotNil(t, r.CommunityCount)
	assert.Equal(t, 2, *r.CommunityCount)
	assert.Equal(t, "louvain", r.CommunityMethod)
	assert.Equal(t, communityOf(t, r, "a"), communityOf(t, r, "c"))
	assert.Equal(t, communityOf(t, r, "d"), communityOf(t, r, "f"))
	assert.NotEqual(t, communityOf(t, r, "c"), communityOf(t, r, "d"))

	greedy := compute(t, twoTriangles(), 0)
	assert.Equal(t, "greedy", greedy.CommunityMethod)
	assert.InDelta(t, *greedy.Modularity, *r.Modularity, tolerance)
}

func TestComputeUnknownCommunityMethod(t *testing.T) {
	_, err := Compute(context.Background(), twoTriangles(), Options{Community: "spectral"})
	assert.Error(t, err)
}

func TestLevelGraphAggregate(t *testing.T) {
	lg := newLevelGraph(twoTriangles())
	next, mapping := lg.aggregate([]int{0, 0, 0, 3, 3, 3})

	assert.Equal(t, []int{0, 0, 0, 1, 1, 1}, mapping)
	assert.Equal(t, [][]int{{0, 1}, {0, 1}}, next.neighbors)
	assert.Equal(t, [][]float64{{3, 1}, {1, 3}}, next.weights)
	assert.Equal(t, []float64{7, 7}, next.degree)
	assert.Equal(t, lg.total, next.total)
}
