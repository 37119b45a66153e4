package layout

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilchrisn/linkage-graph-service/pkg/linkage"
	"github.com/gilchrisn/linkage-graph-service/pkg/models"
	"github.com/gilchrisn/linkage-graph-service/pkg/normalize"
)

func buildGraph(edges [][2]string) *linkage.Graph {
	a := make([]string, len(edges))
	b := make([]string, len(edges))
	for i, e := range edges {
		a[i], b[i] = e[0], e[1]
	}
	specs := []models.FieldSpec{{FieldID: "A"}, {FieldID: "B"}}
	return linkage.Build(specs, map[string][]string{"A": a, "B": b})
}

func sampleGraph() *linkage.Graph {
	req := linkage.SampleRequest()
	values := normalize.New(normalize.Options{}).Fields(req.Values, req.Text)
	return linkage.Build(req.Fields, values)
}

func computeLayout(t *testing.T, g *linkage.Graph, cfg Config) *Result {
	t.Helper()
	result, err := Compute(context.Background(), g, cfg)
	require.NoError(t, err)
	return result
}

func assertNormalized(t *testing.T, r *Result) {
	t.Helper()
	limit := 0.0
	for _, p := range r.Positions {
		assert.False(t, math.IsNaN(p.X) || math.IsNaN(p.Y), "NaN coordinate for %s", p.ID)
		assert.LessOrEqual(t, math.Abs(p.X), 1+1e-9)
		assert.LessOrEqual(t, math.Abs(p.Y), 1+1e-9)
		limit = math.Max(limit, math.Max(math.Abs(p.X), math.Abs(p.Y)))
	}
	if len(r.Positions) > 1 {
		assert.InDelta(t, 1.0, limit, 1e-9)
	}
}

func TestTrivialGraphs(t *testing.T) {
	for _, algorithm := range models.SupportedLayouts() {
		t.Run(string(algorithm), func(t *testing.T) {
			empty := computeLayout(t, linkage.NewGraph(), DefaultConfig(algorithm))
			assert.Empty(t, empty.Positions)
			assert.Equal(t, 0, empty.Iterations)

			single := linkage.Build([]models.FieldSpec{{FieldID: "A"}}, map[string][]string{"A": {"only"}})
			one := computeLayout(t, single, DefaultConfig(algorithm))
			require.Len(t, one.Positions, 1)
			assert.Equal(t, Position{ID: "only", X: 0, Y: 0}, one.Positions[0])
			assert.Equal(t, 0, one.Iterations)
			assert.False(t, one.Truncated)
		})
	}
}

func TestCircularIsDeterministic(t *testing.T) {
	g := sampleGraph()
	first := computeLayout(t, g, DefaultConfig(models.LayoutCircular))
	second := computeLayout(t, g, DefaultConfig(models.LayoutCircular))

	assert.Equal(t, first.Positions, second.Positions)
	assertNormalized(t, first)

	// insertion order runs counter-clockwise from angle zero
	p0 := first.Positions[0]
	assert.InDelta(t, 1.0, p0.X, 1e-9)
	assert.InDelta(t, 0.0, p0.Y, 1e-9)
	for _, p := range first.Positions {
		assert.InDelta(t, 1.0, math.Hypot(p.X, p.Y), 1e-9)
	}
}

func TestSpringSeeded(t *testing.T) {
	g := sampleGraph()
	cfg := DefaultConfig(models.LayoutSpring)
	cfg.Seed = 7

	first := computeLayout(t, g, cfg)
	second := computeLayout(t, g, cfg)
	assert.Equal(t, first.Positions, second.Positions)
	assert.Equal(t, DefaultSpringIterations, first.Iterations)
	assert.False(t, first.Truncated)
	assertNormalized(t, first)

	cfg.Seed = 8
	other := computeLayout(t, g, cfg)
	assert.NotEqual(t, first.Positions, other.Positions)
}

func TestSpringPullsNeighborsCloser(t *testing.T) {
	// two disjoint edges: partners end up closer than strangers
	g := buildGraph([][2]string{{"a", "b"}, {"c", "d"}})
	cfg := DefaultConfig(models.LayoutSpring)
	cfg.Iterations = 500
	cfg.Spacing = 0.5
	r := computeLayout(t, g, cfg)

	dist := func(x, y string) float64 {
		p, _ := r.Position(x)
		q, _ := r.Position(y)
		return math.Hypot(p.X-q.X, p.Y-q.Y)
	}
	assert.Less(t, dist("a", "b"), dist("a", "c"))
	assert.Less(t, dist("c", "d"), dist("b", "d"))
}

func TestSpringZeroIterations(t *testing.T) {
	g := sampleGraph()
	cfg := DefaultConfig(models.LayoutSpring)
	cfg.Iterations = 0

	r := computeLayout(t, g, cfg)
	assert.Equal(t, 0, r.Iterations)
	assert.False(t, r.Truncated)
	assertNormalized(t, r)
}

func TestKamadaKawai(t *testing.T) {
	g := buildGraph([][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}, {"d", "e"}})
	first := computeLayout(t, g, DefaultConfig(models.LayoutKamadaKawai))
	second := computeLayout(t, g, DefaultConfig(models.LayoutKamadaKawai))

	assert.Equal(t, first.Positions, second.Positions)
	assert.Greater(t, first.Iterations, 0)
	assertNormalized(t, first)

	// path ends are the furthest apart
	a, _ := first.Position("a")
	b, _ := first.Position("b")
	e, _ := first.Position("e")
	assert.Greater(t, math.Hypot(a.X-e.X, a.Y-e.Y), math.Hypot(a.X-b.X, a.Y-b.Y))
}

func TestKamadaKawaiDisconnected(t *testing.T) {
	g := buildGraph([][2]string{{"a", "b"}, {"c", "d"}})
	r := computeLayout(t, g, DefaultConfig(models.LayoutKamadaKawai))
	assertNormalized(t, r)
}

func TestMDS(t *testing.T) {
	g := buildGraph([][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}})
	first := computeLayout(t, g, DefaultConfig(models.LayoutMDS))
	second := computeLayout(t, g, DefaultConfig(models.LayoutMDS))

	assert.Equal(t, first.Positions, second.Positions)
	assertNormalized(t, first)

	a, _ := first.Position("a")
	b, _ := first.Position("b")
	d, _ := first.Position("d")
	assert.Greater(t, math.Hypot(a.X-d.X, a.Y-d.Y), math.Hypot(a.X-b.X, a.Y-b.Y))
}

func TestMDSPair(t *testing.T) {
	g := buildGraph([][2]string{{"a", "b"}})
	r := computeLayout(t, g, DefaultConfig(models.LayoutMDS))

	a, _ := r.Position("a")
	b, _ := r.Position("b")
	assert.InDelta(t, 2.0, math.Hypot(a.X-b.X, a.Y-b.Y), 1e-9)
}

func TestInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"unknown algorithm", func(c *Config) { c.Algorithm = "hierarchical" }, "visualization.layout"},
		{"empty algorithm", func(c *Config) { c.Algorithm = "" }, "visualization.layout"},
		{"negative spacing", func(c *Config) { c.Spacing = -1 }, "visualization.spacing"},
		{"NaN spacing", func(c *Config) { c.Spacing = math.NaN() }, "visualization.spacing"},
		{"negative iterations", func(c *Config) { c.Iterations = -5 }, "visualization.iterations"},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, "visualization.timeout_ms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig(models.LayoutSpring)
			tt.mutate(&cfg)

			_, err := Compute(context.Background(), linkage.NewGraph(), cfg)
			require.Error(t, err)

			var verrs models.ValidationErrors
			require.True(t, errors.As(err, &verrs))
			assert.Contains(t, verrs.Fields(), tt.field)
		})
	}
}

func TestCancelledContextTruncates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := sampleGraph()

	for _, algorithm := range []models.LayoutAlgorithm{models.LayoutSpring, models.LayoutKamadaKawai} {
		t.Run(string(algorithm), func(t *testing.T) {
			r, err := Compute(ctx, g, DefaultConfig(algorithm))
			require.NoError(t, err)
			assert.True(t, r.Truncated)
			assert.Equal(t, 0, r.Iterations)
			assert.Len(t, r.Positions, g.NodeCount())
			assertNormalized(t, r)
		})
	}
}

func TestExpiredTimeoutTruncates(t *testing.T) {
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Millisecond))
	defer cancel()

	cfg := DefaultConfig(models.LayoutSpring)
	cfg.Iterations = 100000
	r, err := Compute(ctx, sampleGraph(), cfg)
	require.NoError(t, err)
	assert.True(t, r.Truncated)
	assert.Less(t, r.Iterations, cfg.Iterations)
}

func TestRemainingRuntime(t *testing.T) {
	limit, ok := remaining(context.Background(), time.Time{})
	assert.True(t, ok)
	assert.Zero(t, limit)

	limit, ok = remaining(context.Background(), time.Now().Add(time.Hour))
	assert.True(t, ok)
	assert.Greater(t, limit, time.Duration(0))

	_, ok = remaining(context.Background(), time.Now().Add(-time.Nanosecond))
	assert.False(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok = remaining(ctx, time.Time{})
	assert.False(t, ok)
}

func TestKamadaKawaiPastDeadlineKeepsCircle(t *testing.T) {
	g := sampleGraph()
	cfg := DefaultConfig(models.LayoutKamadaKawai)

	r, err := kamadaKawai(context.Background(), g, cfg, time.Now().Add(-time.Second))
	require.NoError(t, err)
	assert.True(t, r.truncated)
	assert.Equal(t, 0, r.iterations)
	assert.Equal(t, circle(g.NodeCount()), r.points)
}

func TestShortestPaths(t *testing.T) {
	g := buildGraph([][2]string{{"a", "b"}, {"b", "c"}, {"x", "y"}})
	dist := shortestPaths(g)

	ia, _ := g.IndexOf("a")
	ic, _ := g.IndexOf("c")
	ix, _ := g.IndexOf("x")
	assert.Equal(t, 2.0, dist.At(ia, ic))
	assert.Equal(t, 0.0, dist.At(ia, ia))
	assert.Equal(t, 3.0, dist.At(ia, ix))
	assert.Equal(t, dist.At(ix, ia), dist.At(ia, ix))
}

func TestRescale(t *testing.T) {
	points := []point{{X: 2, Y: 2}, {X: 4, Y: 2}, {X: 3, Y: 3}}
	rescale(points)

	assert.InDelta(t, -1.0, points[0].X, 1e-12)
	assert.InDelta(t, 1.0, points[1].X, 1e-12)
	assert.InDelta(t, 2.0/3.0, points[2].Y, 1e-12)

	same := []point{{X: 5, Y: 5}, {X: 5, Y: 5}}
	rescale(same)
	assert.Equal(t, []point{{}, {}}, same)
}
