package mujou

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func containsPointNear(points []Point, target Point, tol float64) bool {
	for _, p := range points {
		if p.Dist(target) <= tol {
			return true
		}
	}
	return false
}

func TestJoinMstTwoDisjointSegments(t *testing.T) {
	polys := []Polyline{
		{Points: []Point{{X: 0, Y: 0}, {X: 1, Y: 0}}},
		{Points: []Point{{X: 3, Y: 0}, {X: 4, Y: 0}}},
	}
	cfg := NewPipelineConfig()
	cfg.WorkingResolution = 1000

	out, metrics, err := joinMst(polys, cfg, Dimensions{W: 10, H: 10})
	assert.NoError(t, err)

	for _, p := range polys {
		for _, v := range p.Points {
			assert.True(t, containsPointNear(out.Points, v, 1e-6), "missing original vertex %v", v)
		}
	}
	assert.Equal(t, 1, metrics.MstEdgeCount)
	assert.InDelta(t, 2.0, metrics.TotalMstEdgeWeight, 1e-6)
}

func TestJoinMstInteriorSplit(t *testing.T) {
	a := Polyline{Points: []Point{{X: 0, Y: 0}, {X: 100, Y: 0}}}
	b := Polyline{Points: []Point{{X: 50, Y: 5}, {X: 50, Y: 10}}}
	cfg := NewPipelineConfig()
	cfg.WorkingResolution = 1000

	out, _, err := joinMst([]Polyline{a, b}, cfg, Dimensions{W: 100, H: 100})
	assert.NoError(t, err)

	assert.True(t, containsPointNear(out.Points, Point{X: 50, Y: 0}, 1e-6), "missing the split point on A")
	for _, v := range []Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 50, Y: 5}, {X: 50, Y: 10}} {
		assert.True(t, containsPointNear(out.Points, v, 1e-6), "missing original endpoint %v", v)
	}
}

func TestJoinMstEdgeCountIsNMinusOne(t *testing.T) {
	polys := []Polyline{
		{Points: []Point{{X: 0, Y: 0}, {X: 1, Y: 0}}},
		{Points: []Point{{X: 5, Y: 0}, {X: 6, Y: 0}}},
		{Points: []Point{{X: 10, Y: 0}, {X: 11, Y: 0}}},
		{Points: []Point{{X: 15, Y: 0}, {X: 16, Y: 0}}},
	}
	cfg := NewPipelineConfig()
	_, metrics, err := joinMst(polys, cfg, Dimensions{W: 20, H: 20})
	assert.NoError(t, err)
	assert.Equal(t, len(polys)-1, metrics.MstEdgeCount)
}

func TestJoinMstParityAndWeightInvariants(t *testing.T) {
	polys := []Polyline{
		{Points: []Point{{X: 0, Y: 0}, {X: 10, Y: 0}}},
		{Points: []Point{{X: 20, Y: 0}, {X: 30, Y: 0}}},
		{Points: []Point{{X: 0, Y: 20}, {X: 10, Y: 20}}},
	}
	cfg := NewPipelineConfig()
	_, metrics, err := joinMst(polys, cfg, Dimensions{W: 40, H: 40})
	assert.NoError(t, err)

	assert.Contains(t, []int{0, 2}, metrics.OddVerticesAfterFix)
	assert.LessOrEqual(t, metrics.MaxMstEdgeWeight, metrics.TotalMstEdgeWeight)
	assert.GreaterOrEqual(t, metrics.TotalPathLength, metrics.TotalMstEdgeWeight)
	assert.GreaterOrEqual(t, metrics.TotalRetraceDistance, 0.0)
}

func TestJoinMstEveryInputVertexSurvives(t *testing.T) {
	polys := []Polyline{
		{Points: []Point{{X: 0, Y: 0}, {X: 5, Y: 5}, {X: 10, Y: 0}}},
		{Points: []Point{{X: 30, Y: 30}, {X: 35, Y: 35}}},
	}
	cfg := NewPipelineConfig()
	out, _, err := joinMst(polys, cfg, Dimensions{W: 50, H: 50})
	assert.NoError(t, err)

	for _, p := range polys {
		for _, v := range p.Points {
			assert.True(t, containsPointNear(out.Points, v, 1e-6), "missing vertex %v", v)
		}
	}
}

func TestUnionFind(t *testing.T) {
	uf := newUnionFind(4)
	assert.NotEqual(t, uf.Find(0), uf.Find(1))
	uf.Union(0, 1)
	assert.Equal(t, uf.Find(0), uf.Find(1))
	assert.NotEqual(t, uf.Find(0), uf.Find(2))
}

func TestEulerGraphSnapMergesNearbyPoints(t *testing.T) {
	g := newEulerGraph()
	aIdx := g.nodeIndex(g.snap(Point{X: 1.0, Y: 1.0}))
	bIdx := g.nodeIndex(g.snap(Point{X: 1.0 + 1e-12, Y: 1.0}))
	assert.Equal(t, aIdx, bIdx, "points within snapTolerance should map to the same node")

	cIdx := g.nodeIndex(g.snap(Point{X: 5.0, Y: 5.0}))
	assert.NotEqual(t, aIdx, cIdx)
}
