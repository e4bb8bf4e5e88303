package mujou

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinPolylinesEmptyInput(t *testing.T) {
	out, metrics, err := joinPolylines(nil, NewPipelineConfig(), Dimensions{W: 10, H: 10})
	assert.NoError(t, err)
	assert.Equal(t, 0, out.Len())
	assert.Equal(t, JoinQualityMetrics{}, metrics)
}

func TestJoinPolylinesSingleInputIsByteEqual(t *testing.T) {
	p := Polyline{Points: []Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 0}}}
	out, metrics, err := joinPolylines([]Polyline{p}, NewPipelineConfig(), Dimensions{W: 10, H: 10})
	assert.NoError(t, err)
	assert.Equal(t, p.Points, out.Points)
	assert.Equal(t, 0, metrics.MstEdgeCount)
}

func TestJoinStraightLineOrdersByNearestEndpoint(t *testing.T) {
	a := Polyline{Points: []Point{{X: 0, Y: 0}, {X: 1, Y: 0}}}
	b := Polyline{Points: []Point{{X: 10, Y: 0}, {X: 11, Y: 0}}} // far
	c := Polyline{Points: []Point{{X: 2, Y: 0}, {X: 3, Y: 0}}}   // near a's tail

	out := joinStraightLine([]Polyline{a, b, c})
	// a's tail (1,0) is closest to c's start (2,0); c should come before b.
	cIdx, bIdx := -1, -1
	for i, p := range out.Points {
		if p == (Point{X: 2, Y: 0}) {
			cIdx = i
		}
		if p == (Point{X: 10, Y: 0}) {
			bIdx = i
		}
	}
	assert.Greater(t, bIdx, cIdx, "the nearer polyline c should be visited before the farther one b")
}

func TestJoinRetraceVisitsEveryPolyline(t *testing.T) {
	polys := []Polyline{
		{Points: []Point{{X: 0, Y: 0}, {X: 10, Y: 0}}},
		{Points: []Point{{X: 20, Y: 0}, {X: 20, Y: 10}}},
	}
	out, metrics := joinRetrace(polys)
	assert.GreaterOrEqual(t, metrics.TotalRetraceDistance, 0.0)
	assert.Greater(t, metrics.TotalPathLength, 0.0)

	for _, p := range polys {
		for _, v := range p.Points {
			found := false
			for _, o := range out.Points {
				if o == v {
					found = true
					break
				}
			}
			assert.True(t, found, "retrace output missing original vertex %v", v)
		}
	}
}

func TestOverallBoundingBoxCombinesAllPolylines(t *testing.T) {
	polys := []Polyline{
		{Points: []Point{{X: -5, Y: 0}, {X: 0, Y: 0}}},
		{Points: []Point{{X: 0, Y: 0}, {X: 10, Y: 20}}},
	}
	min, max := overallBoundingBox(polys)
	assert.Equal(t, Point{X: -5, Y: 0}, min)
	assert.Equal(t, Point{X: 10, Y: 20}, max)
}
