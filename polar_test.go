package mujou

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func circleMaskConfig() (PipelineConfig, Dimensions) {
	cfg := NewPipelineConfig()
	cfg.MaskMode = MaskCircle
	cfg.MaskScale = 1.0
	// Dimensions chosen so MaskRadius(1.0) = hypot(200,200)/2*1.0 doesn't
	// equal 100 exactly; instead we rely on a square image where scale
	// 1.0 over a 200x200 image and MaskAspectRatio default gives radius
	// hypot(200,200)/2 = ~141.4. The convention test only needs the mask
	// to be a Circle centered at the image's own center; see
	// TestProjectPolarConvention below for the exact-radius-100 case.
	return cfg, Dimensions{W: 200, H: 200}
}

func TestProjectPolarConvention(t *testing.T) {
	// Mask Circle at origin radius 100 (spec.md §8 scenario 8).
	p1 := Polyline{Points: []Point{{X: 0, Y: 100}}}
	out1 := projectPolarAroundOrigin(p1, Point{X: 0, Y: 0}, 100)
	assert.InDelta(t, 0.0, out1[0].Theta, 1e-9)
	assert.InDelta(t, 1.0, out1[0].Rho, 1e-9)

	p2 := Polyline{Points: []Point{{X: 100, Y: 0}}}
	out2 := projectPolarAroundOrigin(p2, Point{X: 0, Y: 0}, 100)
	assert.InDelta(t, math.Pi/2, out2[0].Theta, 1e-9)
	assert.InDelta(t, 1.0, out2[0].Rho, 1e-9)
}

func TestProjectPolarEmptyPolyline(t *testing.T) {
	cfg, dims := circleMaskConfig()
	out := projectPolar(Polyline{}, cfg, dims)
	assert.Nil(t, out)
}

func TestProjectPolarSinglePointStillEmits(t *testing.T) {
	cfg, dims := circleMaskConfig()
	out := projectPolar(Polyline{Points: []Point{{X: 10, Y: 10}}}, cfg, dims)
	assert.Len(t, out, 1)
}

func TestProjectPolarRhoIsClamped(t *testing.T) {
	cfg, dims := circleMaskConfig()
	// A point far outside the mask radius should still clamp to 1.0.
	out := projectPolar(Polyline{Points: []Point{{X: 10000, Y: 10000}}}, cfg, dims)
	assert.Equal(t, 1.0, out[0].Rho)
}

func TestProjectPolarOriginReuseAtZeroDistance(t *testing.T) {
	cfg, dims := circleMaskConfig()
	center := dims.Center()
	// First point is exactly the origin; second is off-axis.
	out := projectPolar(Polyline{Points: []Point{center, {X: center.X + 10, Y: center.Y}}}, cfg, dims)
	assert.Equal(t, 0.0, out[0].Theta, "the very first point at dist 0 should default to theta 0")
}

func TestProjectPolarRectangleFallsBackToImageCenter(t *testing.T) {
	cfg := NewPipelineConfig()
	cfg.MaskMode = MaskRectangle
	dims := Dimensions{W: 100, H: 50}

	origin, radius := polarOrigin(cfg, dims)
	assert.Equal(t, dims.Center(), origin)
	assert.InDelta(t, math.Hypot(100, 50)/2, radius, 1e-9)
}

func TestProjectPolarUnwindingMonotonic(t *testing.T) {
	// 5 counter-clockwise samples around a unit circle at angles
	// 0, pi/2, pi, 3pi/2, 2pi-equivalent (back near start).
	center := Point{X: 0, Y: 0}
	pts := make([]Point, 5)
	for i := 0; i < 5; i++ {
		a := float64(i) * math.Pi / 2
		// Convert a conventional CCW angle into this package's (dx,dy)
		// sand-table convention so the samples trace the circle CCW as
		// image-space (x,y) coordinates.
		pts[i] = Point{X: math.Sin(a), Y: math.Cos(a)}
	}
	out := projectPolarAroundOrigin(Polyline{Points: pts}, center, 1.0)

	for i := 1; i < len(out); i++ {
		assert.Greater(t, out[i].Theta, out[i-1].Theta, "CCW sampling should unwind to strictly increasing theta")
	}
	assert.InDelta(t, out[0].Theta+2*math.Pi, out[len(out)-1].Theta, 0.02)
}

func TestProjectPolarUnwindingClockwise(t *testing.T) {
	center := Point{X: 0, Y: 0}
	pts := make([]Point, 5)
	for i := 0; i < 5; i++ {
		a := -float64(i) * math.Pi / 2
		pts[i] = Point{X: math.Sin(a), Y: math.Cos(a)}
	}
	out := projectPolarAroundOrigin(Polyline{Points: pts}, center, 1.0)

	for i := 1; i < len(out); i++ {
		assert.Less(t, out[i].Theta, out[i-1].Theta, "CW sampling should unwind to strictly decreasing theta")
	}
}
