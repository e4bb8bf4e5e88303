package mujou

import (
	"math"
	"testing"
)

func TestPointDist(t *testing.T) {
	a := Point{X: 0, Y: 0}
	b := Point{X: 3, Y: 4}
	if d := a.Dist(b); d != 5 {
		t.Errorf("expected distance 5, got %v", d)
	}
}

func TestPointIsNaN(t *testing.T) {
	if (Point{X: 1, Y: 2}).IsNaN() {
		t.Error("finite point reported as NaN")
	}
	if !(Point{X: math.NaN(), Y: 0}).IsNaN() {
		t.Error("NaN point not detected")
	}
}

func TestPointBitsIdentity(t *testing.T) {
	a := Point{X: 1.5, Y: -2.25}
	b := Point{X: 1.5, Y: -2.25}
	if a.bits() != b.bits() {
		t.Error("bit-identical points produced different bits() keys")
	}
	c := Point{X: 1.5 + 1e-12, Y: -2.25}
	if a.bits() == c.bits() {
		t.Error("near-equal but distinct points collided under bits()")
	}
}

func TestPolylineDrawable(t *testing.T) {
	if (Polyline{}).Drawable() {
		t.Error("empty polyline reported drawable")
	}
	if (Polyline{Points: []Point{{X: 0, Y: 0}}}).Drawable() {
		t.Error("single-point polyline reported drawable")
	}
	if !(Polyline{Points: []Point{{X: 0, Y: 0}, {X: 1, Y: 0}}}).Drawable() {
		t.Error("two-point polyline not reported drawable")
	}
}

func TestPolylineLength(t *testing.T) {
	p := Polyline{Points: []Point{{X: 0, Y: 0}, {X: 3, Y: 4}, {X: 3, Y: 8}}}
	if l := p.Length(); l != 9 {
		t.Errorf("expected length 9, got %v", l)
	}
}

func TestPolylineBoundingBox(t *testing.T) {
	_, _, ok := (Polyline{}).BoundingBox()
	if ok {
		t.Error("empty polyline reported a bounding box")
	}

	p := Polyline{Points: []Point{{X: -1, Y: 5}, {X: 4, Y: -2}, {X: 0, Y: 0}}}
	min, max, ok := p.BoundingBox()
	if !ok {
		t.Fatal("expected a bounding box")
	}
	if min != (Point{X: -1, Y: -2}) || max != (Point{X: 4, Y: 5}) {
		t.Errorf("unexpected bounding box: min=%v max=%v", min, max)
	}
}

func TestPolylineReversed(t *testing.T) {
	p := Polyline{Points: []Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}}}
	r := p.Reversed()
	for i, pt := range r.Points {
		if pt != p.Points[len(p.Points)-1-i] {
			t.Errorf("reversed point %d mismatch: got %v", i, pt)
		}
	}
	// original must be untouched.
	if p.Points[0] != (Point{X: 0, Y: 0}) {
		t.Error("Reversed mutated the original polyline")
	}
}

func TestDimensionsCenter(t *testing.T) {
	d := Dimensions{W: 40, H: 20}
	if c := d.Center(); c != (Point{X: 20, Y: 10}) {
		t.Errorf("expected center (20,10), got %v", c)
	}
}

func TestDimensionsMaskRadius(t *testing.T) {
	d := Dimensions{W: 40, H: 40}
	got := d.MaskRadius(0.75)
	want := math.Hypot(40, 40) * 0.75 / 2
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("expected radius %v, got %v", want, got)
	}
}

func TestDimensionsMaskRectHalfDims(t *testing.T) {
	d := Dimensions{W: 100, H: 50}
	longW, shortW := d.MaskRectHalfDims(1.0, 2.0, true)
	if longW <= shortW {
		t.Errorf("landscape half-width should exceed half-height: got w=%v h=%v", longW, shortW)
	}
	shortH, longH := d.MaskRectHalfDims(1.0, 2.0, false)
	if longH <= shortH {
		t.Errorf("portrait half-height should exceed half-width: got w=%v h=%v", shortH, longH)
	}
}
