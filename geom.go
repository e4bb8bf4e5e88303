package mujou

import (
	"math"

	"github.com/mujou/mujou-go/utils"
)

// Point is a single location in image-pixel coordinates: origin top-left,
// +x right, +y down. Copy-by-value, as with the teacher's Seam{X, Y int}.
type Point struct {
	X float64
	Y float64
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return math.Hypot(dx, dy)
}

// IsNaN reports whether either coordinate of p is NaN.
func (p Point) IsNaN() bool {
	return math.IsNaN(p.X) || math.IsNaN(p.Y)
}

// bits returns the bit-exact identity of p, used by the MST joiner for
// node lookup. Two points with bit-identical coordinates are the same
// graph node; near-equal but not bit-equal points are distinct until
// explicitly snapped (see join_mst.go).
func (p Point) bits() [2]uint64 {
	return [2]uint64{math.Float64bits(p.X), math.Float64bits(p.Y)}
}

// Polyline is an ordered sequence of Points. The order is semantic:
// reversing a Polyline changes what it represents. A Polyline with fewer
// than two points is legal but carries no drawable segment. A well-formed
// Polyline never contains a NaN point.
type Polyline struct {
	Points []Point
}

// NewPolyline wraps pts as a Polyline without copying.
func NewPolyline(pts []Point) Polyline {
	return Polyline{Points: pts}
}

// Len returns the number of points.
func (pl Polyline) Len() int {
	return len(pl.Points)
}

// Drawable reports whether the polyline has at least one segment.
func (pl Polyline) Drawable() bool {
	return len(pl.Points) >= 2
}

// Length returns the total arc length of the polyline.
func (pl Polyline) Length() float64 {
	var total float64
	for i := 1; i < len(pl.Points); i++ {
		total += pl.Points[i-1].Dist(pl.Points[i])
	}
	return total
}

// BoundingBox returns the axis-aligned bounding box of the polyline's
// points. ok is false for an empty polyline.
func (pl Polyline) BoundingBox() (min, max Point, ok bool) {
	if len(pl.Points) == 0 {
		return Point{}, Point{}, false
	}
	min, max = pl.Points[0], pl.Points[0]
	for _, p := range pl.Points[1:] {
		min.X = utils.Min(min.X, p.X)
		min.Y = utils.Min(min.Y, p.Y)
		max.X = utils.Max(max.X, p.X)
		max.Y = utils.Max(max.Y, p.Y)
	}
	return min, max, true
}

// Reversed returns a new Polyline with point order reversed.
func (pl Polyline) Reversed() Polyline {
	n := len(pl.Points)
	out := make([]Point, n)
	for i, p := range pl.Points {
		out[n-1-i] = p
	}
	return Polyline{Points: out}
}

// Dimensions describes a raster's extent in pixels. Both fields are >= 1
// for any Dimensions produced from a successfully decoded image.
type Dimensions struct {
	W uint32
	H uint32
}

// ShorterDim returns the smaller of width and height.
func (d Dimensions) ShorterDim() uint32 {
	return utils.Min(d.W, d.H)
}

// MaskRadius returns hypot(w, h) * scale / 2, the default circular-mask
// radius for a given scale factor.
func (d Dimensions) MaskRadius(scale float64) float64 {
	return math.Hypot(float64(d.W), float64(d.H)) * scale / 2
}

// MaskRectHalfDims returns the half-width/half-height of a rectangle mask
// derived from scale, aspect ratio and orientation. aspect >= 1 always
// describes the ratio of the long side to the short side; landscape
// decides whether the long side runs along X or Y.
func (d Dimensions) MaskRectHalfDims(scale, aspect float64, landscape bool) (halfW, halfH float64) {
	shorter := float64(d.ShorterDim()) * scale
	short := shorter / 2
	long := short * aspect
	if landscape {
		return long, short
	}
	return short, long
}

// Center returns the image-space center point of a raster with the given
// dimensions.
func (d Dimensions) Center() Point {
	return Point{X: float64(d.W) / 2, Y: float64(d.H) / 2}
}
