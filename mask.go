package mujou

import "math"

// MaskShapeKind discriminates the MaskShape sum type.
type MaskShapeKind int

const (
	ShapeCircle MaskShapeKind = iota
	ShapeRectangle
)

// MaskShape is the resolved clipping region: Circle{center, radius} or
// Rectangle{center, half_width, half_height}, per spec.md §3. Resolved
// once from config + dimensions at mask stage.
type MaskShape struct {
	Kind      MaskShapeKind
	Center    Point
	Radius    float64 // Circle only
	HalfWidth float64 // Rectangle only
	HalfHeight float64 // Rectangle only
}

// resolveMaskShape derives a MaskShape from config + dimensions, or
// (zero, false) if masking is off.
func resolveMaskShape(cfg PipelineConfig, dims Dimensions) (MaskShape, bool) {
	center := dims.Center()
	switch cfg.MaskMode {
	case MaskCircle:
		return MaskShape{Kind: ShapeCircle, Center: center, Radius: dims.MaskRadius(cfg.MaskScale)}, true
	case MaskRectangle:
		hw, hh := dims.MaskRectHalfDims(cfg.MaskScale, cfg.MaskAspectRatio, cfg.MaskLandscape)
		return MaskShape{Kind: ShapeRectangle, Center: center, HalfWidth: hw, HalfHeight: hh}, true
	default:
		return MaskShape{}, false
	}
}

// Boundary emits the shape's own boundary as a closed polyline, arc-length
// sampled at ~3px spacing (spec.md §4.5).
func (s MaskShape) Boundary() Polyline {
	switch s.Kind {
	case ShapeCircle:
		return circleBoundary(s.Center, s.Radius)
	default:
		return rectangleBoundary(s.Center, s.HalfWidth, s.HalfHeight)
	}
}

const boundarySampleSpacing = 3.0
const boundaryMinPoints = 8

// circleBoundary samples a circle of the given center/radius at ~3px arc
// spacing, n = max(ceil(2*pi*r/3), 8) points plus a closing duplicate.
func circleBoundary(center Point, radius float64) Polyline {
	n := int(math.Ceil(2 * math.Pi * radius / boundarySampleSpacing))
	if n < boundaryMinPoints {
		n = boundaryMinPoints
	}
	pts := make([]Point, 0, n+1)
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		pts = append(pts, Point{
			X: center.X + radius*math.Cos(theta),
			Y: center.Y + radius*math.Sin(theta),
		})
	}
	pts = append(pts, pts[0])
	return Polyline{Points: pts}
}

// rectangleBoundary walks the four sides of an axis-aligned rectangle at
// ~3px spacing, closing the loop.
func rectangleBoundary(center Point, halfW, halfH float64) Polyline {
	corners := []Point{
		{X: center.X - halfW, Y: center.Y - halfH},
		{X: center.X + halfW, Y: center.Y - halfH},
		{X: center.X + halfW, Y: center.Y + halfH},
		{X: center.X - halfW, Y: center.Y + halfH},
	}
	var pts []Point
	for i := 0; i < 4; i++ {
		a, b := corners[i], corners[(i+1)%4]
		side := a.Dist(b)
		n := int(math.Ceil(side / boundarySampleSpacing))
		if n < 1 {
			n = 1
		}
		for k := 0; k < n; k++ {
			t := float64(k) / float64(n)
			pts = append(pts, lerpPoint(a, b, t))
		}
	}
	if len(pts) < boundaryMinPoints {
		// Resample to guarantee the documented minimum even for a tiny
		// rectangle whose perimeter is short relative to the spacing.
		return resamplePolylineClosed(Polyline{Points: append(pts, corners[0])}, boundaryMinPoints)
	}
	pts = append(pts, pts[0])
	return Polyline{Points: pts}
}

func lerpPoint(a, b Point, t float64) Point {
	return Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}

// resamplePolylineClosed resamples a closed polyline to exactly n evenly
// arc-length-spaced points plus a closing duplicate.
func resamplePolylineClosed(p Polyline, n int) Polyline {
	total := p.Length()
	if total == 0 {
		pts := make([]Point, n+1)
		for i := range pts {
			pts[i] = p.Points[0]
		}
		return Polyline{Points: pts}
	}
	step := total / float64(n)
	out := make([]Point, 0, n+1)
	for i := 0; i < n; i++ {
		out = append(out, pointAtArcLength(p, step*float64(i)))
	}
	out = append(out, out[0])
	return Polyline{Points: out}
}

func pointAtArcLength(p Polyline, target float64) Point {
	var acc float64
	for i := 1; i < len(p.Points); i++ {
		segLen := p.Points[i-1].Dist(p.Points[i])
		if acc+segLen >= target {
			t := 0.0
			if segLen > 0 {
				t = (target - acc) / segLen
			}
			return lerpPoint(p.Points[i-1], p.Points[i], t)
		}
		acc += segLen
	}
	return p.Points[len(p.Points)-1]
}

// ClippedPolyline is a Polyline plus metadata recording whether each
// endpoint was created by intersection with the mask boundary, as opposed
// to being an original contour vertex. Clip-introduced points only ever
// appear at the first or last position.
type ClippedPolyline struct {
	Polyline
	StartClipped bool
	EndClipped   bool
}

// MaskResult is the output of the mask stage: every ClippedPolyline
// covering the portions of the input inside the shape, plus an optional
// boundary polyline.
type MaskResult struct {
	Clipped  []ClippedPolyline
	Boundary *Polyline
}

// AnyClipped reports whether at least one ClippedPolyline has a
// clip-introduced endpoint.
func (m MaskResult) AnyClipped() bool {
	for _, c := range m.Clipped {
		if c.StartClipped || c.EndClipped {
			return true
		}
	}
	return false
}

// All returns every polyline in the result: the clipped polylines first,
// then the boundary if present.
func (m MaskResult) All() []Polyline {
	out := make([]Polyline, 0, len(m.Clipped)+1)
	for _, c := range m.Clipped {
		out = append(out, c.Polyline)
	}
	if m.Boundary != nil {
		out = append(out, *m.Boundary)
	}
	return out
}

// clipMask clips every polyline in polys to shape, and resolves whether a
// boundary polyline should be emitted per cfg.BorderPath (spec.md §4.5).
func clipMask(polys []Polyline, shape MaskShape, border BorderPath) MaskResult {
	var clipped []ClippedPolyline
	for _, p := range polys {
		switch shape.Kind {
		case ShapeCircle:
			clipped = append(clipped, clipCircle(p, shape.Center, shape.Radius)...)
		default:
			clipped = append(clipped, clipRectangle(p, shape)...)
		}
	}

	result := MaskResult{Clipped: clipped}
	switch border {
	case BorderOn:
		b := shape.Boundary()
		result.Boundary = &b
	case BorderAuto:
		if result.AnyClipped() {
			b := shape.Boundary()
			result.Boundary = &b
		}
	}
	return result
}

const insideEpsilon = 1e-9

func insideCircle(p, center Point, radius float64) bool {
	return p.Dist(center) <= radius+insideEpsilon
}

// circleIntersection solves |a + t(b-a) - c|^2 = r^2 for t, returning the
// root in [0,1] closest to a. ok is false if the chord doesn't cross the
// circle within the segment.
func circleIntersection(a, b, center Point, radius float64) (t float64, ok bool) {
	dx, dy := b.X-a.X, b.Y-a.Y
	fx, fy := a.X-center.X, a.Y-center.Y

	aCoef := dx*dx + dy*dy
	bCoef := 2 * (fx*dx + fy*dy)
	cCoef := fx*fx + fy*fy - radius*radius

	disc := bCoef*bCoef - 4*aCoef*cCoef
	if disc < 0 || aCoef == 0 {
		return 0, false
	}
	sqrtDisc := math.Sqrt(disc)
	t1 := (-bCoef - sqrtDisc) / (2 * aCoef)
	t2 := (-bCoef + sqrtDisc) / (2 * aCoef)

	best, bestFound := math.Inf(1), false
	for _, cand := range []float64{t1, t2} {
		if cand >= 0 && cand <= 1 {
			if !bestFound || math.Abs(cand) < math.Abs(best) {
				best, bestFound = cand, true
			}
		}
	}
	if !bestFound {
		return 0, false
	}
	return best, true
}

// clipCircle clips a single polyline against a circle, per spec.md §4.5's
// four vertex-pair cases.
func clipCircle(p Polyline, center Point, radius float64) []ClippedPolyline {
	if len(p.Points) < 2 {
		return nil
	}
	var out []ClippedPolyline
	var current []Point
	startClipped := false

	flush := func(endClipped bool) {
		if len(current) >= 2 {
			out = append(out, ClippedPolyline{
				Polyline:     Polyline{Points: current},
				StartClipped: startClipped,
				EndClipped:   endClipped,
			})
		}
		current = nil
		startClipped = false
	}

	aIn := insideCircle(p.Points[0], center, radius)
	if aIn {
		current = append(current, p.Points[0])
	}

	for i := 1; i < len(p.Points); i++ {
		a, b := p.Points[i-1], p.Points[i]
		bIn := insideCircle(b, center, radius)

		switch {
		case aIn && bIn:
			current = append(current, b)
		case aIn && !bIn:
			if t, ok := circleIntersection(a, b, center, radius); ok {
				current = append(current, lerpPoint(a, b, t))
			}
			flush(true)
		case !aIn && bIn:
			if t, ok := circleIntersection(a, b, center, radius); ok {
				current = append(current, lerpPoint(a, b, t))
				startClipped = true
			}
			current = append(current, b)
		default: // !aIn && !bIn
			if t1, t2, ok := chordCrossesCircle(a, b, center, radius); ok {
				seg := []Point{lerpPoint(a, b, t1), lerpPoint(a, b, t2)}
				out = append(out, ClippedPolyline{
					Polyline:     Polyline{Points: seg},
					StartClipped: true,
					EndClipped:   true,
				})
			}
		}
		aIn = bIn
	}
	flush(false)
	return out
}

// chordCrossesCircle finds both crossing parameters of a fully-outside
// chord that nonetheless passes through the circle.
func chordCrossesCircle(a, b, center Point, radius float64) (t1, t2 float64, ok bool) {
	dx, dy := b.X-a.X, b.Y-a.Y
	fx, fy := a.X-center.X, a.Y-center.Y

	aCoef := dx*dx + dy*dy
	bCoef := 2 * (fx*dx + fy*dy)
	cCoef := fx*fx + fy*fy - radius*radius

	if aCoef == 0 {
		return 0, 0, false
	}
	disc := bCoef*bCoef - 4*aCoef*cCoef
	if disc <= 0 {
		return 0, 0, false
	}
	sqrtDisc := math.Sqrt(disc)
	r1 := (-bCoef - sqrtDisc) / (2 * aCoef)
	r2 := (-bCoef + sqrtDisc) / (2 * aCoef)
	if r1 > r2 {
		r1, r2 = r2, r1
	}
	if r1 < 0 || r2 > 1 {
		return 0, 0, false
	}
	return r1, r2, true
}

// clipRectangle clips a single polyline against an axis-aligned rectangle
// using Liang-Barsky, applying the same clip-metadata discipline as
// clipCircle (spec.md §4.5).
func clipRectangle(p Polyline, shape MaskShape) []ClippedPolyline {
	if len(p.Points) < 2 {
		return nil
	}
	xMin, xMax := shape.Center.X-shape.HalfWidth, shape.Center.X+shape.HalfWidth
	yMin, yMax := shape.Center.Y-shape.HalfHeight, shape.Center.Y+shape.HalfHeight

	inside := func(pt Point) bool {
		return pt.X >= xMin-insideEpsilon && pt.X <= xMax+insideEpsilon &&
			pt.Y >= yMin-insideEpsilon && pt.Y <= yMax+insideEpsilon
	}

	var out []ClippedPolyline
	var current []Point
	startClipped := false

	flush := func(endClipped bool) {
		if len(current) >= 2 {
			out = append(out, ClippedPolyline{
				Polyline:     Polyline{Points: current},
				StartClipped: startClipped,
				EndClipped:   endClipped,
			})
		}
		current = nil
		startClipped = false
	}

	aIn := inside(p.Points[0])
	if aIn {
		current = append(current, p.Points[0])
	}

	for i := 1; i < len(p.Points); i++ {
		a, b := p.Points[i-1], p.Points[i]
		t0, t1, ok := liangBarsky(a, b, xMin, xMax, yMin, yMax)
		bIn := inside(b)

		switch {
		case aIn && bIn:
			current = append(current, b)
		case aIn && !bIn:
			if ok {
				current = append(current, lerpPoint(a, b, t1))
			}
			flush(true)
		case !aIn && bIn:
			if ok {
				current = append(current, lerpPoint(a, b, t0))
				startClipped = true
			}
			current = append(current, b)
		default:
			if ok && t1 > t0 {
				seg := []Point{lerpPoint(a, b, t0), lerpPoint(a, b, t1)}
				out = append(out, ClippedPolyline{
					Polyline:     Polyline{Points: seg},
					StartClipped: true,
					EndClipped:   true,
				})
			}
		}
		aIn = bIn
	}
	flush(false)
	return out
}

// liangBarsky clips segment a-b against the axis-aligned box
// [xMin,xMax]x[yMin,yMax], returning the entry/exit parameters t0<=t1
// within [0,1], or ok=false if the segment misses the box entirely.
func liangBarsky(a, b Point, xMin, xMax, yMin, yMax float64) (t0, t1 float64, ok bool) {
	dx, dy := b.X-a.X, b.Y-a.Y
	t0, t1 = 0, 1

	clip := func(p, q float64) bool {
		if p == 0 {
			return q >= 0
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return false
			}
			if r > t0 {
				t0 = r
			}
		} else {
			if r < t0 {
				return false
			}
			if r < t1 {
				t1 = r
			}
		}
		return true
	}

	if !clip(-dx, a.X-xMin) {
		return 0, 0, false
	}
	if !clip(dx, xMax-a.X) {
		return 0, 0, false
	}
	if !clip(-dy, a.Y-yMin) {
		return 0, 0, false
	}
	if !clip(dy, yMax-a.Y) {
		return 0, 0, false
	}
	return t0, t1, true
}
