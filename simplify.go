package mujou

import "math"

// simplifyPolylines applies Ramer-Douglas-Peucker to every polyline with
// the configured tolerance (spec.md §4.4).
func simplifyPolylines(polys []Polyline, tolerance float64) []Polyline {
	out := make([]Polyline, len(polys))
	for i, p := range polys {
		out[i] = rdp(p, tolerance)
	}
	return out
}

// rdp simplifies a single polyline. Polylines with fewer than 3 points are
// returned unchanged (there's no interior point to consider dropping).
// A tolerance of 0 (or below) also returns p unchanged, keeping every
// point, including exactly collinear ones.
func rdp(p Polyline, tolerance float64) Polyline {
	if len(p.Points) < 3 || tolerance <= 0 {
		return p
	}
	keep := make([]bool, len(p.Points))
	keep[0] = true
	keep[len(p.Points)-1] = true
	rdpRange(p.Points, 0, len(p.Points)-1, tolerance, keep)

	out := make([]Point, 0, len(p.Points))
	for i, k := range keep {
		if k {
			out = append(out, p.Points[i])
		}
	}
	return Polyline{Points: out}
}

// rdpRange recursively marks points to keep between indices lo and hi
// (inclusive), per spec.md §4.4: find the interior point with maximum
// perpendicular distance to the chord lo-hi; keep it and recurse on both
// halves only if that distance exceeds tolerance.
func rdpRange(pts []Point, lo, hi int, tolerance float64, keep []bool) {
	if hi-lo < 2 {
		return
	}
	var maxDist float64
	maxIdx := -1
	for i := lo + 1; i < hi; i++ {
		d := perpendicularDistance(pts[i], pts[lo], pts[hi])
		if d > maxDist {
			maxDist = d
			maxIdx = i
		}
	}
	if maxIdx == -1 || maxDist <= tolerance {
		return
	}
	keep[maxIdx] = true
	rdpRange(pts, lo, maxIdx, tolerance, keep)
	rdpRange(pts, maxIdx, hi, tolerance, keep)
}

// perpendicularDistance computes the distance from p to the line through
// a and b. When a and b coincide, this degenerates to point-to-point
// distance, per spec.md §4.4.
func perpendicularDistance(p, a, b Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return p.Dist(a)
	}
	// |cross product| / |b - a|
	num := math.Abs(dy*p.X - dx*p.Y + b.X*a.Y - b.Y*a.X)
	return num / math.Sqrt(lenSq)
}
