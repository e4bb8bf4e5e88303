package mujou

import "math"

// PolarPoint is a (theta, rho) sample of a sand-table path around an
// origin: theta in radians, continuously unwound (not wrapped to
// [-pi, pi]) so consecutive samples never jump by more than one turn's
// worth of actual angular travel, and rho the distance from origin
// normalized to [0, 1] against the projection radius (spec.md §4.9).
type PolarPoint struct {
	Theta float64
	Rho   float64
}

// polarOrigin picks the projection's center and normalizing radius: the
// mask's own center/radius when it is a Circle, else the image center
// and the circumscribing-circle radius hypot(w,h)/2. A Rectangle mask
// falls through to the image-center default — a deliberate limitation
// of the THR format, which is polar-native and has no rectangle analog
// (spec.md §9).
func polarOrigin(cfg PipelineConfig, dims Dimensions) (center Point, radius float64) {
	if shape, ok := resolveMaskShape(cfg, dims); ok && shape.Kind == ShapeCircle {
		return shape.Center, shape.Radius
	}
	center = dims.Center()
	radius = math.Hypot(float64(dims.W), float64(dims.H)) / 2
	return center, radius
}

// unwindDelta returns the angular delta from prevRaw to raw, normalized
// into (-pi, pi], so a path that crosses the atan2 discontinuity between
// consecutive samples doesn't jump by a full turn (spec.md §4.9).
func unwindDelta(prevRaw, raw float64) float64 {
	delta := math.Mod(raw-prevRaw, 2*math.Pi)
	if delta > math.Pi {
		delta -= 2 * math.Pi
	} else if delta <= -math.Pi {
		delta += 2 * math.Pi
	}
	return delta
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// projectPolar converts every point of p into a continuously unwound
// (theta, rho) pair around the origin resolved from cfg/dims (spec.md
// §4.9). See projectPolarAroundOrigin for the projection itself.
func projectPolar(p Polyline, cfg PipelineConfig, dims Dimensions) []PolarPoint {
	if len(p.Points) == 0 {
		return nil
	}
	origin, radius := polarOrigin(cfg, dims)
	return projectPolarAroundOrigin(p, origin, radius)
}

// projectPolarAroundOrigin converts every point of p into a continuously
// unwound (theta, rho) pair around origin, normalizing rho against
// radius. theta uses the sand-table convention atan2(dx, dy) — 0 points
// toward +y, image-down — not the usual atan2(dy, dx). A point exactly
// at the origin reuses the previous theta (the first point defaults to
// 0, since no previous theta exists yet). An empty polyline yields an
// empty result; a single-point polyline still yields its one (theta,
// rho) sample.
func projectPolarAroundOrigin(p Polyline, origin Point, radius float64) []PolarPoint {
	if len(p.Points) == 0 {
		return nil
	}
	out := make([]PolarPoint, len(p.Points))
	var prevRaw, prevTheta float64
	havePrev := false

	for i, pt := range p.Points {
		dx, dy := pt.X-origin.X, pt.Y-origin.Y
		dist := math.Hypot(dx, dy)

		var rho float64
		if radius > 0 {
			rho = clamp01(dist / radius)
		}

		var theta float64
		if dist == 0 {
			theta = prevTheta // reuse; defaults to 0 if this is the first point
		} else {
			raw := math.Atan2(dx, dy)
			if havePrev {
				theta = prevTheta + unwindDelta(prevRaw, raw)
			} else {
				theta = raw
			}
			prevRaw = raw
			prevTheta = theta
			havePrev = true
		}

		out[i] = PolarPoint{Theta: theta, Rho: rho}
	}
	return out
}
