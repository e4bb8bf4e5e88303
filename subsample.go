package mujou

import "sort"

// subsampleMaxLength breaks every segment longer than maxLen into equal
// pieces no longer than maxLen, inserting evenly spaced interior points.
// Segments already <= maxLen are left untouched. maxLen <= 0 is a no-op.
func subsampleMaxLength(p Polyline, maxLen float64) Polyline {
	if maxLen <= 0 || len(p.Points) < 2 {
		return p
	}
	out := make([]Point, 0, len(p.Points))
	out = append(out, p.Points[0])
	for i := 1; i < len(p.Points); i++ {
		a, b := p.Points[i-1], p.Points[i]
		segLen := a.Dist(b)
		if segLen <= maxLen {
			out = append(out, b)
			continue
		}
		n := int(segLen/maxLen) + 1
		for k := 1; k <= n; k++ {
			out = append(out, lerpPoint(a, b, float64(k)/float64(n)))
		}
	}
	return Polyline{Points: out}
}

// SegmentRank identifies one segment of a polyline by its starting index
// and records its length, for the top-N-longest-segments diagnostic named
// in spec.md §2.
type SegmentRank struct {
	StartIndex int
	Length     float64
}

// rankLongestSegments returns the n longest segments of p, longest first.
// If p has fewer than n segments, all of them are returned.
func rankLongestSegments(p Polyline, n int) []SegmentRank {
	if len(p.Points) < 2 || n <= 0 {
		return nil
	}
	ranks := make([]SegmentRank, len(p.Points)-1)
	for i := 1; i < len(p.Points); i++ {
		ranks[i-1] = SegmentRank{StartIndex: i - 1, Length: p.Points[i-1].Dist(p.Points[i])}
	}
	sort.Slice(ranks, func(i, j int) bool { return ranks[i].Length > ranks[j].Length })
	if len(ranks) > n {
		ranks = ranks[:n]
	}
	return ranks
}

// sampleAtSpacing walks p and returns points spaced `spacing` apart along
// each segment, always including every original vertex. Used by the MST
// joiner (spec.md §4.6 step 2) to generate R-tree query points.
func sampleAtSpacing(p Polyline, spacing float64) []Point {
	if len(p.Points) == 0 {
		return nil
	}
	if spacing <= 0 || len(p.Points) < 2 {
		return append([]Point(nil), p.Points...)
	}
	out := []Point{p.Points[0]}
	for i := 1; i < len(p.Points); i++ {
		a, b := p.Points[i-1], p.Points[i]
		segLen := a.Dist(b)
		if segLen == 0 {
			continue
		}
		steps := int(segLen / spacing)
		for k := 1; k <= steps; k++ {
			d := float64(k) * spacing
			if d >= segLen {
				break
			}
			out = append(out, lerpPoint(a, b, d/segLen))
		}
		out = append(out, b)
	}
	return out
}
