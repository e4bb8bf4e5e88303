package mujou

import "math"

// JoinQualityMetrics summarizes the quality of a join operation. Every
// field is non-negative; max <= total; total_path_length >=
// total_mst_edge_weight (spec.md §3). Joiners other than MST populate only
// the fields meaningful to them and leave the rest at zero.
type JoinQualityMetrics struct {
	MstEdgeCount             int
	TotalMstEdgeWeight       float64
	MaxMstEdgeWeight         float64
	OddVerticesBeforeFix     int
	OddVerticesAfterFix      int
	TotalRetraceDistance     float64
	TotalPathLength          float64
	GraphNodeCount           int
	GraphEdgeCountBeforeFix  int
	GraphEdgeCountAfterFix   int
}

// joinPolylines dispatches to the configured joiner. This is a typed-
// variant dispatch (spec.md §9 "Dynamic dispatch among joiners"): each
// joiner's working state (R-tree, grid, union-find) is local to its call,
// so no trait-object-style heap allocation is needed.
func joinPolylines(polys []Polyline, cfg PipelineConfig, dims Dimensions) (Polyline, JoinQualityMetrics, error) {
	nonEmpty := make([]Polyline, 0, len(polys))
	for _, p := range polys {
		if p.Drawable() {
			nonEmpty = append(nonEmpty, p)
		}
	}
	if len(nonEmpty) == 0 {
		return Polyline{}, JoinQualityMetrics{}, nil
	}
	if len(nonEmpty) == 1 {
		return nonEmpty[0], JoinQualityMetrics{TotalPathLength: nonEmpty[0].Length()}, nil
	}

	switch cfg.PathJoiner {
	case JoinStraightLine:
		return joinStraightLine(nonEmpty), JoinQualityMetrics{}, nil
	case JoinRetrace:
		out, metrics := joinRetrace(nonEmpty)
		return out, metrics, nil
	default:
		return joinMst(nonEmpty, cfg, dims)
	}
}

// joinStraightLine greedily orders polylines by nearest-neighbor endpoint
// distance and concatenates them, reversing a polyline when its far
// endpoint is closer to the running tail (spec.md §4.8). The implicit
// straight segment between consecutive contours is the "jump" the
// caller's device draws.
func joinStraightLine(polys []Polyline) Polyline {
	used := make([]bool, len(polys))
	// Start from polyline 0 in its given orientation, matching the
	// teacher's deterministic-order convention elsewhere in this corpus.
	ordered := []Polyline{polys[0]}
	used[0] = true
	tail := polys[0].Points[len(polys[0].Points)-1]

	for k := 1; k < len(polys); k++ {
		best := -1
		bestRev := false
		bestDist := math.Inf(1)
		for i, p := range polys {
			if used[i] {
				continue
			}
			start, end := p.Points[0], p.Points[len(p.Points)-1]
			if d := tail.Dist(start); d < bestDist {
				bestDist, best, bestRev = d, i, false
			}
			if d := tail.Dist(end); d < bestDist {
				bestDist, best, bestRev = d, i, true
			}
		}
		next := polys[best]
		if bestRev {
			next = next.Reversed()
		}
		used[best] = true
		ordered = append(ordered, next)
		tail = next.Points[len(next.Points)-1]
	}

	var out []Point
	for _, p := range ordered {
		out = append(out, p.Points...)
	}
	return Polyline{Points: out}
}

// gridIndex is a uniform 2D grid spatial index over points already emitted
// by the retrace joiner, ~50 cells across the longer axis of the output
// bounding box (spec.md §4.7).
type gridIndex struct {
	minX, minY float64
	cellSize   float64
	cols, rows int
	cells      map[[2]int][]int // cell -> history indices
	history    []Point
}

func newGridIndex(bboxMin, bboxMax Point) *gridIndex {
	w := bboxMax.X - bboxMin.X
	h := bboxMax.Y - bboxMin.Y
	longer := math.Max(w, h)
	if longer <= 0 {
		longer = 1
	}
	cellSize := longer / 50
	if cellSize <= 0 {
		cellSize = 1
	}
	return &gridIndex{
		minX:     bboxMin.X,
		minY:     bboxMin.Y,
		cellSize: cellSize,
		cells:    make(map[[2]int][]int),
	}
}

func (g *gridIndex) cellOf(p Point) [2]int {
	return [2]int{
		int(math.Floor((p.X - g.minX) / g.cellSize)),
		int(math.Floor((p.Y - g.minY) / g.cellSize)),
	}
}

func (g *gridIndex) insert(p Point) int {
	idx := len(g.history)
	g.history = append(g.history, p)
	c := g.cellOf(p)
	g.cells[c] = append(g.cells[c], idx)
	return idx
}

// nearest returns the closest history index found in the cell q falls in
// and its 8 neighbors; when those cells hold no history it scans the
// whole history instead. ok is false only when the history is empty.
func (g *gridIndex) nearest(q Point) (idx int, dist float64, ok bool) {
	c := g.cellOf(q)
	best := -1
	bestDist := math.Inf(1)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for _, hi := range g.cells[[2]int{c[0] + dx, c[1] + dy}] {
				d := g.history[hi].Dist(q)
				if d < bestDist {
					bestDist, best = d, hi
				}
			}
		}
	}
	if best == -1 {
		for hi, p := range g.history {
			if d := p.Dist(q); d < bestDist {
				bestDist, best = d, hi
			}
		}
	}
	if best == -1 {
		return 0, 0, false
	}
	return best, bestDist, true
}

// joinRetrace stitches polylines together by re-drawing (retracing) back
// through already-emitted history to the point nearest the next
// polyline's entry, per spec.md §4.7. Retrace distance — duplicate
// coordinates invisible in the physical medium — is accumulated into the
// returned metrics.
func joinRetrace(polys []Polyline) (Polyline, JoinQualityMetrics) {
	var output []Point
	var metrics JoinQualityMetrics

	bboxMin, bboxMax := overallBoundingBox(polys)
	grid := newGridIndex(bboxMin, bboxMax)

	emit := func(p Point) {
		output = append(output, p)
		grid.insert(p)
	}

	for _, p := range polys[0].Points {
		emit(p)
	}

	used := make([]bool, len(polys))
	used[0] = true

	for remaining := len(polys) - 1; remaining > 0; remaining-- {
		type candidate struct {
			polyIdx     int
			entryVertex int
			historyIdx  int
			dist        float64
		}
		var best *candidate

		cellSpacing := grid.cellSize
		for i, p := range polys {
			if used[i] {
				continue
			}
			samples := sampleAtSpacing(p, cellSpacing)
			for vi, sample := range samples {
				hi, dist, ok := grid.nearest(sample)
				if !ok {
					continue
				}
				if best == nil || dist < best.dist {
					best = &candidate{polyIdx: i, entryVertex: nearestOriginalVertex(p, sample, vi), historyIdx: hi, dist: dist}
				}
			}
		}
		if best == nil {
			break
		}

		// Retrace backward through history to the matched point.
		for hi := len(output) - 1; hi >= best.historyIdx; hi-- {
			metrics.TotalRetraceDistance += output[len(output)-1].Dist(output[hi])
			emit(output[hi])
		}

		p := polys[best.polyIdx]
		used[best.polyIdx] = true
		// Interior entries: forward to one end, then reverse back through
		// to the other end, per spec.md §4.7's split-traversal handling.
		for i := best.entryVertex; i < len(p.Points); i++ {
			emit(p.Points[i])
		}
		if best.entryVertex > 0 {
			for i := len(p.Points) - 2; i >= 0; i-- {
				if i >= best.entryVertex {
					metrics.TotalRetraceDistance += p.Points[i].Dist(p.Points[i+1])
				}
				emit(p.Points[i])
			}
		}
	}

	metrics.TotalPathLength = Polyline{Points: output}.Length()
	return Polyline{Points: output}, metrics
}

// nearestOriginalVertex maps an arc-length sample back to the index of
// the nearest actual vertex in p, since entry must start at a vertex.
func nearestOriginalVertex(p Polyline, sample Point, sampleIdx int) int {
	best := 0
	bestDist := math.Inf(1)
	for i, v := range p.Points {
		if d := v.Dist(sample); d < bestDist {
			bestDist, best = d, i
		}
	}
	return best
}

func overallBoundingBox(polys []Polyline) (min, max Point) {
	min = Point{X: math.Inf(1), Y: math.Inf(1)}
	max = Point{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, p := range polys {
		pmin, pmax, ok := p.BoundingBox()
		if !ok {
			continue
		}
		min.X = math.Min(min.X, pmin.X)
		min.Y = math.Min(min.Y, pmin.Y)
		max.X = math.Max(max.X, pmax.X)
		max.Y = math.Max(max.Y, pmax.Y)
	}
	return min, max
}
