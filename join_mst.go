package mujou

import (
	"container/heap"
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"
)

// maxNNIterations bounds the R-tree nearest-neighbor scan per sample
// point (spec.md §4.6 step 3 / §9).
const maxNNIterations = 200

// dpThreshold is the largest odd-vertex count the "Optimal" parity
// strategy solves with an exact bitmask minimum-weight-matching DP before
// falling back to the two-heuristic comparison (spec.md §4.6/§9).
const dpThreshold = 16

// snapTolerance is the distance within which a computed split/connector
// point is snapped to an existing segment endpoint's exact bit pattern,
// preventing orphan graph nodes from floating-point near-misses (spec.md
// §4.6/§9). Equality for graph-node identity itself stays bit-exact;
// tolerance is applied only here, at the snap step.
const snapTolerance = 1e-10

// segmentID names one segment of one polyline: (polyline_index,
// segment_index).
type segmentID struct {
	Poly int
	Seg  int
}

// segmentEntry is the R-tree payload: one polyline segment.
type segmentEntry struct {
	id   segmentID
	a, b Point
}

func (s *segmentEntry) Bounds() rtreego.Rect {
	minX, maxX := math.Min(s.a.X, s.b.X), math.Max(s.a.X, s.b.X)
	minY, maxY := math.Min(s.a.Y, s.b.Y), math.Max(s.a.Y, s.b.Y)
	const pad = 1e-6
	lengths := []float64{maxX - minX + pad, maxY - minY + pad}
	r, err := rtreego.NewRect(rtreego.Point{minX, minY}, lengths)
	if err != nil {
		// A degenerate (zero-extent) rect only fails validation in
		// pathological NaN cases; fall back to a pad-sized box at
		// the segment start so the tree never silently drops a segment.
		r, _ = rtreego.NewRect(rtreego.Point{minX, minY}, []float64{pad, pad})
	}
	return r
}

// mstCandidateEdge is a proposed connector between two polylines, found by
// R-tree nearest-neighbor search (spec.md §4.6 step 3).
type mstCandidateEdge struct {
	PolyA, PolyB int
	SegA, SegB   segmentID
	PointA, PointB Point
	Weight       float64
}

// joinMst is the MST-based joiner (spec.md §4.6), the hardest subsystem in
// the core. It connects N disjoint polylines into one continuous Polyline
// by: building a minimum spanning tree over R-tree-sampled candidate
// connections (Kruskal, with a brute-force fallback), splitting polyline
// segments at the points the MST lands on, fixing odd-degree parity by
// duplicating shortest paths, and extracting an Eulerian path with
// Hierholzer's algorithm.
func joinMst(polys []Polyline, cfg PipelineConfig, dims Dimensions) (Polyline, JoinQualityMetrics, error) {
	mstEdges, err := buildMst(polys, cfg, dims)
	if err != nil {
		return Polyline{}, JoinQualityMetrics{}, err
	}

	var metrics JoinQualityMetrics
	metrics.MstEdgeCount = len(mstEdges)
	for _, e := range mstEdges {
		metrics.TotalMstEdgeWeight += e.Weight
		if e.Weight > metrics.MaxMstEdgeWeight {
			metrics.MaxMstEdgeWeight = e.Weight
		}
	}

	g := buildEulerGraph(polys, mstEdges)
	metrics.GraphNodeCount = len(g.nodes)
	metrics.GraphEdgeCountBeforeFix = len(g.edges)

	odd := g.oddVertices()
	metrics.OddVerticesBeforeFix = len(odd)

	retrace, err := fixParity(g, cfg.ParityStrategy)
	if err != nil {
		return Polyline{}, JoinQualityMetrics{}, err
	}
	metrics.TotalRetraceDistance = retrace
	metrics.GraphEdgeCountAfterFix = len(g.edges)
	metrics.OddVerticesAfterFix = len(g.oddVertices())

	start, err := chooseStartVertex(g, dims, cfg.StartPoint)
	if err != nil {
		return Polyline{}, JoinQualityMetrics{}, err
	}

	nodePath, err := hierholzer(g, start)
	if err != nil {
		return Polyline{}, JoinQualityMetrics{}, err
	}

	points := make([]Point, len(nodePath))
	for i, nd := range nodePath {
		points[i] = g.nodes[nd]
	}
	out := Polyline{Points: points}
	metrics.TotalPathLength = out.Length()

	return out, metrics, nil
}

// ---- Phase 1: MST over R-tree candidate edges -----------------------------

func buildMst(polys []Polyline, cfg PipelineConfig, dims Dimensions) ([]mstCandidateEdge, error) {
	n := len(polys)
	tree := rtreego.NewTree(2, 25, 50)

	var allSegments []*segmentEntry
	for pi, p := range polys {
		for si := 0; si+1 < len(p.Points); si++ {
			e := &segmentEntry{id: segmentID{pi, si}, a: p.Points[si], b: p.Points[si+1]}
			allSegments = append(allSegments, e)
			tree.Insert(e)
		}
	}

	extent, _, _ := overallExtent(polys)
	if extent < 1 {
		extent = 1
	}
	pixelSize := extent / float64(cfg.WorkingResolution)
	sampleSpacing := 5 * pixelSize
	if sampleSpacing <= 0 {
		sampleSpacing = 1e-6
	}

	type querySample struct {
		PolyIdx int
		SegIdx  int
		Pt      Point
	}
	var samples []querySample
	for pi, p := range polys {
		pts := sampleAtSpacing(p, sampleSpacing)
		segIdx := 0
		for _, pt := range pts {
			segIdx = ownerSegment(p, pt, segIdx)
			samples = append(samples, querySample{PolyIdx: pi, SegIdx: segIdx, Pt: pt})
		}
	}

	var candidates []mstCandidateEdge
	for _, qs := range samples {
		ownSeg := polySegment(polys[qs.PolyIdx], qs.SegIdx)
		neighbors := tree.NearestNeighbors(maxNNIterations, rtreego.Point{qs.Pt.X, qs.Pt.Y})

		accepted := 0
		for iter := 0; iter < len(neighbors) && iter < maxNNIterations; iter++ {
			obj := neighbors[iter]
			seg, ok := obj.(*segmentEntry)
			if !ok || seg == nil {
				continue
			}
			if seg.id.Poly == qs.PolyIdx {
				continue
			}
			raw := pointToSegmentDistance(qs.Pt, seg.a, seg.b)
			cpA, cpB, closest := segSegClosestPoints(ownSeg.a, ownSeg.b, seg.a, seg.b)
			weight := math.Min(raw, closest)
			pa, pb := cpA, cpB
			if raw <= closest {
				pa, pb = qs.Pt, pointOnSegmentNearest(qs.Pt, seg.a, seg.b)
			}
			candidates = append(candidates, mstCandidateEdge{
				PolyA: qs.PolyIdx, PolyB: seg.id.Poly,
				SegA: segmentID{qs.PolyIdx, qs.SegIdx}, SegB: seg.id,
				PointA: pa, PointB: pb, Weight: weight,
			})
			accepted++
			if accepted >= cfg.MstNeighbours {
				break
			}
		}
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Weight < candidates[j].Weight })

	uf := newUnionFind(n)
	var mst []mstCandidateEdge
	for _, c := range candidates {
		if len(mst) == n-1 {
			break
		}
		if uf.Union(c.PolyA, c.PolyB) {
			mst = append(mst, c)
		}
	}

	if len(mst) < n-1 {
		mst = append(mst, bruteForceFallback(polys, uf, n, len(mst))...)
	}

	return mst, nil
}

// bruteForceFallback connects remaining components by scanning endpoint x
// endpoint combinations across all polylines in each pair of components,
// per spec.md §4.6 step 5. Known limitation (spec.md §9): only endpoints
// are sampled, not interior points.
func bruteForceFallback(polys []Polyline, uf *unionFind, n, have int) []mstCandidateEdge {
	var extra []mstCandidateEdge
	for have < n-1 {
		membersByRoot := make(map[int][]int)
		for i := 0; i < n; i++ {
			r := uf.Find(i)
			membersByRoot[r] = append(membersByRoot[r], i)
		}
		roots := make([]int, 0, len(membersByRoot))
		for r := range membersByRoot {
			roots = append(roots, r)
		}
		sort.Ints(roots)

		type pairCandidate struct {
			a, b   int
			pa, pb Point
			weight float64
		}
		var best []pairCandidate
		for ri := 0; ri < len(roots); ri++ {
			for rj := ri + 1; rj < len(roots); rj++ {
				bestDist := math.Inf(1)
				var bestPA, bestPB Point
				var bestA, bestB int
				for _, pa := range membersByRoot[roots[ri]] {
					for _, ea := range endpoints(polys[pa]) {
						for _, pb := range membersByRoot[roots[rj]] {
							for _, eb := range endpoints(polys[pb]) {
								d := ea.Dist(eb)
								if d < bestDist {
									bestDist, bestPA, bestPB, bestA, bestB = d, ea, eb, pa, pb
								}
							}
						}
					}
				}
				if !math.IsInf(bestDist, 1) {
					best = append(best, pairCandidate{a: bestA, b: bestB, pa: bestPA, pb: bestPB, weight: bestDist})
				}
			}
		}
		sort.Slice(best, func(i, j int) bool { return best[i].weight < best[j].weight })
		for _, c := range best {
			if have == n-1 {
				break
			}
			if uf.Union(c.a, c.b) {
				extra = append(extra, mstCandidateEdge{
					PolyA: c.a, PolyB: c.b,
					// No owning segment: these connect bare polyline
					// endpoints, not a point partway along a segment.
					// Seg: -1 marks that so addSplit (buildEulerGraph)
					// skips them instead of mistaking them for a split
					// on segment 0 of each polyline.
					SegA:   segmentID{Poly: c.a, Seg: -1},
					SegB:   segmentID{Poly: c.b, Seg: -1},
					PointA: c.pa, PointB: c.pb,
					Weight: c.weight,
				})
				have++
			}
		}
		if len(best) == 0 {
			break // nothing left to connect; avoid an infinite loop
		}
	}
	return extra
}

func endpoints(p Polyline) []Point {
	if len(p.Points) == 0 {
		return nil
	}
	return []Point{p.Points[0], p.Points[len(p.Points)-1]}
}

// ---- geometry helpers -------------------------------------------------

func overallExtent(polys []Polyline) (extent, w, h float64) {
	min, max := overallBoundingBox(polys)
	w = max.X - min.X
	h = max.Y - min.Y
	extent = math.Max(w, h)
	return extent, w, h
}

func ownerSegment(p Polyline, pt Point, hint int) int {
	best := hint
	bestDist := math.Inf(1)
	lo := hint - 1
	if lo < 0 {
		lo = 0
	}
	hi := len(p.Points) - 1
	for si := lo; si < hi; si++ {
		d := pointToSegmentDistance(pt, p.Points[si], p.Points[si+1])
		if d < bestDist {
			bestDist, best = d, si
		}
	}
	return best
}

func polySegment(p Polyline, idx int) struct{ a, b Point } {
	if idx < 0 {
		idx = 0
	}
	if idx > len(p.Points)-2 {
		idx = len(p.Points) - 2
	}
	return struct{ a, b Point }{p.Points[idx], p.Points[idx+1]}
}

func pointToSegmentDistance(p, a, b Point) float64 {
	return p.Dist(pointOnSegmentNearest(p, a, b))
}

func pointOnSegmentNearest(p, a, b Point) Point {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return a
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return lerpPoint(a, b, t)
}

// segSegClosestPoints approximates the closest pair of points between two
// segments by projecting each segment's endpoints onto the other in
// sequence (spec.md §4.6 step 3), rather than a full segment-segment
// distance solve.
func segSegClosestPoints(a1, a2, b1, b2 Point) (pa, pb Point, dist float64) {
	candidates := []struct {
		pa, pb Point
	}{
		{a1, pointOnSegmentNearest(a1, b1, b2)},
		{a2, pointOnSegmentNearest(a2, b1, b2)},
		{pointOnSegmentNearest(b1, a1, a2), b1},
		{pointOnSegmentNearest(b2, a1, a2), b2},
	}
	best := math.Inf(1)
	for _, c := range candidates {
		d := c.pa.Dist(c.pb)
		if d < best {
			best, pa, pb = d, c.pa, c.pb
		}
	}
	return pa, pb, best
}

// ---- union-find --------------------------------------------------------

type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return &unionFind{parent: p, rank: make([]int, n)}
}

func (u *unionFind) Find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

// Union unites the components of a and b, returning true iff they were
// previously distinct (i.e. this was a real merge, the Kruskal accept
// condition).
func (u *unionFind) Union(a, b int) bool {
	ra, rb := u.Find(a), u.Find(b)
	if ra == rb {
		return false
	}
	if u.rank[ra] < u.rank[rb] {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
	if u.rank[ra] == u.rank[rb] {
		u.rank[ra]++
	}
	return true
}

// ---- Phase 2: Eulerian graph construction ------------------------------

type graphEdge struct {
	From, To int
	Weight   float64
}

func (e graphEdge) other(v int) int {
	if v == e.From {
		return e.To
	}
	return e.From
}

// eulerGraph is an undirected multigraph with potentially parallel edges
// (spec.md §9): adjacency lists store (neighbor-implicit) edge ids, and
// edges are looked up by id so a per-edge "used" flag (Hierholzer) and
// parallel duplicates (parity fixing) are both natural.
type eulerGraph struct {
	nodes    []Point
	nodeID   map[[2]uint64]int
	snapGrid map[[2]int64][]int // bucketed index into nodes, for snapping
	edges    []graphEdge
	adj      [][]int
}

func newEulerGraph() *eulerGraph {
	return &eulerGraph{nodeID: make(map[[2]uint64]int), snapGrid: make(map[[2]int64][]int)}
}

const snapBucketSize = snapTolerance * 10

func snapBucket(p Point) [2]int64 {
	return [2]int64{int64(math.Floor(p.X / snapBucketSize)), int64(math.Floor(p.Y / snapBucketSize))}
}

// snap overwrites p's coordinates with an existing node's exact bit
// pattern if one lies within snapTolerance, per spec.md §4.6/§9.
func (g *eulerGraph) snap(p Point) Point {
	bucket := snapBucket(p)
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for _, idx := range g.snapGrid[[2]int64{bucket[0] + dx, bucket[1] + dy}] {
				cand := g.nodes[idx]
				if p.Dist(cand) <= snapTolerance {
					return cand
				}
			}
		}
	}
	return p
}

// nodeIndex returns the node index for (already-snapped) point p,
// creating a new node if no bit-exact match exists. Node identity is
// strictly bit-exact (spec.md §9) — only the snap step above applies
// tolerance.
func (g *eulerGraph) nodeIndex(p Point) int {
	key := p.bits()
	if idx, ok := g.nodeID[key]; ok {
		return idx
	}
	idx := len(g.nodes)
	g.nodes = append(g.nodes, p)
	g.nodeID[key] = idx
	g.adj = append(g.adj, nil)
	bucket := snapBucket(p)
	g.snapGrid[bucket] = append(g.snapGrid[bucket], idx)
	return idx
}

// addEdge inserts a new graph edge and returns its id. Zero-weight edges
// are allowed here: callers decide whether to suppress them (spec.md
// §4.6 phase 2's "zero-length edges are suppressed except for MST
// connector edges" rule lives in buildEulerGraph, not here).
func (g *eulerGraph) addEdge(from, to int, weight float64) int {
	id := len(g.edges)
	g.edges = append(g.edges, graphEdge{From: from, To: to, Weight: weight})
	g.adj[from] = append(g.adj[from], id)
	g.adj[to] = append(g.adj[to], id)
	return id
}

func (g *eulerGraph) degree(node int) int {
	return len(g.adj[node])
}

func (g *eulerGraph) oddVertices() []int {
	var odd []int
	for i := range g.nodes {
		if g.degree(i)%2 == 1 {
			odd = append(odd, i)
		}
	}
	return odd
}

// clone deep-copies the graph, used when the "Optimal" parity strategy
// needs to try two heuristics independently and keep only the cheaper.
func (g *eulerGraph) clone() *eulerGraph {
	out := &eulerGraph{
		nodes:    append([]Point(nil), g.nodes...),
		nodeID:   make(map[[2]uint64]int, len(g.nodeID)),
		snapGrid: make(map[[2]int64][]int, len(g.snapGrid)),
		edges:    append([]graphEdge(nil), g.edges...),
		adj:      make([][]int, len(g.adj)),
	}
	for k, v := range g.nodeID {
		out.nodeID[k] = v
	}
	for k, v := range g.snapGrid {
		out.snapGrid[k] = append([]int(nil), v...)
	}
	for i, a := range g.adj {
		out.adj[i] = append([]int(nil), a...)
	}
	return out
}

// buildEulerGraph materializes the Eulerian multigraph from the original
// polyline segments (split at MST connection points) plus the MST
// connector edges themselves, per spec.md §4.6 phase 2.
func buildEulerGraph(polys []Polyline, mst []mstCandidateEdge) *eulerGraph {
	g := newEulerGraph()

	// Register every original vertex as a node first, so later snapping
	// prefers genuine contour vertices over split points.
	for _, p := range polys {
		for _, v := range p.Points {
			g.nodeIndex(v)
		}
	}

	// Collect, per polyline segment, the split points any MST connection
	// lands on.
	type splitSet map[segmentID][]Point
	splits := make(splitSet)
	addSplit := func(id segmentID, p Point) {
		if id.Seg < 0 {
			return
		}
		splits[id] = append(splits[id], p)
	}
	for _, e := range mst {
		// addSplit itself skips Seg < 0 (brute-force endpoint connections,
		// which carry no owning segment); segmentID{0, 0} is a legitimate
		// split target and must never be treated as "absent" here.
		addSplit(e.SegA, e.PointA)
		addSplit(e.SegB, e.PointB)
	}

	for pi, p := range polys {
		for si := 0; si+1 < len(p.Points); si++ {
			id := segmentID{pi, si}
			a, b := p.Points[si], p.Points[si+1]
			interior := dedupSplitsOnSegment(a, b, splits[id])
			chain := append([]Point{a}, interior...)
			chain = append(chain, b)
			for k := 1; k < len(chain); k++ {
				from := g.snap(chain[k-1])
				to := g.snap(chain[k])
				w := from.Dist(to)
				if w == 0 {
					continue // zero-length contour edges are suppressed
				}
				g.addEdge(g.nodeIndex(from), g.nodeIndex(to), w)
			}
		}
	}

	// Add every MST connection as an edge between its two snapped
	// endpoints, even when the snapped endpoints coincide (weight 0) —
	// these preserve connectivity and must not be suppressed.
	for _, e := range mst {
		from := g.snap(e.PointA)
		to := g.snap(e.PointB)
		g.addEdge(g.nodeIndex(from), g.nodeIndex(to), e.Weight)
	}

	return g
}

// dedupSplitsOnSegment orders split points along segment a-b by arc
// distance from a, then removes any within snapTolerance of a, of b, or
// of each other.
func dedupSplitsOnSegment(a, b Point, pts []Point) []Point {
	if len(pts) == 0 {
		return nil
	}
	type withT struct {
		p Point
		t float64
	}
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	withTs := make([]withT, len(pts))
	for i, p := range pts {
		t := 0.0
		if lenSq > 0 {
			t = ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
		}
		withTs[i] = withT{p: p, t: t}
	}
	sort.Slice(withTs, func(i, j int) bool { return withTs[i].t < withTs[j].t })

	var out []Point
	last := a
	for _, w := range withTs {
		if w.p.Dist(last) <= snapTolerance || w.p.Dist(b) <= snapTolerance {
			continue
		}
		out = append(out, w.p)
		last = w.p
	}
	return out
}

// ---- Dijkstra & parity fixing ------------------------------------------

type pqItem struct {
	node int
	dist float64
}
type priorityQueue []pqItem

func (pq priorityQueue) Len() int            { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool  { return pq[i].dist < pq[j].dist }
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x interface{}) { *pq = append(*pq, x.(pqItem)) }
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// dijkstra computes single-source shortest distances over g's current
// edge set.
func dijkstra(g *eulerGraph, src int) []float64 {
	dist := make([]float64, len(g.nodes))
	for i := range dist {
		dist[i] = math.Inf(1)
	}
	dist[src] = 0
	visited := make([]bool, len(g.nodes))

	pq := &priorityQueue{{node: src, dist: 0}}
	heap.Init(pq)
	for pq.Len() > 0 {
		top := heap.Pop(pq).(pqItem)
		if visited[top.node] {
			continue
		}
		visited[top.node] = true
		for _, eid := range g.adj[top.node] {
			e := g.edges[eid]
			nb := e.other(top.node)
			nd := dist[top.node] + e.Weight
			if nd < dist[nb] {
				dist[nb] = nd
				heap.Push(pq, pqItem{node: nb, dist: nd})
			}
		}
	}
	return dist
}

// reconstructPath walks from dst back to src using the distance array
// from a Dijkstra run rooted at src, maintaining a node-level visited set
// so parallel edges between the same pair of nodes (added by an earlier
// parity-fix round) cannot cause the back-walk to oscillate (spec.md
// §4.6 phase 3 / §9).
func reconstructPath(g *eulerGraph, dist []float64, src, dst int) ([]int, error) {
	if math.IsInf(dist[dst], 1) {
		return nil, newStructuralError("parity-fix", "destination unreachable from source")
	}
	path := []int{dst}
	seen := map[int]bool{dst: true}
	cur := dst
	for cur != src {
		found := false
		for _, eid := range g.adj[cur] {
			e := g.edges[eid]
			nb := e.other(cur)
			if seen[nb] {
				continue
			}
			if math.Abs(dist[nb]+e.Weight-dist[cur]) < 1e-10 {
				path = append(path, nb)
				seen[nb] = true
				cur = nb
				found = true
				break
			}
		}
		if !found {
			return nil, newStructuralError("dijkstra-reconstruct", "no unseen predecessor satisfies the shortest-path relation")
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

// duplicatePath adds a parallel copy of every edge between consecutive
// nodes of path, returning the total weight duplicated.
func duplicatePath(g *eulerGraph, path []int) (float64, error) {
	var total float64
	for i := 1; i < len(path); i++ {
		eid := findEdgeBetween(g, path[i-1], path[i])
		if eid == -1 {
			return total, newStructuralError("parity-fix", "reconstructed path references a non-existent edge")
		}
		w := g.edges[eid].Weight
		g.addEdge(path[i-1], path[i], w)
		total += w
	}
	return total, nil
}

func findEdgeBetween(g *eulerGraph, a, b int) int {
	for _, eid := range g.adj[a] {
		e := g.edges[eid]
		if e.other(a) == b {
			return eid
		}
	}
	return -1
}

// fixParity fixes odd-degree parity per the configured strategy, returning
// total retrace distance duplicated.
func fixParity(g *eulerGraph, strategy ParityStrategy) (float64, error) {
	if strategy == ParityOptimal {
		return fixParityOptimal(g)
	}
	return fixParityGreedy(g, euclideanPairMetric(g))
}

type pairMetric func(a, b int) float64

func euclideanPairMetric(g *eulerGraph) pairMetric {
	return func(a, b int) float64 { return g.nodes[a].Dist(g.nodes[b]) }
}

// fixParityGreedy repeatedly pairs the two odd vertices ranked closest by
// metric, shortest-path-duplicates between them, until at most 2 remain
// (spec.md §4.6 phase 3, "Greedy" strategy).
func fixParityGreedy(g *eulerGraph, metric pairMetric) (float64, error) {
	var total float64
	odd := g.oddVertices()
	for len(odd) > 2 {
		bi, bj := 0, 1
		best := math.Inf(1)
		for a := 0; a < len(odd); a++ {
			for b := a + 1; b < len(odd); b++ {
				if d := metric(odd[a], odd[b]); d < best {
					best, bi, bj = d, a, b
				}
			}
		}
		i, j := odd[bi], odd[bj]
		dist := dijkstra(g, i)
		path, err := reconstructPath(g, dist, i, j)
		if err != nil {
			return total, err
		}
		w, err := duplicatePath(g, path)
		if err != nil {
			return total, err
		}
		total += w

		odd = append(append([]int{}, odd[:bi]...), odd[bi+1:]...)
		// bj's index shifts left by one once bi is removed, if bj > bi.
		bj--
		odd = append(append([]int{}, odd[:bj]...), odd[bj+1:]...)
	}
	return total, nil
}

// graphDistancePairMetric ranks odd-vertex pairs by current shortest-path
// graph distance rather than Euclidean distance. Dijkstra runs once per
// source vertex and its distances are cached for later pairs; this is
// only invoked for the "Optimal" strategy's large-|odd|
// fallback path, not the default Greedy path.
func graphDistancePairMetric(g *eulerGraph) pairMetric {
	cache := make(map[int][]float64)
	return func(a, b int) float64 {
		d, ok := cache[a]
		if !ok {
			d = dijkstra(g, a)
			cache[a] = d
		}
		return d[b]
	}
}

// fixParityOptimal implements the "Optimal" strategy (spec.md §4.6/§9):
// an exact bitmask-DP minimum-weight perfect matching for |odd| <=
// dpThreshold, else the better of a Euclidean-greedy and a
// graph-distance-greedy pass evaluated on independent graph clones.
func fixParityOptimal(g *eulerGraph) (float64, error) {
	odd := g.oddVertices()
	if len(odd) <= dpThreshold {
		return fixParityDP(g, odd)
	}

	gA := g.clone()
	totalA, errA := fixParityGreedy(gA, euclideanPairMetric(gA))

	gB := g.clone()
	totalB, errB := fixParityGreedy(gB, graphDistancePairMetric(gB))

	switch {
	case errA != nil && errB != nil:
		return 0, errA
	case errB != nil || (errA == nil && totalA <= totalB):
		*g = *gA
		return totalA, nil
	default:
		*g = *gB
		return totalB, nil
	}
}

// fixParityDP runs an exact minimum-weight perfect matching over the odd
// vertices via bitmask DP on pairwise graph-distance cost, then applies
// the chosen pairing's shortest-path duplication for each pair.
func fixParityDP(g *eulerGraph, odd []int) (float64, error) {
	k := len(odd)
	if k == 0 {
		return 0, nil
	}
	cost := make([][]float64, k)
	for i := range odd {
		d := dijkstra(g, odd[i])
		cost[i] = make([]float64, k)
		for j := range odd {
			cost[i][j] = d[odd[j]]
		}
	}

	size := 1 << k
	dp := make([]float64, size)
	choiceI := make([]int, size)
	choiceJ := make([]int, size)
	for i := range dp {
		dp[i] = math.Inf(1)
	}
	dp[0] = 0

	for mask := 0; mask < size; mask++ {
		if math.IsInf(dp[mask], 1) {
			continue
		}
		first := -1
		for b := 0; b < k; b++ {
			if mask&(1<<b) == 0 {
				first = b
				break
			}
		}
		if first == -1 {
			continue
		}
		for j := first + 1; j < k; j++ {
			if mask&(1<<j) != 0 {
				continue
			}
			nm := mask | (1 << first) | (1 << j)
			nc := dp[mask] + cost[first][j]
			if nc < dp[nm] {
				dp[nm] = nc
				choiceI[nm] = first
				choiceJ[nm] = j
			}
		}
	}

	full := size - 1
	var pairs [][2]int
	mask := full
	for mask != 0 {
		i, j := choiceI[mask], choiceJ[mask]
		pairs = append(pairs, [2]int{i, j})
		mask ^= (1 << i) | (1 << j)
	}

	var total float64
	for _, pr := range pairs {
		a, b := odd[pr[0]], odd[pr[1]]
		dist := dijkstra(g, a)
		path, err := reconstructPath(g, dist, a, b)
		if err != nil {
			return total, err
		}
		w, err := duplicatePath(g, path)
		if err != nil {
			return total, err
		}
		total += w
	}
	return total, nil
}

// ---- Phase 4: Hierholzer ------------------------------------------------

// chooseStartVertex selects the Hierholzer start vertex per spec.md §4.6
// phase 4 / §9: among non-isolated vertices (and, when exactly two
// odd-degree vertices exist, restricted to those two), pick the one
// maximizing (Outside) or minimizing (Inside) Euclidean distance from the
// image center.
func chooseStartVertex(g *eulerGraph, dims Dimensions, strategy StartPoint) (int, error) {
	center := dims.Center()
	odd := g.oddVertices()

	var candidates []int
	if len(odd) == 2 {
		candidates = odd
	} else {
		for i := range g.nodes {
			if g.degree(i) > 0 {
				candidates = append(candidates, i)
			}
		}
	}
	if len(candidates) == 0 {
		return 0, newStructuralError("hierholzer", "no non-isolated vertex to start from")
	}

	best := candidates[0]
	bestDist := g.nodes[best].Dist(center)
	for _, c := range candidates[1:] {
		d := g.nodes[c].Dist(center)
		better := false
		if strategy == StartOutside {
			better = d > bestDist
		} else {
			better = d < bestDist
		}
		if better {
			best, bestDist = c, d
		}
	}
	return best, nil
}

// hierholzer extracts an Eulerian path/circuit starting at start, using a
// per-edge used flag and an explicit stack (spec.md §4.6 phase 4).
func hierholzer(g *eulerGraph, start int) ([]int, error) {
	if len(g.edges) == 0 {
		return []int{start}, nil
	}
	used := make([]bool, len(g.edges))
	cursor := make([]int, len(g.nodes)) // next adjacency index to examine per node

	stack := []int{start}
	var path []int
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		advanced := false
		for cursor[v] < len(g.adj[v]) {
			eid := g.adj[v][cursor[v]]
			cursor[v]++
			if used[eid] {
				continue
			}
			used[eid] = true
			stack = append(stack, g.edges[eid].other(v))
			advanced = true
			break
		}
		if !advanced {
			path = append(path, v)
			stack = stack[:len(stack)-1]
		}
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	for _, u := range used {
		if !u {
			return nil, newStructuralError("hierholzer", "not every edge was used; graph was not a single Eulerian component")
		}
	}
	if len(path) == 0 {
		return nil, newStructuralError("hierholzer", "empty path returned on a non-empty graph")
	}
	return path, nil
}
