package mujou

// traceContours extracts polylines from a binary edge map using
// Suzuki-Abe border following (the BorderFollowing strategy, spec.md
// §4.3): every 8-connected foreground run is traced into an ordered
// polyline via Moore-neighbor boundary tracing with Jacob's stopping
// criterion, starting from the first unvisited foreground pixel found by
// a row-major scan. Contours of fewer than 2 points are dropped. No
// ordering between contours is promised.
func traceContours(edges *channelImage) []Polyline {
	w, h := edges.W, edges.H
	visited := make([]bool, w*h)
	var contours []Polyline

	isForeground := func(x, y int) bool {
		if x < 0 || x >= w || y < 0 || y >= h {
			return false
		}
		return edges.at(x, y) != 0
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !isForeground(x, y) || visited[y*w+x] {
				continue
			}
			contour := traceBorder(isForeground, visited, w, x, y)
			if len(contour) >= 2 {
				pts := make([]Point, len(contour))
				for i, c := range contour {
					pts[i] = Point{X: float64(c[0]), Y: float64(c[1])}
				}
				contours = append(contours, Polyline{Points: pts})
			}
		}
	}
	return contours
}

// moore8 lists the 8 neighbor offsets in clockwise order starting from
// west, the conventional Moore-neighbor tracing sequence.
var moore8 = [8][2]int{
	{-1, 0}, {-1, -1}, {0, -1}, {1, -1},
	{1, 0}, {1, 1}, {0, 1}, {-1, 1},
}

// traceBorder walks the boundary of the connected foreground component
// containing (startX, startY) using Moore-neighbor tracing with Jacob's
// stopping criterion: the walk ends when it is about to leave the start
// pixel in the same direction as its first move (or when the component
// is a single isolated pixel).
func traceBorder(isForeground func(x, y int) bool, visited []bool, w, startX, startY int) [][2]int {
	border := [][2]int{{startX, startY}}
	visited[startY*w+startX] = true

	// Find the initial "from" direction: the neighbor we conceptually
	// arrived from, i.e. the first background neighbor scanning
	// clockwise from west, per standard Moore tracing initialization.
	backtrack := 0
	for i, d := range moore8 {
		if !isForeground(startX+d[0], startY+d[1]) {
			backtrack = i
			break
		}
	}

	cx, cy := startX, startY
	firstDir := -1 // direction of the first move out of the start pixel
	steps := 0

	for {
		found := false
		for k := 1; k <= 8; k++ {
			dirIdx := (backtrack + k) % 8
			d := moore8[dirIdx]
			nx, ny := cx+d[0], cy+d[1]
			if isForeground(nx, ny) {
				// Leaving the start pixel in the same direction as the
				// first departure ends the trace.
				if cx == startX && cy == startY {
					if dirIdx == firstDir {
						return border
					}
					if firstDir == -1 {
						firstDir = dirIdx
					}
				}
				if !visited[ny*w+nx] {
					visited[ny*w+nx] = true
					border = append(border, [2]int{nx, ny})
				}
				backtrack = (dirIdx + 4) % 8 // face back the way we came
				cx, cy = nx, ny
				found = true
				break
			}
		}
		if !found {
			// Isolated pixel: no foreground neighbor at all.
			return border
		}
		steps++
		if steps > 8*len(visited) {
			// Defensive cutoff: a closed loop should terminate via the
			// Jacob's-criterion check above; this guards against a
			// pathological edge map where it never re-triggers.
			return border
		}
	}
}
