package mujou

import (
	"image"
	"math"
)

// cannyInternalSigma is the Gaussian smoothing sigma applied inside the
// Canny operator itself (spec.md §4.2), independent of the pipeline's own
// blur stage.
const cannyInternalSigma = 1.4

// detectEdges runs the multi-channel Canny pass described in spec.md §4.2
// over blurred RGBA and returns a binary edge map (0/255) of identical
// dimensions, plus the edge-pixel count before any inversion and, when
// invert is requested, the invert step's metrics (pixels processed and
// wall-clock elapsed time).
func detectEdges(img *image.NRGBA, cfg PipelineConfig) (edges *channelImage, preInvertEdgeCount int, invertMetrics *StageMetrics) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	combined := newChannelImage(w, h)
	for ch := EdgeChannel(1); ch != 0 && ch <= ChannelSaturation; ch <<= 1 {
		if !cfg.EdgeChannels.Has(ch) {
			continue
		}
		single := extractChannel(img, ch)
		edgeMap := canny(single, cfg.CannyLow, cfg.CannyHigh)
		combineMax(combined, edgeMap)
	}

	preInvertEdgeCount = countNonZero(combined)

	if cfg.Invert {
		start := nowMono()
		invertInPlace(combined)
		invertMetrics = &StageMetrics{
			PixelsProcessed: w * h,
			Elapsed:         sinceMono(start),
		}
	}

	return combined, preInvertEdgeCount, invertMetrics
}

// clampThresholds applies spec.md §4.2's mandatory threshold clamp:
// high' = max(high, 1.0); low' = min(max(low, 1.0), high').
func clampThresholds(low, high float32) (float32, float32) {
	if high < 1.0 {
		high = 1.0
	}
	if low < 1.0 {
		low = 1.0
	}
	if low > high {
		low = high
	}
	return low, high
}

// canny runs the full Canny edge detector (Gaussian smoothing, Sobel
// gradients, non-maximum suppression, double-threshold hysteresis) on a
// single-channel image, returning a binary (0/255) edge map.
func canny(src *channelImage, low, high float32) *channelImage {
	low, high = clampThresholds(low, high)

	smoothed := gaussianSmoothChannel(src, cannyInternalSigma)
	gx, gy := sobelGradients(smoothed)
	mag, dir := gradientMagnitudeDirection(gx, gy)
	thin := nonMaxSuppress(mag, dir)
	return hysteresis(thin, low, high)
}

// gaussianSmoothChannel applies a separable Gaussian blur to a
// single-channel image.
func gaussianSmoothChannel(src *channelImage, sigma float64) *channelImage {
	kernel := gaussianKernel1D(sigma)
	tmp := newChannelImage(src.W, src.H)
	out := newChannelImage(src.W, src.H)

	radius := len(kernel) / 2
	// Horizontal pass.
	for y := 0; y < src.H; y++ {
		for x := 0; x < src.W; x++ {
			var acc float64
			for k := -radius; k <= radius; k++ {
				sx := clampInt(x+k, 0, src.W-1)
				acc += float64(src.at(sx, y)) * kernel[k+radius]
			}
			tmp.set(x, y, clampToByte(acc))
		}
	}
	// Vertical pass.
	for y := 0; y < src.H; y++ {
		for x := 0; x < src.W; x++ {
			var acc float64
			for k := -radius; k <= radius; k++ {
				sy := clampInt(y+k, 0, src.H-1)
				acc += float64(tmp.at(x, sy)) * kernel[k+radius]
			}
			out.set(x, y, clampToByte(acc))
		}
	}
	return out
}

// gaussianKernel1D builds a normalized 1D Gaussian kernel covering ±3σ.
func gaussianKernel1D(sigma float64) []float64 {
	radius := int(math.Ceil(sigma * 3))
	if radius < 1 {
		radius = 1
	}
	size := 2*radius + 1
	kernel := make([]float64, size)
	var sum float64
	for i := range kernel {
		x := float64(i - radius)
		v := math.Exp(-(x * x) / (2 * sigma * sigma))
		kernel[i] = v
		sum += v
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

type floatImage struct {
	W, H int
	Pix  []float64
}

func newFloatImage(w, h int) *floatImage {
	return &floatImage{W: w, H: h, Pix: make([]float64, w*h)}
}

func (f *floatImage) at(x, y int) float64 { return f.Pix[y*f.W+x] }
func (f *floatImage) set(x, y int, v float64) {
	f.Pix[y*f.W+x] = v
}

// sobelGradients computes the horizontal and vertical Sobel gradients of
// src. Unlike the teacher's SobelFilter (sobel.go), which flattened the
// image into a 1D buffer and indexed it with raw pixel-offset arithmetic
// that can run off the end of a row, this applies the kernel with
// explicit (x, y) bounds-checking at the border — the same defect class
// spec.md §4.2 calls out for the hysteresis step.
func sobelGradients(src *channelImage) (gx, gy *floatImage) {
	gx = newFloatImage(src.W, src.H)
	gy = newFloatImage(src.W, src.H)

	for y := 0; y < src.H; y++ {
		for x := 0; x < src.W; x++ {
			var sx, sy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					px := clampInt(x+kx, 0, src.W-1)
					py := clampInt(y+ky, 0, src.H-1)
					v := float64(src.at(px, py))
					sx += v * float64(kernelX[ky+1][kx+1])
					sy += v * float64(kernelY[ky+1][kx+1])
				}
			}
			gx.set(x, y, sx)
			gy.set(x, y, sy)
		}
	}
	return gx, gy
}

// kernelX and kernelY are the standard 3x3 Sobel kernels, the same shape
// the teacher uses in sobel.go.
var (
	kernelX = [3][3]int32{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	kernelY = [3][3]int32{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}
)

// gradientMagnitudeDirection computes per-pixel magnitude and direction
// (rounded to one of 4 sectors: 0°, 45°, 90°, 135°) from gx/gy.
func gradientMagnitudeDirection(gx, gy *floatImage) (mag *floatImage, dir *channelImage) {
	mag = newFloatImage(gx.W, gx.H)
	dir = newChannelImage(gx.W, gx.H)

	for y := 0; y < gx.H; y++ {
		for x := 0; x < gx.W; x++ {
			vx, vy := gx.at(x, y), gy.at(x, y)
			mag.set(x, y, math.Hypot(vx, vy))

			angle := math.Atan2(vy, vx) * 180 / math.Pi
			if angle < 0 {
				angle += 180
			}
			var sector uint8
			switch {
			case angle < 22.5 || angle >= 157.5:
				sector = 0 // horizontal
			case angle < 67.5:
				sector = 1 // 45°
			case angle < 112.5:
				sector = 2 // vertical
			default:
				sector = 3 // 135°
			}
			dir.set(x, y, sector)
		}
	}
	return mag, dir
}

// nonMaxSuppress thins mag by keeping only local maxima along the
// gradient direction.
func nonMaxSuppress(mag *floatImage, dir *channelImage) *floatImage {
	out := newFloatImage(mag.W, mag.H)
	for y := 0; y < mag.H; y++ {
		for x := 0; x < mag.W; x++ {
			m := mag.at(x, y)
			var n1x, n1y, n2x, n2y int
			switch dir.at(x, y) {
			case 0:
				n1x, n1y, n2x, n2y = x-1, y, x+1, y
			case 1:
				n1x, n1y, n2x, n2y = x-1, y+1, x+1, y-1
			case 2:
				n1x, n1y, n2x, n2y = x, y-1, x, y+1
			default:
				n1x, n1y, n2x, n2y = x-1, y-1, x+1, y+1
			}

			neighborMag := func(nx, ny int) float64 {
				if nx < 0 || nx >= mag.W || ny < 0 || ny >= mag.H {
					return 0
				}
				return mag.at(nx, ny)
			}
			if m >= neighborMag(n1x, n1y) && m >= neighborMag(n2x, n2y) {
				out.set(x, y, m)
			}
		}
	}
	return out
}

// hysteresis applies double-threshold hysteresis to a non-max-suppressed
// magnitude image, producing a binary (0/255) edge map.
//
// This is the step spec.md §4.2 calls out as commonly broken: neighbor
// scans must bounds-check every one of the 8 cardinal/diagonal directions
// rather than trusting unsigned wraparound at x==0 or y==0, and all 8
// neighbors (not just 6, which is a common omission that breaks diagonal
// continuity) must be visited during the BFS.
func hysteresis(mag *floatImage, low, high float32) *channelImage {
	w, h := mag.W, mag.H
	out := newChannelImage(w, h)
	visited := make([]bool, w*h)

	var queue []int
	idx := func(x, y int) int { return y*w + x }

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if mag.at(x, y) >= float64(high) {
				out.set(x, y, 255)
				visited[idx(x, y)] = true
				queue = append(queue, idx(x, y))
			}
		}
	}

	for len(queue) > 0 {
		cur := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		cx, cy := cur%w, cur/w

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				nx, ny := cx+dx, cy+dy
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				ni := idx(nx, ny)
				if visited[ni] {
					continue
				}
				if mag.at(nx, ny) >= float64(low) {
					visited[ni] = true
					out.set(nx, ny, 255)
					queue = append(queue, ni)
				}
			}
		}
	}
	return out
}

// combineMax combines src into dst by pixel-wise maximum.
func combineMax(dst, src *channelImage) {
	for i := range dst.Pix {
		if src.Pix[i] > dst.Pix[i] {
			dst.Pix[i] = src.Pix[i]
		}
	}
}

// invertInPlace bitwise-NOTs every pixel (255->0, 0->255). Applying it
// twice is the identity, per spec.md §8's invert-involution property.
func invertInPlace(img *channelImage) {
	for i, v := range img.Pix {
		img.Pix[i] = 255 - v
	}
}

func countNonZero(img *channelImage) int {
	n := 0
	for _, v := range img.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampToByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
