package mujou

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func uniformChannel(w, h int, v uint8) *channelImage {
	c := newChannelImage(w, h)
	for i := range c.Pix {
		c.Pix[i] = v
	}
	return c
}

func TestCannyUniformGrayProducesNoEdges(t *testing.T) {
	src := uniformChannel(20, 20, 128)
	out := canny(src, 15, 40)
	assert.Equal(t, 0, countNonZero(out), "a uniform field has zero gradient everywhere")
}

func TestCannySharpEdgeIsDetected(t *testing.T) {
	w, h := 40, 40
	src := newChannelImage(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < w/2 {
				src.set(x, y, 0)
			} else {
				src.set(x, y, 255)
			}
		}
	}
	out := canny(src, 15, 40)
	assert.Greater(t, countNonZero(out), 0, "a sharp vertical edge should be detected")
}

func TestClampThresholds(t *testing.T) {
	low, high := clampThresholds(0, 0.5)
	assert.Equal(t, float32(1.0), high)
	assert.Equal(t, float32(1.0), low)

	low, high = clampThresholds(50, 40)
	assert.Equal(t, float32(40.0), high)
	assert.Equal(t, float32(40.0), low, "low must not exceed the clamped high")

	low, high = clampThresholds(10, 50)
	assert.Equal(t, float32(10.0), low)
	assert.Equal(t, float32(50.0), high)
}

func TestInvertIsInvolution(t *testing.T) {
	src := newChannelImage(5, 5)
	for i := range src.Pix {
		src.Pix[i] = uint8(i * 10)
	}
	original := append([]uint8(nil), src.Pix...)

	invertInPlace(src)
	invertInPlace(src)

	assert.Equal(t, original, src.Pix)
}

func TestHysteresisBoundsChecksEveryDirection(t *testing.T) {
	// A strong pixel at the very corner must not panic when its 8-neighbor
	// scan runs off the edge of the image.
	mag := newFloatImage(3, 3)
	mag.set(0, 0, 100)
	out := hysteresis(mag, 10, 50)
	assert.Equal(t, uint8(255), out.at(0, 0))
}

func TestHysteresisWeakNeighborOfStrongIsPromoted(t *testing.T) {
	mag := newFloatImage(5, 5)
	mag.set(2, 2, 100) // strong
	mag.set(2, 3, 20)  // weak, the strong pixel's direct (south) neighbor
	out := hysteresis(mag, 15, 50)
	assert.Equal(t, uint8(255), out.at(2, 2))
	assert.Equal(t, uint8(255), out.at(2, 3), "a weak pixel connected to a strong one should be promoted")
}

func TestCombineMaxTakesPixelwiseMaximum(t *testing.T) {
	a := newChannelImage(2, 2)
	b := newChannelImage(2, 2)
	a.set(0, 0, 10)
	b.set(0, 0, 200)
	combineMax(a, b)
	assert.Equal(t, uint8(200), a.at(0, 0))
}
