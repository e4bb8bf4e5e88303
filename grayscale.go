package mujou

import (
	"image"

	"github.com/mujou/mujou-go/utils"
)

// channelImage is a single-channel 8-bit image, one byte per pixel,
// row-major. It is the input shape the Canny operator runs on.
type channelImage struct {
	W, H int
	Pix  []uint8
}

func newChannelImage(w, h int) *channelImage {
	return &channelImage{W: w, H: h, Pix: make([]uint8, w*h)}
}

func (c *channelImage) at(x, y int) uint8 {
	return c.Pix[y*c.W+x]
}

func (c *channelImage) set(x, y int, v uint8) {
	c.Pix[y*c.W+x] = v
}

// extractChannel derives a single-channel 8-bit image from blurred RGBA
// for the named channel, per spec.md §4.2 step 1. Generalizes the
// teacher's Grayscale method (grayscale.go), which hard-coded Rec.601-ish
// luminance weights; here each EdgeChannel selects its own formula.
func extractChannel(img *image.NRGBA, ch EdgeChannel) *channelImage {
	b := img.Bounds()
	dx, dy := b.Dx(), b.Dy()
	out := newChannelImage(dx, dy)

	for y := 0; y < dy; y++ {
		for x := 0; x < dx; x++ {
			i := img.PixOffset(x+b.Min.X, y+b.Min.Y)
			r, g, bch := img.Pix[i], img.Pix[i+1], img.Pix[i+2]
			out.set(x, y, channelValue(ch, r, g, bch))
		}
	}
	return out
}

// channelValue computes the single-channel value for one pixel.
func channelValue(ch EdgeChannel, r, g, b uint8) uint8 {
	switch ch {
	case ChannelRed:
		return r
	case ChannelGreen:
		return g
	case ChannelBlue:
		return b
	case ChannelSaturation:
		return saturationValue(r, g, b)
	default: // ChannelLuminance
		return luminanceValue(r, g, b)
	}
}

// luminanceValue applies Rec.709 weighting, per spec.md §4.2.
func luminanceValue(r, g, b uint8) uint8 {
	lum := 0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(b)
	if lum > 255 {
		lum = 255
	}
	return uint8(lum + 0.5)
}

// saturationValue computes (max-min)/max scaled to [0,255]; 0 when max=0.
func saturationValue(r, g, b uint8) uint8 {
	max := utils.Max(utils.Max(r, g), b)
	if max == 0 {
		return 0
	}
	min := utils.Min(utils.Min(r, g), b)
	sat := float64(max-min) / float64(max)
	return uint8(sat*255 + 0.5)
}
