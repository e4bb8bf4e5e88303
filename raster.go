package mujou

import (
	"bytes"
	"image"
	"image/draw"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp" // register BMP decoding, as the teacher's image.go does
)

// decodeImage decodes raw image bytes into an RGBA buffer. Treated as a
// black-box primitive per spec.md §1: any format the underlying decoders
// support (PNG, JPEG, GIF, BMP at minimum, via the registered
// image.RegisterFormat decoders plus disintegration/imaging's png/jpeg/
// gif/bmp/tiff support) is acceptable input.
func decodeImage(data []byte) (*image.NRGBA, error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, newImageDecodeError(errors.Wrap(err, "decode"))
	}
	return imaging.Clone(img), nil
}

// downsampleFilter maps a DownsampleFilter to the disintegration/imaging
// resampling kernel it names.
func downsampleFilter(f DownsampleFilter) imaging.ResampleFilter {
	switch f {
	case FilterNearest:
		return imaging.NearestNeighbor
	case FilterTriangle:
		return imaging.Linear
	case FilterCatmullRom:
		return imaging.CatmullRom
	case FilterGaussian:
		return imaging.Gaussian
	case FilterLanczos3:
		return imaging.Lanczos
	default:
		return imaging.Linear
	}
}

// downsample resizes img so its longer side equals workingResolution,
// using the named filter. If filter is FilterDisabled, or the image is
// already at or below the target resolution, img is returned unchanged
// and applied is false.
func downsample(img *image.NRGBA, workingResolution uint32, filter DownsampleFilter) (out *image.NRGBA, applied bool) {
	if filter == FilterDisabled {
		return img, false
	}
	b := img.Bounds()
	longer := b.Dx()
	if b.Dy() > longer {
		longer = b.Dy()
	}
	if uint32(longer) <= workingResolution {
		return img, false
	}

	var newW, newH int
	if b.Dx() >= b.Dy() {
		newW = int(workingResolution)
		newH = 0
	} else {
		newW = 0
		newH = int(workingResolution)
	}
	resized := imaging.Resize(img, newW, newH, downsampleFilter(filter))
	return imaging.Clone(resized), true
}

// gaussianBlur runs a Gaussian blur over img with the given sigma. Treated
// as a black-box primitive per spec.md §1.
func gaussianBlur(img *image.NRGBA, sigma float32) *image.NRGBA {
	return imaging.Blur(img, float64(sigma))
}

// normalizeToNRGBA converts an arbitrary image.Image into *image.NRGBA
// using the standard library's image/draw, per the teacher's
// draw.Draw-based buffer handling (image.go/draw.go). No pipeline stage
// calls it: decodeImage and downsample normalize via imaging.Clone.
func normalizeToNRGBA(img image.Image) *image.NRGBA {
	out := image.NewNRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out
}
