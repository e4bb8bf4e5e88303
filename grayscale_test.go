package mujou

import (
	"image"
	"image/color"
	"testing"
)

const testImgWidth = 10
const testImgHeight = 10

func TestExtractChannelLuminance(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, testImgWidth, testImgHeight))
	for y := 0; y < testImgHeight; y++ {
		for x := 0; x < testImgWidth; x++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}

	ch := extractChannel(img, ChannelLuminance)
	want := luminanceValue(200, 100, 50)
	for y := 0; y < testImgHeight; y++ {
		for x := 0; x < testImgWidth; x++ {
			if got := ch.at(x, y); got != want {
				t.Errorf("pixel (%d,%d): expected %v, got %v", x, y, want, got)
			}
		}
	}
}

func TestExtractChannelRedGreenBlue(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	if got := extractChannel(img, ChannelRed).at(0, 0); got != 10 {
		t.Errorf("red channel: expected 10, got %v", got)
	}
	if got := extractChannel(img, ChannelGreen).at(0, 0); got != 20 {
		t.Errorf("green channel: expected 20, got %v", got)
	}
	if got := extractChannel(img, ChannelBlue).at(0, 0); got != 30 {
		t.Errorf("blue channel: expected 30, got %v", got)
	}
}

func TestSaturationValueGrayIsZero(t *testing.T) {
	if got := saturationValue(128, 128, 128); got != 0 {
		t.Errorf("a gray pixel has zero saturation, got %v", got)
	}
}

func TestSaturationValueBlackIsZero(t *testing.T) {
	if got := saturationValue(0, 0, 0); got != 0 {
		t.Errorf("black must not divide by zero, got %v", got)
	}
}

func TestSaturationValueFullyPure(t *testing.T) {
	if got := saturationValue(255, 0, 0); got != 255 {
		t.Errorf("a fully saturated channel should read 255, got %v", got)
	}
}
