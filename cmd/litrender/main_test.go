package main

import (
	"image"
	"image/color"
	"testing"
)

func TestDownscale(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 400, 200))
	for y := range 200 {
		for x := range 400 {
			img.SetRGBA(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}

	small := downscale(img, 100)
	if have := small.Bounds().Size(); have != image.Pt(100, 50) {
		t.Fatalf("size\nhave %v\nwant (100,50)", have)
	}
	if have, want := small.RGBAAt(50, 25), (color.RGBA{R: 200, G: 100, B: 50, A: 255}); have != want {
		t.Fatalf("pixel\nhave %v\nwant %v", have, want)
	}

	if same := downscale(img, 1000); same != img {
		t.Fatal("downscale larger than the image should return it unchanged")
	}
}
