package common

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func TestImportedTextureDecode(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	img.Set(1, 0, color.NRGBA{B: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}

	tex := &ImportedTexture{Name: "normal", Data: buf.Bytes(), Linear: true}
	data, err := tex.Decode()
	if err != nil {
		t.Fatalf("Decode\nhave %v\nwant nil", err)
	}
	if data.Width != 2 || data.Height != 1 || tex.Width != 2 || tex.Height != 1 {
		t.Fatalf("Decode: size\nhave %dx%d\nwant 2x1", data.Width, data.Height)
	}
	if !data.Linear {
		t.Fatal("Decode: Linear flag dropped")
	}
	want := []byte{255, 0, 0, 255, 0, 0, 255, 255}
	if !bytes.Equal(data.Pixels, want) {
		t.Fatalf("Decode: pixels\nhave %v\nwant %v", data.Pixels, want)
	}
	if err := data.Validate(); err != nil {
		t.Fatalf("Validate\nhave %v\nwant nil", err)
	}
}

func TestImportedTextureDecodeErrors(t *testing.T) {
	var nilTex *ImportedTexture
	if _, err := nilTex.Decode(); !errors.Is(err, ErrEmptyTexture) {
		t.Fatalf("nil Decode\nhave %v\nwant %v", err, ErrEmptyTexture)
	}
	if _, err := (&ImportedTexture{Name: "x"}).Decode(); !errors.Is(err, ErrEmptyTexture) {
		t.Fatalf("sourceless Decode\nhave %v\nwant %v", err, ErrEmptyTexture)
	}
	if _, err := (&ImportedTexture{Data: []byte("not an image")}).Decode(); err == nil {
		t.Fatal("garbage Decode: have nil, want error")
	}
	if _, err := (&ImportedTexture{Path: "does/not/exist.png"}).Decode(); err == nil {
		t.Fatal("missing file Decode: have nil, want error")
	}
}

func TestTextureStagingValidate(t *testing.T) {
	if err := SolidTexture([4]uint8{0, 0, 255, 255}, true).Validate(); err != nil {
		t.Fatalf("SolidTexture.Validate\nhave %v\nwant nil", err)
	}
	short := TextureStagingData{Pixels: []byte{1, 2, 3}, Width: 1, Height: 1}
	if err := short.Validate(); err == nil {
		t.Fatal("short texture: have nil, want error")
	}
	if err := (TextureStagingData{}).Validate(); !errors.Is(err, ErrEmptyTexture) {
		t.Fatalf("empty texture\nhave %v\nwant %v", err, ErrEmptyTexture)
	}
}

func TestCoalesce(t *testing.T) {
	if have := Coalesce(0, 0, 3, 4); have != 3 {
		t.Fatalf("Coalesce\nhave %v\nwant 3", have)
	}
	if have := Coalesce("", ""); have != "" {
		t.Fatalf("Coalesce(empty)\nhave %q\nwant \"\"", have)
	}
}
