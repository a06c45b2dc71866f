package utils

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

// testPhoto renders a flat mid-gray frame, encoded with the given encoder.
func testPhoto(t *testing.T, width, height int, encode func(*bytes.Buffer, image.Image) error) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	gray := color.NRGBA{R: 128, G: 128, B: 128, A: 255}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, gray)
		}
	}
	var buf bytes.Buffer
	if err := encode(&buf, img); err != nil {
		t.Fatalf("encode test photo: %v", err)
	}
	return buf.Bytes()
}

func encodeJPEG(buf *bytes.Buffer, img image.Image) error {
	return jpeg.Encode(buf, img, &jpeg.Options{Quality: 90})
}

func encodePNG(buf *bytes.Buffer, img image.Image) error {
	return png.Encode(buf, img)
}

func TestWatermark_AltersBottomBand(t *testing.T) {
	src := testPhoto(t, 320, 240, encodeJPEG)

	out, err := Watermark(src, 18.5209, 73.8567)
	if err != nil {
		t.Fatalf("Watermark: %v", err)
	}

	marked, _, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	bounds := marked.Bounds()
	if bounds.Dx() != 320 || bounds.Dy() != 240 {
		t.Fatalf("output is %dx%d, expected the source dimensions", bounds.Dx(), bounds.Dy())
	}

	// The band darkens the bottom rows; the top of the frame stays gray.
	luma := func(x, y int) uint32 {
		r, g, b, _ := marked.At(x, y).RGBA()
		return (r + g + b) / 3
	}
	top := luma(160, 10)
	bottom := luma(160, 235)
	if bottom >= top {
		t.Errorf("bottom luma %d not darker than top %d, expected the watermark band drawn", bottom, top)
	}
}

func TestWatermark_OutputIsJPEG(t *testing.T) {
	src := testPhoto(t, 64, 64, encodePNG)

	out, err := Watermark(src, -33.86785000, 151.20732000)
	if err != nil {
		t.Fatalf("Watermark: %v", err)
	}
	_, format, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("output format = %q, expected jpeg regardless of input format", format)
	}
}

func TestWatermark_TinyImage(t *testing.T) {
	// Band height is clamped to the frame; a tiny image must not panic.
	src := testPhoto(t, 10, 8, encodeJPEG)
	if _, err := Watermark(src, 18.5209, 73.8567); err != nil {
		t.Fatalf("Watermark on a tiny image: %v", err)
	}
}

func TestWatermark_RejectsGarbage(t *testing.T) {
	if _, err := Watermark([]byte("not an image"), 18.5209, 73.8567); err == nil {
		t.Fatal("Watermark accepted non-image bytes")
	}
}
