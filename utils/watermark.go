package utils

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Watermark draws two lines of latitude/longitude text onto the image
// pixels (not metadata) and returns the re-encoded JPEG. Callers upload
// the original bytes unmodified when no GPS fix exists.
func Watermark(imageBytes []byte, lat, lon float64) ([]byte, error) {
	src, err := imaging.Decode(bytes.NewReader(imageBytes), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	img := imaging.Clone(src)
	bounds := img.Bounds()

	lines := []string{
		fmt.Sprintf("Lat: %.8f", lat),
		fmt.Sprintf("Lon: %.8f", lon),
	}

	face := basicfont.Face7x13
	lineHeight := face.Metrics().Height.Ceil() + 4
	pad := 6
	bandHeight := lineHeight*len(lines) + pad*2
	if bandHeight > bounds.Dy() {
		bandHeight = bounds.Dy()
	}

	// darkened band behind the text keeps it readable on bright scenes
	band := image.Rect(bounds.Min.X, bounds.Max.Y-bandHeight, bounds.Max.X, bounds.Max.Y)
	draw.Draw(img, band, &image.Uniform{C: color.NRGBA{A: 150}}, image.Point{}, draw.Over)

	for i, line := range lines {
		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(color.White),
			Face: face,
			Dot: fixed.P(
				bounds.Min.X+pad,
				bounds.Max.Y-bandHeight+pad+(i+1)*lineHeight-4,
			),
		}
		d.DrawString(line)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return nil, fmt.Errorf("encode watermarked image: %w", err)
	}
	return buf.Bytes(), nil
}
