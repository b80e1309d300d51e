package l3exposure

import (
	"fmt"
	"image"
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"io"
)

// Image is a pixel-addressable camera frame. Pixel is only called with
// 0 <= x < Width() and 0 <= y < Height().
type Image interface {
	Width() int
	Height() int
	Pixel(x, y int) Color
}

// RasterImage is an Image held as a row-major slice of display-space colours.
type RasterImage struct {
	W, H   int
	Pixels []Color // Pixels[y*W + x]
}

// NewRasterImage allocates a w×h image filled with fill.
func NewRasterImage(w, h int, fill Color) *RasterImage {
	px := make([]Color, w*h)
	for i := range px {
		px[i] = fill
	}
	return &RasterImage{W: w, H: h, Pixels: px}
}

func (r *RasterImage) Width() int  { return r.W }
func (r *RasterImage) Height() int { return r.H }

func (r *RasterImage) Pixel(x, y int) Color {
	return r.Pixels[y*r.W+x]
}

// Set writes one pixel.
func (r *RasterImage) Set(x, y int, c Color) {
	r.Pixels[y*r.W+x] = c
}

// FromImage copies a standard library image into a RasterImage.
func FromImage(img image.Image) *RasterImage {
	b := img.Bounds()
	out := &RasterImage{W: b.Dx(), H: b.Dy(), Pixels: make([]Color, b.Dx()*b.Dy())}
	for y := 0; y < out.H; y++ {
		for x := 0; x < out.W; x++ {
			out.Pixels[y*out.W+x] = FromStd(img.At(x+b.Min.X, y+b.Min.Y))
		}
	}
	return out
}

// DecodeImage decodes a PNG or JPEG stream into a RasterImage.
func DecodeImage(r io.Reader) (*RasterImage, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return FromImage(img), nil
}
