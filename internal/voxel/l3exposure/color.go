package l3exposure

import (
	"image/color"
	"math"
)

// Color is an RGBA value with channels nominally in [0,1]. Unless stated
// otherwise a Color is in display (sRGB gamma) space.
type Color struct {
	R, G, B, A float64
}

// FromStd converts a standard library colour (premultiplied 16-bit) into a
// display-space Color.
func FromStd(c color.Color) Color {
	nc := color.NRGBA64Model.Convert(c).(color.NRGBA64)
	return Color{
		R: float64(nc.R) / 0xffff,
		G: float64(nc.G) / 0xffff,
		B: float64(nc.B) / 0xffff,
		A: float64(nc.A) / 0xffff,
	}
}

// Std converts c into an 8-bit non-premultiplied colour, clamping first.
func (c Color) Std() color.NRGBA {
	c = c.Clamp01()
	return color.NRGBA{
		R: uint8(math.Round(c.R * 255)),
		G: uint8(math.Round(c.G * 255)),
		B: uint8(math.Round(c.B * 255)),
		A: uint8(math.Round(c.A * 255)),
	}
}

// Linear converts the RGB channels from sRGB gamma to linear space.
// Alpha is unchanged.
func (c Color) Linear() Color {
	return Color{R: gammaToLinear(c.R), G: gammaToLinear(c.G), B: gammaToLinear(c.B), A: c.A}
}

// Gamma converts the RGB channels from linear to sRGB gamma space.
// Alpha is unchanged.
func (c Color) Gamma() Color {
	return Color{R: linearToGamma(c.R), G: linearToGamma(c.G), B: linearToGamma(c.B), A: c.A}
}

// ScaleRGB multiplies the colour channels by f, leaving alpha alone.
func (c Color) ScaleRGB(f float64) Color {
	return Color{R: c.R * f, G: c.G * f, B: c.B * f, A: c.A}
}

// Clamp01 clamps every channel, alpha included, to [0,1].
func (c Color) Clamp01() Color {
	return Color{R: clamp01(c.R), G: clamp01(c.G), B: clamp01(c.B), A: clamp01(c.A)}
}

// Luminance returns the BT.709 relative luminance of a linear-space colour.
func (c Color) Luminance() float64 {
	return 0.2126*c.R + 0.7152*c.G + 0.0722*c.B
}

// IEC 61966-2-1 transfer functions.
func gammaToLinear(v float64) float64 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

func linearToGamma(v float64) float64 {
	if v <= 0.0031308 {
		return v * 12.92
	}
	return 1.055*math.Pow(v, 1/2.4) - 0.055
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
