package l3exposure

import "gonum.org/v1/gonum/stat"

// EstimateRegionBrightness returns the mean linear BT.709 luminance of the
// roi×roi window around (cx, cy). The window starts at cx-roi/2 (integer
// division), so an even roi leans towards lower indices. Pixels outside the
// image are skipped; if none remain the result is 0.
func EstimateRegionBrightness(img Image, cx, cy, roi int) float64 {
	if img == nil || roi <= 0 {
		return 0
	}
	x0, x1 := clipWindow(cx, roi, img.Width())
	y0, y1 := clipWindow(cy, roi, img.Height())
	if x0 >= x1 || y0 >= y1 {
		return 0
	}

	samples := make([]float64, 0, (x1-x0)*(y1-y0))
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			samples = append(samples, img.Pixel(x, y).Linear().Luminance())
		}
	}
	return stat.Mean(samples, nil)
}

// clipWindow returns the half-open range [lo, hi) of the roi-wide window
// around c that lies inside [0, n).
func clipWindow(c, roi, n int) (lo, hi int) {
	half := roi / 2
	lo = max(c-half, 0)
	hi = n
	// c+rest can overflow for a huge roi, so compare against n-rest.
	if rest := roi - half; c < n-rest {
		hi = c + rest
	}
	return lo, hi
}
