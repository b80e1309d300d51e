package synthetic

import (
	"image"
	"image/color"
	"sync"

	"github.com/banshee-data/voxel.paint/internal/voxel/l3exposure"
	"github.com/banshee-data/voxel.paint/internal/voxel/pipeline"
)

// FrameSource serves one fixed frame. It reports not-ready for the first
// warmup polls, the way a camera stream does while it starts up.
type FrameSource struct {
	mu     sync.Mutex
	img    l3exposure.Image
	warmup int
	polls  int
}

var _ pipeline.ImageSource = (*FrameSource)(nil)

// NewFrameSource serves img after warmup polls.
func NewFrameSource(img l3exposure.Image, warmup int) *FrameSource {
	return &FrameSource{img: img, warmup: warmup}
}

// Ready reports whether the warm-up has elapsed. Every call counts as a poll.
func (f *FrameSource) Ready() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	return f.polls > f.warmup
}

func (f *FrameSource) Image() l3exposure.Image { return f.img }

// GradientImage returns a w×h frame that darkens from left to right and
// carries a mild vertical tint, so the brightness window sees different
// exposure across the frame.
func GradientImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := 230 - 200*x/max(w-1, 1)
			tint := 40 * y / max(h-1, 1)
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(v), G: uint8(v - v/8), B: uint8(min(v+tint, 255)), A: 255})
		}
	}
	return img
}
