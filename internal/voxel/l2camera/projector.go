package l2camera

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrPointBehindCamera is returned by Project when the point lies on or
// behind the camera's near plane.
var ErrPointBehindCamera = errors.New("point behind camera")

// MinDepth is the smallest camera-frame Z accepted by Project.
const MinDepth = 1e-4

// UV is a normalised image coordinate. (0,0) is the first pixel corner and
// (1,1) the last; values outside [0,1] are legal and mean the point falls
// outside the frame.
type UV struct {
	U, V float64
}

// Pixel floors the coordinate into a w×h buffer and clamps it into range.
func (uv UV) Pixel(w, h int) (x, y int) {
	return clampIndex(math.Floor(uv.U*float64(w)), w), clampIndex(math.Floor(uv.V*float64(h)), h)
}

func clampIndex(f float64, n int) int {
	if n <= 0 || math.IsNaN(f) || f < 0 {
		return 0
	}
	if f >= float64(n) {
		return n - 1
	}
	return int(f)
}

// Project maps world point p into normalised coordinates of an
// imageWidth×imageHeight buffer. Intrinsics are expressed at their own
// native resolution and rescaled to the buffer.
func Project(p r3.Vec, pose Pose, intr Intrinsics, imageWidth, imageHeight int) (UV, error) {
	if err := intr.Validate(); err != nil {
		return UV{}, err
	}
	if imageWidth <= 0 || imageHeight <= 0 {
		return UV{}, fmt.Errorf("%w: image size %dx%d", ErrInvalidIntrinsics, imageWidth, imageHeight)
	}

	local := pose.ToLocal(p)
	if local.Z <= MinDepth {
		return UV{}, ErrPointBehindCamera
	}

	uPix := intr.FocalLength.X*(local.X/local.Z) + intr.PrincipalPoint.X
	vPix := intr.FocalLength.Y*(local.Y/local.Z) + intr.PrincipalPoint.Y

	w, h := float64(imageWidth), float64(imageHeight)
	uPix *= w / float64(intr.Resolution.X)
	vPix *= h / float64(intr.Resolution.Y)

	return UV{U: uPix / w, V: vPix / h}, nil
}
