package l2camera

import (
	"errors"
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

func vgaIntrinsics() Intrinsics {
	return Intrinsics{
		FocalLength:    r2.Vec{X: 500, Y: 500},
		PrincipalPoint: r2.Vec{X: 320, Y: 240},
		Resolution:     image.Point{X: 640, Y: 480},
	}
}

func TestProject_OpticalAxisHitsImageCentre(t *testing.T) {
	pose := Pose{Rotation: IdentityRotation()}

	uv, err := Project(r3.Vec{Z: 1}, pose, vgaIntrinsics(), 640, 480)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, uv.U, 1e-12)
	assert.InDelta(t, 0.5, uv.V, 1e-12)
}

func TestProject_TranslatedCamera(t *testing.T) {
	pose := Pose{Position: r3.Vec{X: 2, Y: -1, Z: 3}, Rotation: IdentityRotation()}

	// Local point (0,0,1) relative to the camera.
	uv, err := Project(r3.Vec{X: 2, Y: -1, Z: 4}, pose, vgaIntrinsics(), 640, 480)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, uv.U, 1e-12)
	assert.InDelta(t, 0.5, uv.V, 1e-12)
}

func TestProject_RotatedCamera(t *testing.T) {
	// Yaw the camera 90° about +Y so its forward axis points along world +X.
	pose := NewPose(r3.Vec{}, math.Pi/2, r3.Vec{Y: 1})

	uv, err := Project(r3.Vec{X: 2}, pose, vgaIntrinsics(), 640, 480)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, uv.U, 1e-9)
	assert.InDelta(t, 0.5, uv.V, 1e-9)

	// A point straight ahead of an unrotated camera is now beside it.
	_, err = Project(r3.Vec{Z: 2}, pose, vgaIntrinsics(), 640, 480)
	assert.ErrorIs(t, err, ErrPointBehindCamera)
}

func TestProject_OffAxis(t *testing.T) {
	pose := Pose{Rotation: IdentityRotation()}

	// x/z = 0.2 → uPix = 500*0.2 + 320 = 420 → u = 420/640.
	uv, err := Project(r3.Vec{X: 0.4, Y: -0.2, Z: 2}, pose, vgaIntrinsics(), 640, 480)
	require.NoError(t, err)
	assert.InDelta(t, 420.0/640.0, uv.U, 1e-12)
	assert.InDelta(t, 190.0/480.0, uv.V, 1e-12)
}

func TestProject_ResolutionScaling(t *testing.T) {
	pose := Pose{Rotation: IdentityRotation()}
	p := r3.Vec{X: 0.4, Y: -0.2, Z: 2}

	native, err := Project(p, pose, vgaIntrinsics(), 640, 480)
	require.NoError(t, err)
	scaled, err := Project(p, pose, vgaIntrinsics(), 1280, 960)
	require.NoError(t, err)

	// Normalised coordinates do not depend on the buffer size.
	assert.InDelta(t, native.U, scaled.U, 1e-12)
	assert.InDelta(t, native.V, scaled.V, 1e-12)
}

func TestProject_OutOfFrameIsNotClamped(t *testing.T) {
	pose := Pose{Rotation: IdentityRotation()}

	uv, err := Project(r3.Vec{X: 5, Y: 5, Z: 1}, pose, vgaIntrinsics(), 640, 480)
	require.NoError(t, err)
	assert.Greater(t, uv.U, 1.0)
	assert.Greater(t, uv.V, 1.0)
}

func TestProject_Rejections(t *testing.T) {
	pose := Pose{Rotation: IdentityRotation()}

	tests := []struct {
		name string
		p    r3.Vec
		want error
	}{
		{"behind", r3.Vec{Z: -1}, ErrPointBehindCamera},
		{"on camera plane", r3.Vec{X: 1}, ErrPointBehindCamera},
		{"at epsilon", r3.Vec{Z: MinDepth}, ErrPointBehindCamera},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Project(tt.p, pose, vgaIntrinsics(), 640, 480)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}

	_, err := Project(r3.Vec{Z: 1}, pose, Intrinsics{}, 640, 480)
	assert.ErrorIs(t, err, ErrInvalidIntrinsics)

	_, err = Project(r3.Vec{Z: 1}, pose, vgaIntrinsics(), 0, 480)
	assert.ErrorIs(t, err, ErrInvalidIntrinsics)
}

func TestUVPixel(t *testing.T) {
	tests := []struct {
		uv   UV
		x, y int
	}{
		{UV{0.5, 0.5}, 320, 240},
		{UV{0, 0}, 0, 0},
		{UV{1, 1}, 639, 479},
		{UV{-0.3, 1.7}, 0, 479},
		{UV{math.NaN(), 0.25}, 0, 120},
	}
	for _, tt := range tests {
		x, y := tt.uv.Pixel(640, 480)
		assert.Equal(t, tt.x, x, "x for %v", tt.uv)
		assert.Equal(t, tt.y, y, "y for %v", tt.uv)
	}
}

func TestValidatePose(t *testing.T) {
	assert.NoError(t, ValidatePose(Pose{Rotation: IdentityRotation()}))
	assert.NoError(t, ValidatePose(NewPose(r3.Vec{X: 1}, 1.2, r3.Vec{X: 1, Y: 1})))

	assert.ErrorIs(t, ValidatePose(Pose{}), ErrInvalidPose, "zero quaternion")
	assert.ErrorIs(t, ValidatePose(Pose{Position: r3.Vec{X: math.Inf(1)}, Rotation: IdentityRotation()}), ErrInvalidPose)
}

func TestParseEye(t *testing.T) {
	e, err := ParseEye("Right")
	require.NoError(t, err)
	assert.Equal(t, EyeRight, e)

	e, err = ParseEye("")
	require.NoError(t, err)
	assert.Equal(t, EyeLeft, e)

	_, err = ParseEye("centre")
	assert.Error(t, err)
	assert.Equal(t, "right", EyeRight.String())
}
