package l2camera

import (
	"errors"
	"fmt"
	"image"
	"math"
	"strings"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrInvalidPose is returned for a pose whose rotation is not a usable
	// quaternion or whose position is not finite.
	ErrInvalidPose = errors.New("invalid camera pose")
	// ErrInvalidIntrinsics is returned for intrinsics with non-positive
	// focal length or resolution.
	ErrInvalidIntrinsics = errors.New("invalid camera intrinsics")
)

// RotationNormTolerance is how far a pose quaternion's norm may drift from 1
// before ValidatePose rejects it.
const RotationNormTolerance = 0.01

// Eye selects which physical camera of a stereo rig supplies the image.
type Eye int

const (
	EyeLeft Eye = iota
	EyeRight
)

// ParseEye maps "left" and "right" (case-insensitive) to an Eye.
func ParseEye(s string) (Eye, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "left":
		return EyeLeft, nil
	case "right":
		return EyeRight, nil
	default:
		return EyeLeft, fmt.Errorf("unknown camera eye %q", s)
	}
}

func (e Eye) String() string {
	switch e {
	case EyeLeft:
		return "left"
	case EyeRight:
		return "right"
	default:
		return fmt.Sprintf("eye(%d)", int(e))
	}
}

// Pose is the camera's world-space position and orientation. The camera
// looks along its local +Z axis with +X right and +Y along image rows.
type Pose struct {
	Position r3.Vec
	Rotation r3.Rotation
}

// IdentityRotation is the rotation that leaves every vector unchanged.
func IdentityRotation() r3.Rotation {
	return r3.Rotation{Real: 1}
}

// NewPose builds a pose from a position and an axis-angle orientation.
func NewPose(position r3.Vec, angle float64, axis r3.Vec) Pose {
	if angle == 0 || r3.Norm(axis) == 0 {
		return Pose{Position: position, Rotation: IdentityRotation()}
	}
	return Pose{Position: position, Rotation: r3.NewRotation(angle, axis)}
}

// ValidatePose checks that the rotation is close to a unit quaternion and
// that all components are finite.
func ValidatePose(p Pose) error {
	if !finiteVec(p.Position) {
		return fmt.Errorf("%w: position %v is not finite", ErrInvalidPose, p.Position)
	}
	q := quat.Number(p.Rotation)
	if quat.IsNaN(q) || quat.IsInf(q) {
		return fmt.Errorf("%w: rotation is not finite", ErrInvalidPose)
	}
	if n := quat.Abs(q); math.Abs(n-1) > RotationNormTolerance {
		return fmt.Errorf("%w: rotation norm %.4f is not unit", ErrInvalidPose, n)
	}
	return nil
}

// ToLocal transforms a world point into the camera frame:
// inverse(rotation) * (p - position).
func (p Pose) ToLocal(world r3.Vec) r3.Vec {
	q := quat.Number(p.Rotation)
	if n := quat.Abs(q); n != 0 && n != 1 {
		q = quat.Scale(1/n, q)
	}
	inv := r3.Rotation(quat.Conj(q))
	return inv.Rotate(r3.Sub(world, p.Position))
}

// Intrinsics describes the lens at its native sensor resolution.
type Intrinsics struct {
	FocalLength    r2.Vec      // fx, fy in pixels
	PrincipalPoint r2.Vec      // cx, cy in pixels
	Resolution     image.Point // native sensor width and height
}

// Validate reports malformed intrinsics.
func (in Intrinsics) Validate() error {
	if in.FocalLength.X <= 0 || in.FocalLength.Y <= 0 {
		return fmt.Errorf("%w: focal length %v must be positive", ErrInvalidIntrinsics, in.FocalLength)
	}
	if in.Resolution.X <= 0 || in.Resolution.Y <= 0 {
		return fmt.Errorf("%w: resolution %v must be positive", ErrInvalidIntrinsics, in.Resolution)
	}
	return nil
}

func finiteVec(v r3.Vec) bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
