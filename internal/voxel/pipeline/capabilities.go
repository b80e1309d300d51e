package pipeline

import (
	"reflect"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/voxel.paint/internal/voxel/l2camera"
	"github.com/banshee-data/voxel.paint/internal/voxel/l3exposure"
)

// Ray is a world-space half line. Direction need not be normalised.
type Ray struct {
	Origin    r3.Vec
	Direction r3.Vec
}

// RaySource supplies the ray to cast for one configured sampling origin.
// Sources are consulted once per tick, in configuration order.
type RaySource interface {
	Ray() Ray
}

// FixedRay is a RaySource that never moves.
type FixedRay Ray

func (f FixedRay) Ray() Ray { return Ray(f) }

// HitStatus classifies the result of an environment ray cast.
type HitStatus int

const (
	// HitStatusNoHit means the ray did not meet any surface.
	HitStatusNoHit HitStatus = iota
	// HitStatusHit is a valid environment-surface hit.
	HitStatusHit
	// HitStatusOccluded means the hit point is hidden from the depth sensor.
	HitStatusOccluded
	// HitStatusOutsideFrustum means the hit lies outside the sensor frustum.
	HitStatusOutsideFrustum
	// HitStatusNotReady means the environment model is still initialising.
	HitStatusNotReady
)

func (s HitStatus) String() string {
	switch s {
	case HitStatusNoHit:
		return "no_hit"
	case HitStatusHit:
		return "hit"
	case HitStatusOccluded:
		return "occluded"
	case HitStatusOutsideFrustum:
		return "outside_frustum"
	case HitStatusNotReady:
		return "not_ready"
	default:
		return "unknown"
	}
}

// RayHit is the result of RayCaster.CastRay.
type RayHit struct {
	Hit    bool
	Point  r3.Vec
	Normal r3.Vec
	Status HitStatus
}

// RayCaster casts rays against the live environment reconstruction.
type RayCaster interface {
	CastRay(ray Ray) RayHit
}

// ImageSource exposes the most recent camera frame. Image is only called
// once Ready has returned true.
type ImageSource interface {
	Ready() bool
	Image() l3exposure.Image
}

// CameraRig supplies the pose and lens model of each camera.
type CameraRig interface {
	Pose(eye l2camera.Eye) l2camera.Pose
	Intrinsics(eye l2camera.Eye) l2camera.Intrinsics
}

// VoxelHandle is a rendered voxel whose material colour can be set.
type VoxelHandle interface {
	SetColor(c l3exposure.Color)
}

// VoxelFactory instantiates the visual representation of a voxel cell.
type VoxelFactory interface {
	CreateVoxel(center r3.Vec, edge float64) VoxelHandle
}

// PlacementSink records placed voxels. It is an adapter, not a domain
// layer; implementations live outside this package (e.g. storage/sqlite).
type PlacementSink interface {
	RecordPlacement(p Placement) error
}

// TickObserver receives the report of every processed tick.
type TickObserver interface {
	ObserveTick(report TickReport)
}

// isNilInterface checks if an interface value is nil or contains a nil pointer.
func isNilInterface(i interface{}) bool {
	if i == nil {
		return true
	}
	v := reflect.ValueOf(i)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// TickObservers fans a report out to several observers, in order.
type TickObservers []TickObserver

func (obs TickObservers) ObserveTick(r TickReport) {
	for _, o := range obs {
		if !isNilInterface(o) {
			o.ObserveTick(r)
		}
	}
}
