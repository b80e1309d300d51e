package synthetic

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/voxel.paint/internal/voxel/pipeline"
)

// BoxRoom is an axis-aligned room seen from inside. A ray whose origin lies
// inside the box hits the wall it exits through; any other ray misses.
type BoxRoom struct {
	Min, Max r3.Vec
}

var _ pipeline.RayCaster = BoxRoom{}

// NewBoxRoom returns a room with the given corners, in either order.
func NewBoxRoom(a, b r3.Vec) BoxRoom {
	return BoxRoom{
		Min: r3.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)},
		Max: r3.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)},
	}
}

// Contains reports whether p lies inside or on the box.
func (b BoxRoom) Contains(p r3.Vec) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// CastRay intersects ray with the room's walls. The normal points back into
// the room.
func (b BoxRoom) CastRay(ray pipeline.Ray) pipeline.RayHit {
	miss := pipeline.RayHit{Status: pipeline.HitStatusNoHit}
	if !b.Contains(ray.Origin) || r3.Norm(ray.Direction) == 0 {
		return miss
	}

	o, d := ray.Origin, ray.Direction
	best := math.Inf(1)
	var normal r3.Vec
	axes := []struct {
		o, d, lo, hi float64
		unit         r3.Vec
	}{
		{o.X, d.X, b.Min.X, b.Max.X, r3.Vec{X: 1}},
		{o.Y, d.Y, b.Min.Y, b.Max.Y, r3.Vec{Y: 1}},
		{o.Z, d.Z, b.Min.Z, b.Max.Z, r3.Vec{Z: 1}},
	}
	for _, a := range axes {
		var t float64
		switch {
		case a.d > 0:
			t = (a.hi - a.o) / a.d
		case a.d < 0:
			t = (a.lo - a.o) / a.d
		default:
			continue
		}
		if t < best {
			best = t
			normal = r3.Scale(-math.Copysign(1, a.d), a.unit)
		}
	}
	if math.IsInf(best, 1) || best <= 0 {
		return miss
	}

	return pipeline.RayHit{
		Hit:    true,
		Point:  r3.Add(o, r3.Scale(best, d)),
		Normal: normal,
		Status: pipeline.HitStatusHit,
	}
}
