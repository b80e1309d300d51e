package synthetic

import (
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/voxel.paint/internal/voxel/pipeline"
)

// SweepRay is a ray source that turns its direction by Step radians about
// Axis on every call, so successive ticks paint a band of the room.
type SweepRay struct {
	Origin    r3.Vec
	Direction r3.Vec
	Axis      r3.Vec
	Step      float64

	mu    sync.Mutex
	calls int
}

var _ pipeline.RaySource = (*SweepRay)(nil)

// NewSweepRay creates a sweeping source starting at direction.
func NewSweepRay(origin, direction, axis r3.Vec, step float64) *SweepRay {
	return &SweepRay{Origin: origin, Direction: direction, Axis: axis, Step: step}
}

// Ray returns the current ray and advances the sweep.
func (s *SweepRay) Ray() pipeline.Ray {
	s.mu.Lock()
	n := s.calls
	s.calls++
	s.mu.Unlock()

	dir := s.Direction
	if angle := s.Step * float64(n); angle != 0 && r3.Norm(s.Axis) > 0 {
		dir = r3.NewRotation(angle, s.Axis).Rotate(dir)
	}
	return pipeline.Ray{Origin: s.Origin, Direction: dir}
}

// SweepSources wraps each fixed source in a SweepRay turning about axis.
func SweepSources(sources []pipeline.RaySource, axis r3.Vec, step float64) []pipeline.RaySource {
	out := make([]pipeline.RaySource, 0, len(sources))
	for _, src := range sources {
		r := src.Ray()
		out = append(out, NewSweepRay(r.Origin, r.Direction, axis, step))
	}
	return out
}
