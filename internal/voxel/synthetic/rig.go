package synthetic

import (
	"github.com/banshee-data/voxel.paint/internal/voxel/l2camera"
	"github.com/banshee-data/voxel.paint/internal/voxel/pipeline"
)

// FixedRig is a stereo rig whose cameras never move. Both eyes share one
// lens model.
type FixedRig struct {
	Left, Right l2camera.Pose
	Lens        l2camera.Intrinsics
}

var _ pipeline.CameraRig = FixedRig{}

// NewFixedRig returns a rig with both eyes at pose.
func NewFixedRig(pose l2camera.Pose, lens l2camera.Intrinsics) FixedRig {
	return FixedRig{Left: pose, Right: pose, Lens: lens}
}

func (r FixedRig) Pose(eye l2camera.Eye) l2camera.Pose {
	if eye == l2camera.EyeRight {
		return r.Right
	}
	return r.Left
}

func (r FixedRig) Intrinsics(l2camera.Eye) l2camera.Intrinsics { return r.Lens }
