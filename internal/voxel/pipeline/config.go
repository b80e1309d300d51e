package pipeline

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/voxel.paint/internal/config"
	"github.com/banshee-data/voxel.paint/internal/voxel/l2camera"
	"github.com/banshee-data/voxel.paint/internal/voxel/l3exposure"
)

// SourcesFromScan turns the configured ray sample origins into fixed ray
// sources, preserving their order.
func SourcesFromScan(cfg *config.ScanConfig) []RaySource {
	sources := make([]RaySource, 0, len(cfg.RaySampleOrigins))
	for _, o := range cfg.RaySampleOrigins {
		sources = append(sources, FixedRay{
			Origin:    r3.Vec{X: o.Origin[0], Y: o.Origin[1], Z: o.Origin[2]},
			Direction: r3.Vec{X: o.Direction[0], Y: o.Direction[1], Z: o.Direction[2]},
		})
	}
	return sources
}

// ConfigFromScan fills the tuning part of an OrchestratorConfig from cfg
// and builds a fresh exposure filter for the session. Collaborators
// (caster, images, camera, voxels, sink, observer) are left for the
// caller to set.
func ConfigFromScan(cfg *config.ScanConfig) (OrchestratorConfig, error) {
	eye, err := l2camera.ParseEye(cfg.GetCameraEye())
	if err != nil {
		return OrchestratorConfig{}, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	filter, err := l3exposure.NewFilter(l3exposure.ParamsFromScan(cfg))
	if err != nil {
		return OrchestratorConfig{}, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return OrchestratorConfig{
		Mode:      SamplingMode(cfg.GetSamplingMode()),
		Sources:   SourcesFromScan(cfg),
		Eye:       eye,
		VoxelSize: cfg.GetVoxelSize(),
		ROISize:   cfg.GetROISize(),
		Filter:    filter,
	}, nil
}
