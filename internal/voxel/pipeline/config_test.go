package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/voxel.paint/internal/config"
	"github.com/banshee-data/voxel.paint/internal/voxel/l2camera"
	"github.com/banshee-data/voxel.paint/internal/voxel/l3exposure"
)

func TestSourcesFromScan_KeepsOrder(t *testing.T) {
	cfg := config.MustLoadDefaultConfig()

	sources := SourcesFromScan(cfg)
	require.Len(t, sources, 3)
	assert.Equal(t, Ray{Origin: r3.Vec{Y: 1.5}, Direction: r3.Vec{Y: -0.2, Z: 1}}, sources[0].Ray())
	assert.Equal(t, Ray{Origin: r3.Vec{Y: 1.5}, Direction: r3.Vec{X: -0.3, Y: -0.2, Z: 1}}, sources[1].Ray())
	assert.Equal(t, Ray{Origin: r3.Vec{Y: 1.5}, Direction: r3.Vec{X: 0.3, Y: -0.2, Z: 1}}, sources[2].Ray())
}

func TestConfigFromScan(t *testing.T) {
	oc, err := ConfigFromScan(config.MustLoadDefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, SamplingModeEnvironment, oc.Mode)
	assert.Equal(t, l2camera.EyeLeft, oc.Eye)
	assert.Equal(t, 0.05, oc.VoxelSize)
	assert.Equal(t, 5, oc.ROISize)
	require.NotNil(t, oc.Filter)
	assert.Equal(t, l3exposure.InitialCorrection, oc.Filter.State())
	assert.Equal(t, l3exposure.DefaultCorrectionParams(), oc.Filter.Params())
	assert.Len(t, oc.Sources, 3)
}

func TestConfigFromScan_EmptyConfigHasNoSources(t *testing.T) {
	oc, err := ConfigFromScan(config.EmptyScanConfig())
	require.NoError(t, err)
	assert.Empty(t, oc.Sources)

	oc.Caster = &pointCaster{status: map[Ray]HitStatus{}}
	oc.Images = &fakeImages{}
	oc.Camera = fakeRig{}
	oc.Voxels = &recordingFactory{}
	_, err = NewSamplingOrchestrator(oc)
	assert.True(t, errors.Is(err, ErrConfiguration))
}

func TestConfigFromScan_BadEye(t *testing.T) {
	eye := "middle"
	cfg := config.EmptyScanConfig()
	cfg.CameraEye = &eye

	_, err := ConfigFromScan(cfg)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestConfigFromScan_BadCorrectionBounds(t *testing.T) {
	lo, hi := 2.0, 1.0
	cfg := config.EmptyScanConfig()
	cfg.MinCorrection = &lo
	cfg.MaxCorrection = &hi

	_, err := ConfigFromScan(cfg)
	assert.ErrorIs(t, err, ErrConfiguration)
}
