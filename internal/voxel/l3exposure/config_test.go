package l3exposure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/voxel.paint/internal/config"
)

func TestDefaultCorrectionParams(t *testing.T) {
	p := DefaultCorrectionParams()

	assert.Equal(t, CorrectionParams{
		TargetBrightness: 0.5,
		MinCorrection:    0.5,
		MaxCorrection:    1.5,
		Smoothing:        0.1,
	}, p)
	require.NoError(t, p.Validate())
}

func TestParamsFromScan_EmptyConfigUsesDefaults(t *testing.T) {
	p := ParamsFromScan(config.EmptyScanConfig())

	assert.Equal(t, config.DefaultTargetBrightness, p.TargetBrightness)
	assert.Equal(t, config.DefaultCorrectionSmoothing, p.Smoothing)
}
