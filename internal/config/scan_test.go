package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultScanConfig(t *testing.T) {
	cfg := DefaultScanConfig()

	if cfg.TargetBrightness == nil || *cfg.TargetBrightness != 0.5 {
		t.Errorf("Expected TargetBrightness 0.5, got %v", cfg.TargetBrightness)
	}
	if cfg.TickInterval == nil || *cfg.TickInterval != "33ms" {
		t.Errorf("Expected TickInterval '33ms', got %v", cfg.TickInterval)
	}
	require.Len(t, cfg.RaySampleOrigins, 1)
	assert.NoError(t, cfg.Validate())

	assert.Equal(t, "environment", cfg.GetSamplingMode())
	assert.Equal(t, 0.1, cfg.GetCorrectionSmoothing())
	assert.Equal(t, 5, cfg.GetROISize())
	assert.Equal(t, 0.5, cfg.GetMinCorrection())
	assert.Equal(t, 1.5, cfg.GetMaxCorrection())
	assert.Equal(t, 0.05, cfg.GetVoxelSize())
	assert.Equal(t, "left", cfg.GetCameraEye())
	assert.Equal(t, 33*time.Millisecond, cfg.GetTickInterval())
}

func TestEmptyScanConfigUsesDefaults(t *testing.T) {
	cfg := EmptyScanConfig()

	assert.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultTargetBrightness, cfg.GetTargetBrightness())
	assert.Equal(t, DefaultVoxelSize, cfg.GetVoxelSize())
	assert.Equal(t, DefaultTickInterval, cfg.GetTickInterval())
	assert.Empty(t, cfg.RaySampleOrigins)
}

func TestLoadScanConfig(t *testing.T) {
	path := writeConfig(t, "scan.json", `{
  "ray_sample_origins": [{"origin": [1, 2, 3], "direction": [0, 0, -1]}],
  "target_brightness": 0.4,
  "correction_smoothing": 0.25,
  "roi_size": 9,
  "voxel_size": 0.1,
  "camera_eye": "right",
  "tick_interval": "100ms"
}`)

	cfg, err := LoadScanConfig(path)
	require.NoError(t, err)

	require.Len(t, cfg.RaySampleOrigins, 1)
	assert.Equal(t, [3]float64{1, 2, 3}, cfg.RaySampleOrigins[0].Origin)
	assert.Equal(t, [3]float64{0, 0, -1}, cfg.RaySampleOrigins[0].Direction)
	assert.Equal(t, 0.4, cfg.GetTargetBrightness())
	assert.Equal(t, 0.25, cfg.GetCorrectionSmoothing())
	assert.Equal(t, 9, cfg.GetROISize())
	assert.Equal(t, 0.1, cfg.GetVoxelSize())
	assert.Equal(t, "right", cfg.GetCameraEye())
	assert.Equal(t, 100*time.Millisecond, cfg.GetTickInterval())

	// Unset fields keep their defaults.
	assert.Equal(t, DefaultMinCorrection, cfg.GetMinCorrection())
	assert.Equal(t, DefaultMaxCorrection, cfg.GetMaxCorrection())
}

func TestSurfaceOffsetIsHalfVoxel(t *testing.T) {
	path := writeConfig(t, "scan.json", `{"voxel_size": 0.2, "surface_offset": 0.9}`)

	cfg, err := LoadScanConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.SurfaceOffset)
	assert.Equal(t, 0.1, cfg.GetSurfaceOffset())
}

func TestLoadScanConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		body    string
		wantErr string
	}{
		{"wrong extension", "scan.yaml", `{}`, ".json extension"},
		{"bad json", "scan.json", `{"roi_size": `, "parse config JSON"},
		{"unknown mode", "scan.json", `{"sampling_mode": "hands"}`, "sampling_mode"},
		{"zero direction", "scan.json", `{"ray_sample_origins": [{"origin": [0,0,0], "direction": [0,0,0]}]}`, "zero direction"},
		{"target out of range", "scan.json", `{"target_brightness": 1.5}`, "target_brightness"},
		{"smoothing out of range", "scan.json", `{"correction_smoothing": -0.1}`, "correction_smoothing"},
		{"roi not positive", "scan.json", `{"roi_size": 0}`, "roi_size"},
		{"min not positive", "scan.json", `{"min_correction": 0}`, "min_correction"},
		{"max below min", "scan.json", `{"min_correction": 1.2, "max_correction": 0.8}`, "max_correction"},
		{"voxel not positive", "scan.json", `{"voxel_size": -1}`, "voxel_size"},
		{"bad eye", "scan.json", `{"camera_eye": "centre"}`, "camera_eye"},
		{"bad interval", "scan.json", `{"tick_interval": "soon"}`, "tick_interval"},
		{"negative interval", "scan.json", `{"tick_interval": "-5ms"}`, "tick_interval"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScanConfig(writeConfig(t, tt.file, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScanConfig_Missing(t *testing.T) {
	_, err := LoadScanConfig(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stat config file")
}

func TestLoadScanConfig_TooLarge(t *testing.T) {
	body := `{"roi_size": 5` + strings.Repeat(" ", 1024*1024) + `}`
	_, err := LoadScanConfig(writeConfig(t, "big.json", body))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}

func TestMustLoadDefaultConfig(t *testing.T) {
	cfg := MustLoadDefaultConfig()

	require.Len(t, cfg.RaySampleOrigins, 3)
	assert.Equal(t, [3]float64{0, 1.5, 0}, cfg.RaySampleOrigins[0].Origin)
	assert.Equal(t, 0.5, cfg.GetTargetBrightness())
	assert.Equal(t, 0.05, cfg.GetVoxelSize())
	assert.Equal(t, 33*time.Millisecond, cfg.GetTickInterval())
}
