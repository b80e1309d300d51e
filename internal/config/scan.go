package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"
)

// DefaultConfigPath is the path to the canonical scan defaults file.
const DefaultConfigPath = "config/scan.defaults.json"

// Built-in fallbacks used by the Get* accessors when a field is omitted.
const (
	DefaultSamplingMode        = "environment"
	DefaultTargetBrightness    = 0.5
	DefaultCorrectionSmoothing = 0.1
	DefaultROISize             = 5
	DefaultMinCorrection       = 0.5
	DefaultMaxCorrection       = 1.5
	DefaultVoxelSize           = 0.05
	DefaultCameraEye           = "left"
	DefaultTickInterval        = 33 * time.Millisecond
)

// RaySampleOrigin is one configured ray source.
type RaySampleOrigin struct {
	Origin    [3]float64 `json:"origin"`
	Direction [3]float64 `json:"direction"`
}

// ScanConfig is the root configuration for voxel scanning. Every field is
// optional; omitted fields fall back to built-in defaults via the Get*
// accessors, so partial configs are safe.
type ScanConfig struct {
	SamplingMode     *string           `json:"sampling_mode,omitempty"`
	RaySampleOrigins []RaySampleOrigin `json:"ray_sample_origins,omitempty"`

	// Exposure correction
	TargetBrightness    *float64 `json:"target_brightness,omitempty"`
	CorrectionSmoothing *float64 `json:"correction_smoothing,omitempty"`
	ROISize             *int     `json:"roi_size,omitempty"`
	MinCorrection       *float64 `json:"min_correction,omitempty"`
	MaxCorrection       *float64 `json:"max_correction,omitempty"`

	// Lattice
	VoxelSize *float64 `json:"voxel_size,omitempty"`
	// SurfaceOffset is accepted for compatibility with older files but has
	// no effect: the offset is always half the voxel size.
	SurfaceOffset *float64 `json:"surface_offset,omitempty"`

	// Host loop
	CameraEye    *string `json:"camera_eye,omitempty"`
	TickInterval *string `json:"tick_interval,omitempty"` // duration string like "33ms"
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyScanConfig returns a ScanConfig with all fields unset.
func EmptyScanConfig() *ScanConfig {
	return &ScanConfig{}
}

// DefaultScanConfig returns a ScanConfig with every field populated from
// the built-in defaults and a single forward-looking ray source.
func DefaultScanConfig() *ScanConfig {
	return &ScanConfig{
		SamplingMode: ptrString(DefaultSamplingMode),
		RaySampleOrigins: []RaySampleOrigin{
			{Origin: [3]float64{0, 0, 0}, Direction: [3]float64{0, 0, 1}},
		},
		TargetBrightness:    ptrFloat64(DefaultTargetBrightness),
		CorrectionSmoothing: ptrFloat64(DefaultCorrectionSmoothing),
		ROISize:             ptrInt(DefaultROISize),
		MinCorrection:       ptrFloat64(DefaultMinCorrection),
		MaxCorrection:       ptrFloat64(DefaultMaxCorrection),
		VoxelSize:           ptrFloat64(DefaultVoxelSize),
		CameraEye:           ptrString(DefaultCameraEye),
		TickInterval:        ptrString(DefaultTickInterval.String()),
	}
}

// LoadScanConfig loads a ScanConfig from a JSON file.
// The file must have a .json extension and be at most 1MB.
func LoadScanConfig(path string) (*ScanConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyScanConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical defaults from DefaultConfigPath,
// searching the current directory and its parents up to the repo root.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *ScanConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,       // from internal/config/
		"../../../" + DefaultConfigPath,    // from internal/voxel/pipeline/
		"../../../../" + DefaultConfigPath, // from internal/voxel/storage/sqlite/
	}
	for _, path := range candidates {
		if cfg, err := LoadScanConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the values that are set lie in range.
func (c *ScanConfig) Validate() error {
	if c.SamplingMode != nil && *c.SamplingMode != DefaultSamplingMode {
		return fmt.Errorf("sampling_mode %q is not supported (only %q)", *c.SamplingMode, DefaultSamplingMode)
	}
	for i, o := range c.RaySampleOrigins {
		d := o.Direction
		if d[0] == 0 && d[1] == 0 && d[2] == 0 {
			return fmt.Errorf("ray_sample_origins[%d] has a zero direction", i)
		}
		for _, v := range append(o.Origin[:], d[:]...) {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("ray_sample_origins[%d] is not finite", i)
			}
		}
	}
	if c.TargetBrightness != nil && (*c.TargetBrightness < 0 || *c.TargetBrightness > 1) {
		return fmt.Errorf("target_brightness must be between 0 and 1, got %f", *c.TargetBrightness)
	}
	if c.CorrectionSmoothing != nil && (*c.CorrectionSmoothing < 0 || *c.CorrectionSmoothing > 1) {
		return fmt.Errorf("correction_smoothing must be between 0 and 1, got %f", *c.CorrectionSmoothing)
	}
	if c.ROISize != nil && *c.ROISize <= 0 {
		return fmt.Errorf("roi_size must be positive, got %d", *c.ROISize)
	}
	if c.MinCorrection != nil && *c.MinCorrection <= 0 {
		return fmt.Errorf("min_correction must be positive, got %f", *c.MinCorrection)
	}
	if min, max := c.GetMinCorrection(), c.GetMaxCorrection(); max < min {
		return fmt.Errorf("max_correction (%f) must be >= min_correction (%f)", max, min)
	}
	if c.VoxelSize != nil && *c.VoxelSize <= 0 {
		return fmt.Errorf("voxel_size must be positive, got %f", *c.VoxelSize)
	}
	if c.CameraEye != nil && *c.CameraEye != "left" && *c.CameraEye != "right" {
		return fmt.Errorf("camera_eye must be \"left\" or \"right\", got %q", *c.CameraEye)
	}
	if c.TickInterval != nil && *c.TickInterval != "" {
		d, err := time.ParseDuration(*c.TickInterval)
		if err != nil {
			return fmt.Errorf("invalid tick_interval '%s': %w", *c.TickInterval, err)
		}
		if d <= 0 {
			return fmt.Errorf("tick_interval must be positive, got %v", d)
		}
	}
	return nil
}

// GetSamplingMode returns the sampling_mode value or the default.
func (c *ScanConfig) GetSamplingMode() string {
	if c.SamplingMode == nil {
		return DefaultSamplingMode
	}
	return *c.SamplingMode
}

// GetTargetBrightness returns the target_brightness value or the default.
func (c *ScanConfig) GetTargetBrightness() float64 {
	if c.TargetBrightness == nil {
		return DefaultTargetBrightness
	}
	return *c.TargetBrightness
}

// GetCorrectionSmoothing returns the correction_smoothing value or the default.
func (c *ScanConfig) GetCorrectionSmoothing() float64 {
	if c.CorrectionSmoothing == nil {
		return DefaultCorrectionSmoothing
	}
	return *c.CorrectionSmoothing
}

// GetROISize returns the roi_size value or the default.
func (c *ScanConfig) GetROISize() int {
	if c.ROISize == nil {
		return DefaultROISize
	}
	return *c.ROISize
}

// GetMinCorrection returns the min_correction value or the default.
func (c *ScanConfig) GetMinCorrection() float64 {
	if c.MinCorrection == nil {
		return DefaultMinCorrection
	}
	return *c.MinCorrection
}

// GetMaxCorrection returns the max_correction value or the default.
func (c *ScanConfig) GetMaxCorrection() float64 {
	if c.MaxCorrection == nil {
		return DefaultMaxCorrection
	}
	return *c.MaxCorrection
}

// GetVoxelSize returns the voxel_size value or the default.
func (c *ScanConfig) GetVoxelSize() float64 {
	if c.VoxelSize == nil {
		return DefaultVoxelSize
	}
	return *c.VoxelSize
}

// GetSurfaceOffset is always half the voxel size, whatever surface_offset says.
func (c *ScanConfig) GetSurfaceOffset() float64 {
	return c.GetVoxelSize() / 2
}

// GetCameraEye returns the camera_eye value or the default.
func (c *ScanConfig) GetCameraEye() string {
	if c.CameraEye == nil {
		return DefaultCameraEye
	}
	return *c.CameraEye
}

// GetTickInterval parses and returns TickInterval as a time.Duration.
func (c *ScanConfig) GetTickInterval() time.Duration {
	if c.TickInterval == nil || *c.TickInterval == "" {
		return DefaultTickInterval
	}
	d, err := time.ParseDuration(*c.TickInterval)
	if err != nil || d <= 0 {
		return DefaultTickInterval // default on parse error
	}
	return d
}
