package l3exposure

import (
	"github.com/banshee-data/voxel.paint/internal/config"
)

// DefaultCorrectionParams returns the params from the canonical scan
// defaults file (config/scan.defaults.json). Panics if the file cannot be
// found, so it is meant for tests.
func DefaultCorrectionParams() CorrectionParams {
	return ParamsFromScan(config.MustLoadDefaultConfig())
}

// ParamsFromScan builds CorrectionParams from a loaded ScanConfig.
func ParamsFromScan(cfg *config.ScanConfig) CorrectionParams {
	return CorrectionParams{
		TargetBrightness: cfg.GetTargetBrightness(),
		MinCorrection:    cfg.GetMinCorrection(),
		MaxCorrection:    cfg.GetMaxCorrection(),
		Smoothing:        cfg.GetCorrectionSmoothing(),
	}
}
