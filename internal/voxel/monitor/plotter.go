package monitor

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ErrNoCorrections is returned by CorrectionPlotter.Save when there is
// nothing to draw.
var ErrNoCorrections = errors.New("no corrections to plot")

// Output file names written by CorrectionPlotter.Save.
const (
	CorrectionPlotFile = "correction_factor.png"
	BrightnessPlotFile = "region_brightness.png"
)

// CorrectionPlotter renders a CorrectionHistory to PNG files after a run.
type CorrectionPlotter struct {
	history *CorrectionHistory
	target  float64
	min     float64
	max     float64
}

// NewCorrectionPlotter creates a plotter. target is drawn as a reference
// line on the brightness plot and [min, max] bounds the factor plot.
func NewCorrectionPlotter(history *CorrectionHistory, target, min, max float64) *CorrectionPlotter {
	return &CorrectionPlotter{history: history, target: target, min: min, max: max}
}

// Save writes both plots into dir, creating it if needed, and returns the
// paths written.
func (cp *CorrectionPlotter) Save(dir string) ([]string, error) {
	if cp.history == nil {
		return nil, ErrNoCorrections
	}
	points := cp.history.Points()
	if len(points) == 0 {
		return nil, ErrNoCorrections
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	factorPts := make(plotter.XYs, len(points))
	brightPts := make(plotter.XYs, len(points))
	for i, p := range points {
		factorPts[i] = plotter.XY{X: float64(i), Y: p.Correction}
		brightPts[i] = plotter.XY{X: float64(i), Y: p.Brightness}
	}
	last := float64(len(points) - 1)

	pFactor := plot.New()
	pFactor.Title.Text = "Exposure correction factor"
	pFactor.X.Label.Text = "Coloured placement"
	pFactor.Y.Label.Text = "Factor"
	pFactor.Y.Min = cp.min
	pFactor.Y.Max = cp.max
	if err := addLine(pFactor, "factor", factorPts, color.RGBA{R: 31, G: 119, B: 180, A: 255}); err != nil {
		return nil, err
	}
	if err := addLine(pFactor, "neutral", plotter.XYs{{X: 0, Y: 1}, {X: last, Y: 1}}, color.RGBA{R: 127, G: 127, B: 127, A: 255}); err != nil {
		return nil, err
	}

	pBright := plot.New()
	pBright.Title.Text = "Measured region brightness"
	pBright.X.Label.Text = "Coloured placement"
	pBright.Y.Label.Text = "Linear luminance"
	pBright.Y.Min = 0
	pBright.Y.Max = 1
	if err := addLine(pBright, "brightness", brightPts, color.RGBA{R: 255, G: 127, B: 14, A: 255}); err != nil {
		return nil, err
	}
	if err := addLine(pBright, "target", plotter.XYs{{X: 0, Y: cp.target}, {X: last, Y: cp.target}}, color.RGBA{R: 44, G: 160, B: 44, A: 255}); err != nil {
		return nil, err
	}

	factorFile := filepath.Join(dir, CorrectionPlotFile)
	if err := pFactor.Save(10*vg.Inch, 4*vg.Inch, factorFile); err != nil {
		return nil, fmt.Errorf("failed to save %s: %w", factorFile, err)
	}
	brightFile := filepath.Join(dir, BrightnessPlotFile)
	if err := pBright.Save(10*vg.Inch, 4*vg.Inch, brightFile); err != nil {
		return nil, fmt.Errorf("failed to save %s: %w", brightFile, err)
	}
	diagf("saved correction plots to %s (%d points)", dir, len(points))
	return []string{factorFile, brightFile}, nil
}

func addLine(p *plot.Plot, label string, pts plotter.XYs, c color.Color) error {
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Color = c
	line.Width = vg.Points(1)
	p.Add(line)
	p.Legend.Add(label, line)
	return nil
}
