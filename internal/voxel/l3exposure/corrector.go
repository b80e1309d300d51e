package l3exposure

import (
	"fmt"
	"math"
	"sync"
)

// MinMeasuredBrightness floors the measured brightness before dividing so
// near-black regions cannot produce an unbounded factor.
const MinMeasuredBrightness = 0.001

// InitialCorrection is the filter state at the start of a session.
const InitialCorrection = 1.0

// CorrectionParams configures the exposure correction filter.
type CorrectionParams struct {
	TargetBrightness float64 // desired mean linear luminance, [0,1]
	MinCorrection    float64 // lower bound on the factor
	MaxCorrection    float64 // upper bound on the factor
	Smoothing        float64 // 0 freezes the filter, 1 follows the raw factor instantly
}

// Validate checks the parameter ranges.
func (p CorrectionParams) Validate() error {
	if p.TargetBrightness < 0 || p.TargetBrightness > 1 || math.IsNaN(p.TargetBrightness) {
		return fmt.Errorf("target brightness must be in [0, 1], got %f", p.TargetBrightness)
	}
	if p.MinCorrection <= 0 || math.IsNaN(p.MinCorrection) {
		return fmt.Errorf("min correction must be positive, got %f", p.MinCorrection)
	}
	if p.MaxCorrection < p.MinCorrection || math.IsNaN(p.MaxCorrection) {
		return fmt.Errorf("max correction %f must be >= min correction %f", p.MaxCorrection, p.MinCorrection)
	}
	if p.Smoothing < 0 || p.Smoothing > 1 || math.IsNaN(p.Smoothing) {
		return fmt.Errorf("smoothing must be in [0, 1], got %f", p.Smoothing)
	}
	return nil
}

// RawFactor is the unsmoothed correction that would bring measured up (or
// down) to the target, clamped to the configured bounds.
func RawFactor(measured float64, p CorrectionParams) float64 {
	return clamp(p.TargetBrightness/math.Max(measured, MinMeasuredBrightness), p.MinCorrection, p.MaxCorrection)
}

// Correct applies one step of the exposure filter. It returns the corrected
// display-space colour and the new filter state. The sampled colour is
// scaled in linear space and every channel of the result lies in [0,1].
func Correct(sampled Color, measured float64, p CorrectionParams, state float64) (Color, float64) {
	raw := RawFactor(measured, p)
	next := clamp(state+(raw-state)*p.Smoothing, p.MinCorrection, p.MaxCorrection)

	out := sampled.Linear().ScaleRGB(next).Gamma()
	return out.Clamp01(), next
}

// Filter is the session-wide exposure correction state. Every call to
// Correct advances the same scalar, whichever voxel it is for; calls are
// serialised so the update order matches the caller's order.
type Filter struct {
	mu     sync.Mutex
	params CorrectionParams
	state  float64
}

// NewFilter validates params and returns a filter at InitialCorrection.
func NewFilter(params CorrectionParams) (*Filter, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Filter{params: params, state: InitialCorrection}, nil
}

// Correct corrects sampled for a region of the given measured brightness
// and returns the colour together with the factor that was applied.
func (f *Filter) Correct(sampled Color, measured float64) (Color, float64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out Color
	out, f.state = Correct(sampled, measured, f.params, f.state)
	return out, f.state
}

// State returns the current correction factor.
func (f *Filter) State() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Params returns the filter configuration.
func (f *Filter) Params() CorrectionParams {
	return f.params
}
