package pipeline

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/voxel.paint/internal/timeutil"
	"github.com/banshee-data/voxel.paint/internal/voxel/l1lattice"
	"github.com/banshee-data/voxel.paint/internal/voxel/l2camera"
	"github.com/banshee-data/voxel.paint/internal/voxel/l3exposure"
)

// ErrConfiguration marks a fatal configuration problem found at startup.
// An orchestrator is never built when it is returned.
var ErrConfiguration = errors.New("sampling configuration error")

// SamplingMode selects the sampling strategy.
type SamplingMode string

// SamplingModeEnvironment samples by casting rays against the environment.
const SamplingModeEnvironment SamplingMode = "environment"

// SampleState is a step of the per-source state machine.
type SampleState int

const (
	StateIdle SampleState = iota
	StateAwaitingHit
	StatePlacing
)

func (s SampleState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingHit:
		return "awaiting_hit"
	case StatePlacing:
		return "placing"
	default:
		return "unknown"
	}
}

// SkipReason explains why a sample stopped short of a coloured voxel.
type SkipReason string

const (
	ReasonNone          SkipReason = ""
	ReasonNoHit         SkipReason = "no_hit"
	ReasonNonSurfaceHit SkipReason = "non_surface_hit"
	ReasonInvalidHit    SkipReason = "invalid_hit"
	ReasonOccupied      SkipReason = "occupied"
	ReasonImageNotReady SkipReason = "image_not_ready"
	ReasonBehindCamera  SkipReason = "behind_camera"
	ReasonInvalidCamera SkipReason = "invalid_camera"
	ReasonNoVoxelHandle SkipReason = "no_voxel_handle"
)

// SamplePoint is a surface hit valid for the tick that produced it.
type SamplePoint struct {
	Point     r3.Vec
	Normal    r3.Vec
	HasNormal bool
}

// Placement describes a newly created voxel.
type Placement struct {
	Tick       uint64
	Source     int
	Key        l1lattice.Key
	Center     r3.Vec
	Edge       float64
	Sample     SamplePoint
	Colored    bool
	Color      l3exposure.Color
	Brightness float64
	Correction float64
	PlacedAt   time.Time
}

// SampleOutcome is the result of processing one ray source in one tick.
// State is the furthest state reached.
type SampleOutcome struct {
	Source     int
	State      SampleState
	Status     HitStatus
	Key        l1lattice.Key
	Placed     bool
	Colored    bool
	Reason     SkipReason
	Color      l3exposure.Color
	Brightness float64
	Correction float64
}

// TickReport lists the outcome of every source for one tick, in source order.
type TickReport struct {
	Tick       uint64
	ImageReady bool
	Samples    []SampleOutcome
}

// Placed returns how many voxels the tick created.
func (r TickReport) Placed() int {
	n := 0
	for _, s := range r.Samples {
		if s.Placed {
			n++
		}
	}
	return n
}

// OrchestratorConfig holds the collaborators and tuning for a
// SamplingOrchestrator.
type OrchestratorConfig struct {
	Mode    SamplingMode // defaults to SamplingModeEnvironment
	Sources []RaySource  // processed in order every tick

	Caster RayCaster
	Images ImageSource
	Camera CameraRig
	Voxels VoxelFactory
	Eye    l2camera.Eye

	// VoxelSize is the cell edge length in metres.
	VoxelSize float64
	// ROISize is the side of the brightness sampling window in pixels.
	ROISize int

	// Filter is the session-wide exposure filter. It is passed in rather
	// than owned so callers can observe or share it.
	Filter *l3exposure.Filter
	// Index is the occupancy set; a new one is created when nil.
	Index *l1lattice.Index

	Sink     PlacementSink  // optional
	Observer TickObserver   // optional
	Clock    timeutil.Clock // optional; defaults to the real clock
}

// SamplingOrchestrator drives ray sampling, voxel deduplication, placement
// and colouring once per tick. It is not safe for concurrent Tick calls;
// it is meant to be driven by a single host loop.
type SamplingOrchestrator struct {
	sources   []RaySource
	caster    RayCaster
	images    ImageSource
	camera    CameraRig
	voxels    VoxelFactory
	eye       l2camera.Eye
	voxelSize float64
	roiSize   int
	filter    *l3exposure.Filter
	index     *l1lattice.Index
	sink      PlacementSink
	observer  TickObserver
	clock     timeutil.Clock

	tick       uint64
	imageReady bool
}

// NewSamplingOrchestrator validates cfg and builds an orchestrator. Any
// error wraps ErrConfiguration; the caller should report it and not sample.
func NewSamplingOrchestrator(cfg OrchestratorConfig) (*SamplingOrchestrator, error) {
	if err := validateConfig(cfg); err != nil {
		opsf("sampling disabled: %v", err)
		return nil, err
	}

	o := &SamplingOrchestrator{
		sources:   append([]RaySource(nil), cfg.Sources...),
		caster:    cfg.Caster,
		images:    cfg.Images,
		camera:    cfg.Camera,
		voxels:    cfg.Voxels,
		eye:       cfg.Eye,
		voxelSize: cfg.VoxelSize,
		roiSize:   cfg.ROISize,
		filter:    cfg.Filter,
		index:     cfg.Index,
		clock:     cfg.Clock,
	}
	if o.index == nil {
		o.index = l1lattice.NewIndex()
	}
	if o.clock == nil {
		o.clock = timeutil.RealClock{}
	}
	if !isNilInterface(cfg.Sink) {
		o.sink = cfg.Sink
	}
	if !isNilInterface(cfg.Observer) {
		o.observer = cfg.Observer
	}

	diagf("sampling enabled: %d sources, voxel %.3fm, roi %dpx, eye %s",
		len(o.sources), o.voxelSize, o.roiSize, o.eye)
	return o, nil
}

func validateConfig(cfg OrchestratorConfig) error {
	if cfg.Mode != "" && cfg.Mode != SamplingModeEnvironment {
		return fmt.Errorf("%w: unsupported sampling mode %q", ErrConfiguration, cfg.Mode)
	}
	missing := []struct {
		name string
		v    interface{}
	}{
		{"ray caster", cfg.Caster},
		{"image source", cfg.Images},
		{"camera rig", cfg.Camera},
		{"voxel factory", cfg.Voxels},
	}
	for _, m := range missing {
		if isNilInterface(m.v) {
			return fmt.Errorf("%w: missing %s", ErrConfiguration, m.name)
		}
	}
	if cfg.Filter == nil {
		return fmt.Errorf("%w: missing correction filter", ErrConfiguration)
	}
	if len(cfg.Sources) == 0 {
		return fmt.Errorf("%w: no ray sample origins configured", ErrConfiguration)
	}
	for i, s := range cfg.Sources {
		if isNilInterface(s) {
			return fmt.Errorf("%w: ray sample origin %d is missing", ErrConfiguration, i)
		}
	}
	if !(cfg.VoxelSize > 0) || math.IsInf(cfg.VoxelSize, 0) {
		return fmt.Errorf("%w: voxel size must be positive, got %f", ErrConfiguration, cfg.VoxelSize)
	}
	if cfg.ROISize <= 0 {
		return fmt.Errorf("%w: roi size must be positive, got %d", ErrConfiguration, cfg.ROISize)
	}
	return nil
}

// Index returns the occupancy set.
func (o *SamplingOrchestrator) Index() *l1lattice.Index { return o.index }

// Filter returns the exposure filter.
func (o *SamplingOrchestrator) Filter() *l3exposure.Filter { return o.filter }

// ImageReady reports whether the image source has become ready.
func (o *SamplingOrchestrator) ImageReady() bool { return o.imageReady }

// Ticks returns how many ticks have been processed.
func (o *SamplingOrchestrator) Ticks() uint64 { return o.tick }

// Tick processes every ray source once, in order.
func (o *SamplingOrchestrator) Tick() TickReport {
	o.tick++
	o.pollImageReady()

	report := TickReport{
		Tick:       o.tick,
		ImageReady: o.imageReady,
		Samples:    make([]SampleOutcome, 0, len(o.sources)),
	}
	for i, src := range o.sources {
		report.Samples = append(report.Samples, o.sample(i, src))
	}

	if o.observer != nil {
		o.observer.ObserveTick(report)
	}
	return report
}

// pollImageReady latches the image source from not-ready to ready.
func (o *SamplingOrchestrator) pollImageReady() {
	if o.imageReady {
		return
	}
	if o.images.Ready() {
		o.imageReady = true
		diagf("image source ready at tick %d", o.tick)
	}
}

func (o *SamplingOrchestrator) sample(idx int, src RaySource) SampleOutcome {
	out := SampleOutcome{Source: idx, State: StateIdle}

	// Idle → AwaitingHit
	hit := o.caster.CastRay(src.Ray())
	out.Status = hit.Status
	if !hit.Hit {
		out.Reason = ReasonNoHit
		return out
	}
	if hit.Status != HitStatusHit {
		out.Reason = ReasonNonSurfaceHit
		return out
	}
	if !finite(hit.Point) || !l1lattice.Representable(hit.Point, o.voxelSize) {
		out.Reason = ReasonInvalidHit
		return out
	}
	sp := SamplePoint{Point: hit.Point, Normal: hit.Normal, HasNormal: r3.Norm(hit.Normal) > 0}
	out.State = StateAwaitingHit

	// AwaitingHit → Placing
	key := l1lattice.KeyFor(sp.Point, o.voxelSize)
	out.Key = key
	if !o.index.TryOccupy(key) {
		out.Reason = ReasonOccupied
		return out
	}
	out.State = StatePlacing

	// Placing: geometry first, then colour from the unsnapped hit point.
	center := key.Center(o.voxelSize)
	handle := o.voxels.CreateVoxel(center, o.voxelSize)
	out.Placed = true

	placement := Placement{
		Tick:     o.tick,
		Source:   idx,
		Key:      key,
		Center:   center,
		Edge:     o.voxelSize,
		Sample:   sp,
		PlacedAt: o.clock.Now(),
	}

	var (
		res    colorResult
		reason SkipReason
	)
	if isNilInterface(handle) {
		opsf("tick %d: voxel factory returned no handle for %s, voxel left uncoloured", o.tick, key)
		reason = ReasonNoVoxelHandle
	} else {
		res, reason = o.colorFor(sp)
	}
	out.Reason = reason
	if reason == ReasonNone {
		handle.SetColor(res.color)
		out.Colored = true
		out.Color = res.color
		out.Brightness = res.brightness
		out.Correction = res.correction

		placement.Colored = true
		placement.Color = res.color
		placement.Brightness = res.brightness
		placement.Correction = res.correction
	}

	tracef("tick %d source %d: placed %s colored=%v reason=%q factor=%.3f",
		o.tick, idx, key, out.Colored, reason, out.Correction)

	if o.sink != nil {
		if err := o.sink.RecordPlacement(placement); err != nil {
			opsf("failed to record placement %s: %v", key, err)
		}
	}
	return out
}

type colorResult struct {
	color      l3exposure.Color
	brightness float64
	correction float64
}

// colorFor runs projection → brightness → correction for a sample point.
// A non-empty reason means the voxel stays uncoloured.
func (o *SamplingOrchestrator) colorFor(sp SamplePoint) (colorResult, SkipReason) {
	if !o.imageReady {
		opsf("tick %d: image source not ready, voxel left uncoloured", o.tick)
		return colorResult{}, ReasonImageNotReady
	}
	img := o.images.Image()
	if isNilInterface(img) || img.Width() <= 0 || img.Height() <= 0 {
		opsf("tick %d: image source returned no frame, voxel left uncoloured", o.tick)
		return colorResult{}, ReasonImageNotReady
	}

	pose := o.camera.Pose(o.eye)
	if err := l2camera.ValidatePose(pose); err != nil {
		diagf("tick %d: %v", o.tick, err)
		return colorResult{}, ReasonInvalidCamera
	}
	w, h := img.Width(), img.Height()
	uv, err := l2camera.Project(sp.Point, pose, o.camera.Intrinsics(o.eye), w, h)
	if err != nil {
		if errors.Is(err, l2camera.ErrPointBehindCamera) {
			return colorResult{}, ReasonBehindCamera
		}
		diagf("tick %d: %v", o.tick, err)
		return colorResult{}, ReasonInvalidCamera
	}

	x, y := uv.Pixel(w, h)
	sampled := img.Pixel(x, y)
	brightness := l3exposure.EstimateRegionBrightness(img, x, y, o.roiSize)
	c, factor := o.filter.Correct(sampled, brightness)
	return colorResult{color: c, brightness: brightness, correction: factor}, ReasonNone
}

func finite(v r3.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsNaN(v.Z) &&
		!math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0) && !math.IsInf(v.Z, 0)
}
