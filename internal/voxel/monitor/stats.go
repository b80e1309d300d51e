package monitor

import (
	"sync"
	"time"

	"github.com/banshee-data/voxel.paint/internal/voxel/pipeline"
)

// ScanStats accumulates tick reports. It implements pipeline.TickObserver
// and may be read from other goroutines while the host loop writes to it.
type ScanStats struct {
	mu      sync.Mutex
	now     func() time.Time
	history *CorrectionHistory

	ticks          uint64
	samples        uint64
	placed         uint64
	colored        uint64
	imageReady     bool
	lastCorrection float64
	reasons        map[pipeline.SkipReason]uint64
	startedAt      time.Time
	lastTickAt     time.Time
}

var _ pipeline.TickObserver = (*ScanStats)(nil)

// StatsSnapshot is a point-in-time copy of ScanStats.
type StatsSnapshot struct {
	Ticks          uint64            `json:"ticks"`
	Samples        uint64            `json:"samples"`
	Placed         uint64            `json:"placed"`
	Colored        uint64            `json:"colored"`
	ImageReady     bool              `json:"image_ready"`
	LastCorrection float64           `json:"last_correction"`
	Skipped        map[string]uint64 `json:"skipped"`
	StartedAt      time.Time         `json:"started_at"`
	LastTickAt     time.Time         `json:"last_tick_at"`
	Uptime         string            `json:"uptime"`
}

// NewScanStats creates a ScanStats. Coloured placements are also appended
// to history when it is non-nil.
func NewScanStats(history *CorrectionHistory) *ScanStats {
	s := &ScanStats{
		now:            time.Now,
		history:        history,
		lastCorrection: 1.0,
		reasons:        make(map[pipeline.SkipReason]uint64),
	}
	s.startedAt = s.now()
	return s
}

// History returns the correction ring, which may be nil.
func (s *ScanStats) History() *CorrectionHistory { return s.history }

// ObserveTick records one tick report.
func (s *ScanStats) ObserveTick(r pipeline.TickReport) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.ticks++
	s.lastTickAt = now
	s.imageReady = r.ImageReady
	for _, o := range r.Samples {
		s.samples++
		if o.Placed {
			s.placed++
		}
		if o.Reason != pipeline.ReasonNone {
			s.reasons[o.Reason]++
		}
		if !o.Colored {
			continue
		}
		s.colored++
		s.lastCorrection = o.Correction
		if s.history != nil {
			s.history.Add(CorrectionPoint{
				Tick:       r.Tick,
				Source:     o.Source,
				Brightness: o.Brightness,
				Correction: o.Correction,
				At:         now,
			})
		}
	}
}

// Snapshot returns a copy of the current counters.
func (s *ScanStats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	skipped := make(map[string]uint64, len(s.reasons))
	for k, v := range s.reasons {
		skipped[string(k)] = v
	}
	return StatsSnapshot{
		Ticks:          s.ticks,
		Samples:        s.samples,
		Placed:         s.placed,
		Colored:        s.colored,
		ImageReady:     s.imageReady,
		LastCorrection: s.lastCorrection,
		Skipped:        skipped,
		StartedAt:      s.startedAt,
		LastTickAt:     s.lastTickAt,
		Uptime:         s.now().Sub(s.startedAt).Truncate(time.Second).String(),
	}
}

// LogSummary writes the totals to the ops stream.
func (s *ScanStats) LogSummary() {
	snap := s.Snapshot()
	opsf("scan summary: %d ticks, %d samples, %d placed, %d coloured, last correction %.3f, skipped %v",
		snap.Ticks, snap.Samples, snap.Placed, snap.Colored, snap.LastCorrection, snap.Skipped)
}
