package monitor

import (
	"sync"
	"time"
)

// DefaultHistorySize is the number of corrections kept when none is given.
const DefaultHistorySize = 1024

// CorrectionPoint is one coloured placement's exposure data.
type CorrectionPoint struct {
	Tick       uint64    `json:"tick"`
	Source     int       `json:"source"`
	Brightness float64   `json:"brightness"`
	Correction float64   `json:"correction"`
	At         time.Time `json:"at"`
}

// CorrectionHistory is a fixed-size ring of the most recent corrections.
type CorrectionHistory struct {
	mu     sync.Mutex
	points []CorrectionPoint
	next   int
	full   bool
	total  uint64
}

// NewCorrectionHistory creates a ring holding up to size points.
func NewCorrectionHistory(size int) *CorrectionHistory {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &CorrectionHistory{points: make([]CorrectionPoint, size)}
}

// Add appends p, overwriting the oldest point once the ring is full.
func (h *CorrectionHistory) Add(p CorrectionPoint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.points[h.next] = p
	h.next = (h.next + 1) % len(h.points)
	if h.next == 0 {
		h.full = true
	}
	h.total++
}

// Points returns the retained points, oldest first.
func (h *CorrectionHistory) Points() []CorrectionPoint {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.full {
		return append([]CorrectionPoint(nil), h.points[:h.next]...)
	}
	out := make([]CorrectionPoint, 0, len(h.points))
	out = append(out, h.points[h.next:]...)
	return append(out, h.points[:h.next]...)
}

// Total returns how many points were ever added.
func (h *CorrectionHistory) Total() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.total
}
