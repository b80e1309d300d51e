package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/banshee-data/voxel.paint/internal/timeutil"
)

// Run drives o from a clock ticker until ctx is cancelled or maxTicks ticks
// have been processed (0 means no limit). Ticks never overlap: a slow tick
// simply delays the next one.
func Run(ctx context.Context, o *SamplingOrchestrator, clock timeutil.Clock, interval time.Duration, maxTicks uint64) error {
	if o == nil {
		return fmt.Errorf("%w: no orchestrator", ErrConfiguration)
	}
	if interval <= 0 {
		return fmt.Errorf("%w: tick interval must be positive, got %v", ErrConfiguration, interval)
	}
	if clock == nil {
		clock = timeutil.RealClock{}
	}

	ticker := clock.NewTicker(interval)
	defer ticker.Stop()

	var done uint64
	for {
		select {
		case <-ctx.Done():
			diagf("run stopped after %d ticks: %v", done, ctx.Err())
			return nil
		case <-ticker.C():
			o.Tick()
			done++
			if maxTicks > 0 && done >= maxTicks {
				diagf("run finished after %d ticks", done)
				return nil
			}
		}
	}
}
