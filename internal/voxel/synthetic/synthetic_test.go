package synthetic

import (
	"image"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/voxel.paint/internal/config"
	"github.com/banshee-data/voxel.paint/internal/testutil"
	"github.com/banshee-data/voxel.paint/internal/timeutil"
	"github.com/banshee-data/voxel.paint/internal/voxel/l2camera"
	"github.com/banshee-data/voxel.paint/internal/voxel/l3exposure"
	"github.com/banshee-data/voxel.paint/internal/voxel/monitor"
	"github.com/banshee-data/voxel.paint/internal/voxel/pipeline"
	"github.com/banshee-data/voxel.paint/internal/voxel/storage/sqlite"
)

func testRoom() BoxRoom {
	return NewBoxRoom(r3.Vec{X: 2, Y: 3, Z: 4}, r3.Vec{X: -2, Y: 0, Z: -2})
}

func vgaLens() l2camera.Intrinsics {
	return l2camera.Intrinsics{
		FocalLength:    r2.Vec{X: 500, Y: 500},
		PrincipalPoint: r2.Vec{X: 320, Y: 240},
		Resolution:     image.Point{X: 640, Y: 480},
	}
}

func TestBoxRoom_CastRay(t *testing.T) {
	room := testRoom()
	assert.Equal(t, r3.Vec{X: -2, Y: 0, Z: -2}, room.Min)
	assert.Equal(t, r3.Vec{X: 2, Y: 3, Z: 4}, room.Max)

	tests := []struct {
		name       string
		ray        pipeline.Ray
		wantPoint  r3.Vec
		wantNormal r3.Vec
	}{
		{"forward", pipeline.Ray{Origin: r3.Vec{Y: 1.5}, Direction: r3.Vec{Z: 1}}, r3.Vec{Y: 1.5, Z: 4}, r3.Vec{Z: -1}},
		{"down", pipeline.Ray{Origin: r3.Vec{Y: 1.5}, Direction: r3.Vec{Y: -2}}, r3.Vec{}, r3.Vec{Y: 1}},
		{"left wall", pipeline.Ray{Origin: r3.Vec{Y: 1.5}, Direction: r3.Vec{X: -1, Z: 0.5}}, r3.Vec{X: -2, Y: 1.5, Z: 1}, r3.Vec{X: 1}},
		{"tilted", pipeline.Ray{Origin: r3.Vec{Y: 1.5}, Direction: r3.Vec{Y: -0.2, Z: 1}}, r3.Vec{Y: 0.7, Z: 4}, r3.Vec{Z: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit := room.CastRay(tt.ray)
			require.True(t, hit.Hit)
			assert.Equal(t, pipeline.HitStatusHit, hit.Status)
			assert.InDelta(t, tt.wantPoint.X, hit.Point.X, 1e-12)
			assert.InDelta(t, tt.wantPoint.Y, hit.Point.Y, 1e-12)
			assert.InDelta(t, tt.wantPoint.Z, hit.Point.Z, 1e-12)
			assert.Equal(t, tt.wantNormal, hit.Normal)
		})
	}
}

func TestBoxRoom_Misses(t *testing.T) {
	room := testRoom()

	outside := room.CastRay(pipeline.Ray{Origin: r3.Vec{Z: 10}, Direction: r3.Vec{Z: -1}})
	assert.False(t, outside.Hit)
	assert.Equal(t, pipeline.HitStatusNoHit, outside.Status)

	zero := room.CastRay(pipeline.Ray{Origin: r3.Vec{Y: 1}})
	assert.False(t, zero.Hit)
}

func TestFixedRig(t *testing.T) {
	left := l2camera.NewPose(r3.Vec{X: -0.03}, 0, r3.Vec{})
	rig := NewFixedRig(left, vgaLens())
	rig.Right = l2camera.NewPose(r3.Vec{X: 0.03}, 0, r3.Vec{})

	assert.Equal(t, left, rig.Pose(l2camera.EyeLeft))
	assert.Equal(t, 0.03, rig.Pose(l2camera.EyeRight).Position.X)
	assert.Equal(t, vgaLens(), rig.Intrinsics(l2camera.EyeRight))
}

func TestFrameSource_Warmup(t *testing.T) {
	src := NewFrameSource(l3exposure.FromImage(testutil.GreyImage(4, 3, 200)), 2)

	assert.False(t, src.Ready())
	assert.False(t, src.Ready())
	assert.True(t, src.Ready())
	assert.True(t, src.Ready())

	img := src.Image()
	assert.Equal(t, 4, img.Width())
	assert.Equal(t, 3, img.Height())
	assert.InDelta(t, 200.0/255, img.Pixel(3, 2).R, 1e-9)
}

func TestGradientImage(t *testing.T) {
	img := GradientImage(64, 32)
	left := img.NRGBAAt(0, 0)
	right := img.NRGBAAt(63, 0)
	assert.Greater(t, left.R, right.R)
	assert.Equal(t, uint8(255), left.A)
	assert.Greater(t, img.NRGBAAt(0, 31).B, img.NRGBAAt(0, 0).B)
}

func TestSweepRay(t *testing.T) {
	s := NewSweepRay(r3.Vec{Y: 1}, r3.Vec{Z: 1}, r3.Vec{Y: 1}, 0.1)

	first := s.Ray()
	assert.Equal(t, r3.Vec{Z: 1}, first.Direction)
	assert.Equal(t, r3.Vec{Y: 1}, first.Origin)

	second := s.Ray()
	assert.InDelta(t, 1, r3.Norm(second.Direction), 1e-12)
	assert.NotEqual(t, first.Direction, second.Direction)
	assert.InDelta(t, 0, second.Direction.Y, 1e-12)
}

func TestMemoryVoxelFactory(t *testing.T) {
	f := NewMemoryVoxelFactory()
	h := f.CreateVoxel(r3.Vec{X: 1}, 0.05)
	f.CreateVoxel(r3.Vec{X: 2}, 0.05)

	h.SetColor(l3exposure.Color{R: 1, A: 1})

	voxels := f.Voxels()
	require.Len(t, voxels, 2)
	assert.NotEqual(t, voxels[0].ID, voxels[1].ID)
	c, ok := voxels[0].Color()
	assert.True(t, ok)
	assert.Equal(t, 1.0, c.R)
	_, ok = voxels[1].Color()
	assert.False(t, ok)
	assert.Equal(t, 2, f.Len())
}

// TestScanSession runs the configured pipeline against the synthetic room
// with a persisted placement log and live statistics.
func TestScanSession(t *testing.T) {
	cfg := config.MustLoadDefaultConfig()
	oc, err := pipeline.ConfigFromScan(cfg)
	require.NoError(t, err)

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "scan.db"))
	require.NoError(t, err)
	defer db.Close()
	sess, err := sqlite.NewSessionStore(db).Start(cfg.GetVoxelSize(), "")
	require.NoError(t, err)
	store := sqlite.NewPlacementStore(db, sess.SessionID)

	stats := monitor.NewScanStats(monitor.NewCorrectionHistory(16))
	voxels := NewMemoryVoxelFactory()

	oc.Sources = SweepSources(oc.Sources, r3.Vec{Y: 1}, 0.05)
	oc.Caster = testRoom()
	oc.Images = NewFrameSource(l3exposure.FromImage(testutil.GreyImage(640, 480, 128)), 1)
	oc.Camera = NewFixedRig(l2camera.NewPose(r3.Vec{Y: 1.5}, 0, r3.Vec{}), vgaLens())
	oc.Voxels = voxels
	oc.Sink = store
	oc.Observer = stats
	oc.Clock = timeutil.NewManualClock(time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC))

	o, err := pipeline.NewSamplingOrchestrator(oc)
	require.NoError(t, err)

	first := o.Tick()
	assert.False(t, first.ImageReady)
	assert.Equal(t, 3, first.Placed())
	for _, s := range first.Samples {
		assert.Equal(t, pipeline.ReasonImageNotReady, s.Reason)
	}

	second := o.Tick()
	assert.True(t, second.ImageReady)
	assert.Equal(t, 3, second.Placed())
	for _, s := range second.Samples {
		assert.True(t, s.Colored, "source %d: %s", s.Source, s.Reason)
	}

	// Grey 128 is far below the target, so every step pushes the factor
	// towards max_correction: 1.05, 1.095, 1.1355.
	assert.InDelta(t, 1.1355, o.Filter().State(), 1e-9)

	n, err := store.CountBySession(sess.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Equal(t, 6, voxels.Len())
	assert.Equal(t, 6, o.Index().Len())

	snap := stats.Snapshot()
	assert.Equal(t, uint64(2), snap.Ticks)
	assert.Equal(t, uint64(3), snap.Colored)
	assert.Len(t, stats.History().Points(), 3)

	records, err := store.ListBySession(sess.SessionID)
	require.NoError(t, err)
	require.Len(t, records, 6)
	assert.False(t, records[0].Placement.Colored)
	assert.True(t, records[5].Placement.Colored)
	assert.InDelta(t, 1.1355, records[5].Placement.Correction, 1e-9)
}
