package synthetic

import (
	"sync"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/voxel.paint/internal/voxel/l3exposure"
	"github.com/banshee-data/voxel.paint/internal/voxel/pipeline"
)

// MemoryVoxel is a voxel held in memory.
type MemoryVoxel struct {
	ID     string
	Center r3.Vec
	Edge   float64

	mu      sync.Mutex
	color   l3exposure.Color
	colored bool
}

// SetColor sets the voxel's material colour.
func (v *MemoryVoxel) SetColor(c l3exposure.Color) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.color = c
	v.colored = true
}

// Color returns the colour and whether one was ever set.
func (v *MemoryVoxel) Color() (l3exposure.Color, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.color, v.colored
}

// MemoryVoxelFactory records every voxel it creates, in creation order.
type MemoryVoxelFactory struct {
	mu     sync.Mutex
	voxels []*MemoryVoxel
}

var _ pipeline.VoxelFactory = (*MemoryVoxelFactory)(nil)

// NewMemoryVoxelFactory creates an empty factory.
func NewMemoryVoxelFactory() *MemoryVoxelFactory {
	return &MemoryVoxelFactory{}
}

func (f *MemoryVoxelFactory) CreateVoxel(center r3.Vec, edge float64) pipeline.VoxelHandle {
	v := &MemoryVoxel{ID: uuid.New().String(), Center: center, Edge: edge}
	f.mu.Lock()
	f.voxels = append(f.voxels, v)
	f.mu.Unlock()
	return v
}

// Voxels returns the created voxels.
func (f *MemoryVoxelFactory) Voxels() []*MemoryVoxel {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*MemoryVoxel(nil), f.voxels...)
}

// Len returns how many voxels were created.
func (f *MemoryVoxelFactory) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.voxels)
}
