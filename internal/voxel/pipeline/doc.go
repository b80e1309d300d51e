// Package pipeline provides the per-tick sampling orchestrator that turns
// environment ray hits into coloured voxels.
//
// This package is the composition root: it imports from the layer packages
// (l1lattice, l2camera, l3exposure) but none of those import pipeline/.
// External collaborators (ray casting, camera frames, camera pose, voxel
// rendering, persistence) are consumed through the interfaces in
// capabilities.go.
package pipeline
