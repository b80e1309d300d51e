// Package l1lattice owns Layer 1 (Lattice) of the voxel data model.
//
// Responsibilities: mapping world points onto the integer voxel lattice and
// tracking which lattice cells are already occupied.
// Key types: Key, Index.
//
// Dependency rule: L1 depends on nothing above it. The occupancy set is
// growth-only; there is no eviction for the lifetime of a session.
package l1lattice
