// Package l2camera owns Layer 2 (Camera) of the voxel data model.
//
// Responsibilities: camera pose and lens intrinsics as read-only inputs, and
// projection of world points into normalised image coordinates with a
// pinhole model.
// Key types: Pose, Intrinsics, UV, Eye.
//
// Dependency rule: L2 may depend on L1, but never on L3+.
package l2camera
