// Package l3exposure owns Layer 3 (Exposure) of the voxel data model.
//
// Responsibilities: colour space conversion, regional luminance estimation
// over a camera image, and the session-wide exposure correction filter.
// Key types: Color, Image, Filter, CorrectionParams.
//
// Dependency rule: L3 may depend on L1-L2, but never on the pipeline.
// The correction filter is a single shared scalar, not per-voxel state.
package l3exposure
