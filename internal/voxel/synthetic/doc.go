// Package synthetic provides stand-in implementations of the pipeline
// capabilities: an axis-aligned room to cast rays against, a fixed camera
// rig, an image-backed frame source, sweeping ray sources and an in-memory
// voxel factory. The voxelscan command uses them to run the sampling
// pipeline headless, and tests use them as realistic collaborators.
package synthetic
