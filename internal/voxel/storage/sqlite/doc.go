// Package sqlite persists voxel scan sessions and placements.
//
// The schema is owned by the embedded migrations/ directory and applied with
// golang-migrate on Open. Domain packages (l1lattice, l2camera, l3exposure,
// pipeline) never import this package; the host wires a PlacementStore in
// as the orchestrator's PlacementSink.
package sqlite
