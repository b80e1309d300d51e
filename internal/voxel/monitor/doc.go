// Package monitor exposes scan progress for operators: running counters,
// a ring of recent exposure corrections, a small HTTP server with JSON and
// go-echarts endpoints, and PNG plots rendered with gonum/plot at the end
// of a run.
//
// Dependency rule: monitor may import pipeline and the layer packages; no
// layer package imports monitor.
package monitor
