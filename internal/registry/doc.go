// Package registry provides the central "glue" between task declarations and
// the engine.
//
// The Registry stores every declared task under its case-insensitive name,
// remembers registration order, and collects the run-wide and per-task
// lifecycle hooks. Tasks reach it three ways: chained Builder calls from Go
// code, table-driven Definitions backed by Go types, and task files bound
// through PopulateFromModel.
//
// No cross-task validation happens here. Unknown dependencies and cycles are
// reported by the dag package when the run's targets are resolved.
package registry
