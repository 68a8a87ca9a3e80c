// Package tabular is an in-memory columnar table engine.
//
// Typed columns store sequences of nullable values in chunked,
// validity-bitmap-backed storage whose binary layout is compatible with the
// Arrow columnar wire format, and a group-by engine partitions rows by key to
// compute per-group aggregates (count, first, head, tail, min, max, sum,
// product).
//
// The engine is a single-process, single-pass, in-memory structure: no
// persistence, no distribution, no query planning. See pkg/column for the
// storage core, pkg/table for tables and grouping, pkg/arrowwire for the wire
// buffer framing, and pkg/dataview for the read-only consumption protocol.
package tabular
