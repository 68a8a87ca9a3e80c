// Package column implements nullable, chunked, typed column containers, the
// storage core of tabular.
//
// A Column[T] stores a sequence of nullable T values in bounded-capacity
// chunks, each chunk paired with a validity bitmap, in a binary layout
// compatible with the Arrow columnar wire format (see pkg/arrowwire for the
// buffer framing). Null counts are maintained incrementally; no operation
// recomputes them by full scan except the explicit two-phase finalization
// after bulk gather construction.
//
// The package provides:
//   - ChunkedBuffer[T]: chunk addressing, resize/append semantics, and the
//     chunk-aligned raw slice access exporters rely on
//   - Column[T]: the typed façade with nullable indexing, gather clones,
//     in-place Apply, and per-group numeric reductions
//   - AnyColumn: the type-erased interface tables and the group-by engine
//     operate on
//   - OrderedMap: the insertion-ordered map backing group partitions
//
// Columns are exclusively owned by their table and are not safe for
// concurrent mutation; clone and gather operations always produce fresh,
// independently owned storage rather than aliasing chunks.
package column
