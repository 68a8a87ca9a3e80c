package column

import (
	"iter"

	"go.uber.org/zap"

	"github.com/ajitpratap0/tabular/pkg/logger"
	"github.com/ajitpratap0/tabular/pkg/taberrors"
)

// AnyColumn is the type-erased view of a Column used by tables and the
// group-by engine. Concrete columns are always *Column[T] for some Scalar T;
// operations that need the element type assert on it and fail with a
// type-mismatch or not-supported error otherwise.
type AnyColumn interface {
	Name() string
	Kind() ScalarKind
	Len() int64
	NullCount() int64
	IsValid(row int64) (bool, error)
	// ValueAny returns the boxed value and validity of the given row.
	ValueAny(row int64) (interface{}, bool, error)
	Resize(n int64) error
	AppendNull()

	// CloneAny returns a structural deep copy.
	CloneAny() AnyColumn
	// CloneEmpty returns a fresh zero-length column of the same kind and
	// chunk capacity under the given name.
	CloneEmpty(name string) AnyColumn
	// CloneIndexedAny is the type-erased positional gather; see
	// Column.CloneIndexed.
	CloneIndexedAny(indices AnyColumn, invert bool, extraNulls int64) (AnyColumn, error)
	// AppendFromRow appends src's value at row, preserving nullness. src must
	// have the same element type.
	AppendFromRow(src AnyColumn, row int64) error
	// CountValid returns the number of non-null rows among the given row set.
	CountValid(rows []int64) (int64, error)
	// ReduceAppend folds the given row set with op and appends the result to
	// dst, which must have the same element type. A row set with no non-null
	// rows appends null.
	ReduceAppend(op ReduceOp, rows []int64, dst AnyColumn) error
	// PartitionRows builds the group partition for this column as grouping
	// key: a fresh column of the distinct keys in first-occurrence order and,
	// parallel to it, each key's row indices in original row order.
	PartitionRows() (AnyColumn, [][]int64)
}

// Column is a named, nullable, chunked sequence of T values.
type Column[T Scalar] struct {
	name string
	buf  *ChunkedBuffer[T]
	kind ScalarKind
}

// Option configures column construction.
type Option func(*options)

type options struct {
	chunkCap int64
}

// WithChunkCapacity overrides the per-chunk element capacity. Intended for
// tests exercising chunk boundaries and for embedders tuning memory growth.
func WithChunkCapacity(n int64) Option {
	return func(o *options) { o.chunkCap = n }
}

// New creates an empty column.
func New[T Scalar](name string, opts ...Option) *Column[T] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Column[T]{
		name: name,
		buf:  newChunkedBuffer[T](o.chunkCap),
		kind: kindOf[T](),
	}
}

// FromSlice creates a column holding the given values, all valid.
func FromSlice[T Scalar](name string, values []T, opts ...Option) *Column[T] {
	c := New[T](name, opts...)
	for i := range values {
		c.Append(&values[i])
	}
	return c
}

// FromValues creates a column from nullable values; nil entries are null rows.
func FromValues[T Scalar](name string, values []*T, opts ...Option) *Column[T] {
	c := New[T](name, opts...)
	for _, v := range values {
		c.Append(v)
	}
	return c
}

// Name returns the column name.
func (c *Column[T]) Name() string { return c.name }

// Kind returns the column's scalar kind.
func (c *Column[T]) Kind() ScalarKind { return c.kind }

// Len returns the number of rows.
func (c *Column[T]) Len() int64 { return c.buf.Len() }

// NullCount returns the number of null rows.
func (c *Column[T]) NullCount() int64 { return c.buf.NullCount() }

// Buffer exposes the underlying chunked storage for chunk-aligned exporters.
func (c *Column[T]) Buffer() *ChunkedBuffer[T] { return c.buf }

// IsValid reports whether the given row holds a non-null value.
func (c *Column[T]) IsValid(row int64) (bool, error) {
	return c.buf.IsValid(row)
}

// Value returns the value and validity of the given row.
func (c *Column[T]) Value(row int64) (T, bool, error) {
	return c.buf.Value(row)
}

// ValueAny implements AnyColumn.
func (c *Column[T]) ValueAny(row int64) (interface{}, bool, error) {
	v, valid, err := c.buf.Value(row)
	if err != nil {
		return nil, false, err
	}
	return v, valid, nil
}

// Set assigns v to the given row; nil marks the row null.
func (c *Column[T]) Set(row int64, v *T) error {
	return c.buf.Set(row, v)
}

// Values returns the nullable values of rows [start, start+count) in order.
// Unlike the raw chunk accessors, the range may cross chunk boundaries.
func (c *Column[T]) Values(start, count int64) ([]*T, error) {
	if start < 0 || count < 0 || start+count > c.Len() {
		return nil, taberrors.New(taberrors.ErrorTypeRange, "row range out of bounds").
			WithDetail("start", start).
			WithDetail("count", count).
			WithDetail("length", c.Len())
	}
	out := make([]*T, count)
	for i := int64(0); i < count; i++ {
		v, valid, err := c.buf.Value(start + i)
		if err != nil {
			return nil, err
		}
		if valid {
			value := v
			out[i] = &value
		}
	}
	return out, nil
}

// Resize grows the column with null rows or truncates it.
func (c *Column[T]) Resize(n int64) error {
	return c.buf.Resize(n)
}

// Append adds one row holding v, or a null row when v is nil.
func (c *Column[T]) Append(v *T) {
	c.buf.Append(v)
}

// AppendNull adds one null row.
func (c *Column[T]) AppendNull() {
	c.buf.Append(nil)
}

// AppendMany adds count rows all holding v, or count null rows when v is nil.
func (c *Column[T]) AppendMany(v *T, count int64) error {
	return c.buf.AppendMany(v, count)
}

// Clone returns a structural deep copy.
func (c *Column[T]) Clone() *Column[T] {
	return &Column[T]{name: c.name, buf: c.buf.Clone(), kind: c.kind}
}

// CloneAny implements AnyColumn.
func (c *Column[T]) CloneAny() AnyColumn {
	return c.Clone()
}

// CloneEmpty implements AnyColumn.
func (c *Column[T]) CloneEmpty(name string) AnyColumn {
	return New[T](name, WithChunkCapacity(c.buf.ChunkCapacity()))
}

// CloneIndexed builds a new column of indices.Len() rows where result row i is
// source row indices[i], or indices[indices.Len()-1-i] when invert is set. A
// null index leaves the target row null. indices.Len() must not exceed Len().
// Null-count bookkeeping is suspended during the bulk write and finalized in
// one pass; extraNulls trailing null rows are appended after the mapped copy.
// The source is never modified, also on failure.
func (c *Column[T]) CloneIndexed(indices *Column[int64], invert bool, extraNulls int64) (*Column[T], error) {
	mapLen := indices.Len()
	if mapLen > c.Len() {
		return nil, taberrors.New(taberrors.ErrorTypeArgument, "index column longer than source").
			WithDetail("indices", mapLen).
			WithDetail("length", c.Len())
	}
	if extraNulls < 0 {
		return nil, taberrors.Newf(taberrors.ErrorTypeRange, "cannot append %d extra nulls", extraNulls)
	}

	out := New[T](c.name, WithChunkCapacity(c.buf.ChunkCapacity()))
	if err := out.Resize(mapLen); err != nil {
		return nil, err
	}
	out.buf.suspendNullTracking()
	for i := int64(0); i < mapLen; i++ {
		pos := i
		if invert {
			pos = mapLen - 1 - i
		}
		srcRow, ok, err := indices.Value(pos)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		v, valid, err := c.Value(srcRow)
		if err != nil {
			return nil, err
		}
		if valid {
			out.buf.set(i, &v)
		}
	}
	out.buf.resumeNullTracking()

	if extraNulls > 0 {
		if err := out.AppendMany(nil, extraNulls); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// CloneIndexedAny implements AnyColumn; it fails with a type-mismatch error
// when indices is not an int64 column.
func (c *Column[T]) CloneIndexedAny(indices AnyColumn, invert bool, extraNulls int64) (AnyColumn, error) {
	idx, ok := indices.(*Column[int64])
	if !ok {
		return nil, taberrors.New(taberrors.ErrorTypeTypeMismatch, "index column must be int64").
			WithDetail("kind", indices.Kind().String())
	}
	return c.CloneIndexed(idx, invert, extraNulls)
}

// CloneFromSequence builds a new column of Len() rows from a lazily consumed
// index sequence. At most Len() indices are consumed, even if seq continues
// past that, and the i-th consumed index is used as the TARGET row for source
// row i (index-as-write-target). This is deliberately asymmetric with
// CloneIndexed, where indices select source rows positionally; both behaviors
// are load-bearing for existing callers.
func (c *Column[T]) CloneFromSequence(seq iter.Seq[int64]) (*Column[T], error) {
	out := New[T](c.name, WithChunkCapacity(c.buf.ChunkCapacity()))
	if err := out.Resize(c.Len()); err != nil {
		return nil, err
	}
	var i int64
	for target := range seq {
		if i >= c.Len() {
			break
		}
		v, valid, err := c.Value(i)
		if err != nil {
			return nil, err
		}
		if valid {
			if err := out.Set(target, &v); err != nil {
				return nil, err
			}
		} else {
			if err := out.Set(target, nil); err != nil {
				return nil, err
			}
		}
		i++
	}
	return out, nil
}

// GroupRowsByKey builds the insertion-ordered mapping from value to the row
// indices holding that value, scanning rows once in order. Null rows group
// under T's zero value: grouping does not distinguish null from the default
// value for the grouping column. This is explicit policy, not an accident.
func (c *Column[T]) GroupRowsByKey() *OrderedMap[T, []int64] {
	om := NewOrderedMap[T, []int64]()
	length := c.Len()
	for row := int64(0); row < length; row++ {
		// Row is in range by construction; the zero value doubles as the
		// null key.
		key, _, _ := c.buf.Value(row)
		rows, _ := om.Get(key)
		om.Set(key, append(rows, row))
	}
	return om
}

// PartitionRows implements AnyColumn.
func (c *Column[T]) PartitionRows() (AnyColumn, [][]int64) {
	om := c.GroupRowsByKey()
	keys := New[T](c.name, WithChunkCapacity(c.buf.ChunkCapacity()))
	om.Range(func(key T, _ []int64) bool {
		keys.Append(&key)
		return true
	})
	logger.Get().Debug("partitioned column rows",
		zap.String("column", c.name),
		zap.Int("groups", om.Len()),
		zap.Int64("rows", c.Len()))
	return keys, om.Values()
}

// Apply mutates every stored slot in place via f, chunk by chunk. It operates
// on raw slots regardless of validity: a null slot's underlying storage value
// still passes through f, and its null bit is unaffected.
func (c *Column[T]) Apply(f func(T) T) {
	for _, chunk := range c.buf.chunks {
		for i := range chunk {
			chunk[i] = f(chunk[i])
		}
	}
}

// AppendFromRow implements AnyColumn.
func (c *Column[T]) AppendFromRow(src AnyColumn, row int64) error {
	s, ok := src.(*Column[T])
	if !ok {
		return taberrors.New(taberrors.ErrorTypeTypeMismatch, "source column element type differs").
			WithDetail("want", c.kind.String()).
			WithDetail("got", src.Kind().String())
	}
	v, valid, err := s.Value(row)
	if err != nil {
		return err
	}
	if valid {
		c.Append(&v)
	} else {
		c.AppendNull()
	}
	return nil
}

// CountValid implements AnyColumn.
func (c *Column[T]) CountValid(rows []int64) (int64, error) {
	var count int64
	for _, row := range rows {
		valid, err := c.IsValid(row)
		if err != nil {
			return 0, err
		}
		if valid {
			count++
		}
	}
	return count, nil
}
