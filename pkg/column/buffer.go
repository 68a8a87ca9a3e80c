package column

import (
	"github.com/ajitpratap0/tabular/pkg/bitmap"
	"github.com/ajitpratap0/tabular/pkg/taberrors"
)

// DefaultChunkCapacity is the maximum number of elements per chunk. Tests and
// embedders may lower it per column via WithChunkCapacity; chunk addressing is
// not observable through the container API except for the explicit
// spans-multiple-chunks export error.
const DefaultChunkCapacity int64 = 1<<31 - 1

// ChunkedBuffer is the value storage for one column: an ordered sequence of
// bounded-capacity chunks, each paired 1:1 with a validity bitmap of identical
// row count. Chunk i holds global rows [i*cap, (i+1)*cap). Every chunk except
// possibly the last is exactly full, a zero-length buffer has zero chunks, and
// a length that is an exact multiple of the capacity has no trailing empty
// chunk.
type ChunkedBuffer[T Scalar] struct {
	chunks   [][]T
	validity []*bitmap.Bitmap
	length   int64
	chunkCap int64
}

func newChunkedBuffer[T Scalar](chunkCap int64) *ChunkedBuffer[T] {
	if chunkCap <= 0 {
		chunkCap = DefaultChunkCapacity
	}
	return &ChunkedBuffer[T]{chunkCap: chunkCap}
}

// Len returns the total number of rows across all chunks.
func (b *ChunkedBuffer[T]) Len() int64 {
	return b.length
}

// NumChunks returns the number of allocated chunks.
func (b *ChunkedBuffer[T]) NumChunks() int {
	return len(b.chunks)
}

// ChunkCapacity returns the per-chunk element capacity.
func (b *ChunkedBuffer[T]) ChunkCapacity() int64 {
	return b.chunkCap
}

// NullCount returns the number of null rows, summed from the per-chunk
// incrementally maintained counts. No chunk is ever scanned.
func (b *ChunkedBuffer[T]) NullCount() int64 {
	var nulls int64
	for _, v := range b.validity {
		nulls += v.NullCount()
	}
	return nulls
}

// Resize grows or shrinks the buffer to n rows. New rows are null with zeroed
// storage; shrinking discards values and nulls beyond n. A failed resize
// leaves the buffer unmodified.
func (b *ChunkedBuffer[T]) Resize(n int64) error {
	if n < 0 {
		return taberrors.Newf(taberrors.ErrorTypeRange, "cannot resize to negative length %d", n)
	}
	if n > b.length {
		b.grow(n)
	} else if n < b.length {
		b.shrink(n)
	}
	return nil
}

func (b *ChunkedBuffer[T]) grow(n int64) {
	for b.length < n {
		last := len(b.chunks) - 1
		if last < 0 || int64(len(b.chunks[last])) == b.chunkCap {
			b.chunks = append(b.chunks, nil)
			b.validity = append(b.validity, &bitmap.Bitmap{})
			last++
		}
		room := b.chunkCap - int64(len(b.chunks[last]))
		fill := n - b.length
		if fill > room {
			fill = room
		}
		var zero T
		for i := int64(0); i < fill; i++ {
			b.chunks[last] = append(b.chunks[last], zero)
		}
		b.validity[last].Resize(int64(len(b.chunks[last])))
		b.length += fill
	}
}

func (b *ChunkedBuffer[T]) shrink(n int64) {
	// Drop whole chunks beyond n, then truncate the last survivor. A chunk
	// truncated to zero rows is dropped too.
	keep := int((n + b.chunkCap - 1) / b.chunkCap)
	b.chunks = b.chunks[:keep]
	b.validity = b.validity[:keep]
	if keep > 0 {
		rem := n - int64(keep-1)*b.chunkCap
		b.chunks[keep-1] = b.chunks[keep-1][:rem]
		b.validity[keep-1].Resize(rem)
	}
	b.length = n
}

// Append adds one row holding v, or a null row when v is nil.
func (b *ChunkedBuffer[T]) Append(v *T) {
	// Resize cannot fail for length+1.
	_ = b.Resize(b.length + 1)
	b.set(b.length-1, v)
}

// AppendMany adds count rows all holding v (or all null when v is nil),
// updating each affected chunk's null count once rather than per row.
func (b *ChunkedBuffer[T]) AppendMany(v *T, count int64) error {
	if count < 0 {
		return taberrors.Newf(taberrors.ErrorTypeRange, "cannot append %d rows", count)
	}
	start := b.length
	if err := b.Resize(start + count); err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	for row := start; row < start+count; {
		ci := int(row / b.chunkCap)
		local := row % b.chunkCap
		fill := int64(len(b.chunks[ci])) - local
		if fill > start+count-row {
			fill = start + count - row
		}
		for i := local; i < local+fill; i++ {
			b.chunks[ci][i] = *v
		}
		b.validity[ci].SetRange(local, fill, true)
		row += fill
	}
	return nil
}

// Value returns the value and validity of the given row.
func (b *ChunkedBuffer[T]) Value(row int64) (T, bool, error) {
	if row < 0 || row >= b.length {
		var zero T
		return zero, false, b.rowRangeError(row)
	}
	ci := int(row / b.chunkCap)
	local := row % b.chunkCap
	return b.chunks[ci][local], b.validity[ci].Get(local), nil
}

// IsValid reports whether the given row holds a non-null value.
func (b *ChunkedBuffer[T]) IsValid(row int64) (bool, error) {
	if row < 0 || row >= b.length {
		return false, b.rowRangeError(row)
	}
	ci := int(row / b.chunkCap)
	return b.validity[ci].Get(row % b.chunkCap), nil
}

// Set assigns v to the given row, updating the validity bit and null count in
// O(1). A nil v marks the row null.
func (b *ChunkedBuffer[T]) Set(row int64, v *T) error {
	if row < 0 || row >= b.length {
		return b.rowRangeError(row)
	}
	b.set(row, v)
	return nil
}

// set assumes row is in range.
func (b *ChunkedBuffer[T]) set(row int64, v *T) {
	ci := int(row / b.chunkCap)
	local := row % b.chunkCap
	if v == nil {
		var zero T
		b.chunks[ci][local] = zero
		b.validity[ci].Set(local, false)
		return
	}
	b.chunks[ci][local] = *v
	b.validity[ci].Set(local, true)
}

// ChunkIndexForRow locates the chunk holding the given global row.
func (b *ChunkedBuffer[T]) ChunkIndexForRow(row int64) (int, error) {
	if row < 0 || row >= b.length {
		return 0, b.rowRangeError(row)
	}
	return int(row / b.chunkCap), nil
}

// ValuesSlice returns the raw value slice for a contiguous row range. The
// range must lie within one chunk; callers are responsible for chunk-aligned
// access patterns. The returned slice aliases the chunk storage.
func (b *ChunkedBuffer[T]) ValuesSlice(start, count int64) ([]T, error) {
	if err := b.checkChunkAligned(start, count); err != nil {
		return nil, err
	}
	// An empty range at start == length is valid but may point past the last
	// allocated chunk.
	if count == 0 {
		return nil, nil
	}
	local := start % b.chunkCap
	return b.chunks[start/b.chunkCap][local : local+count], nil
}

// ValidityCountRange returns the null count of a contiguous row range lying
// within one chunk, recomputed by scan as a sub-range count is not cached.
func (b *ChunkedBuffer[T]) ValidityCountRange(start, count int64) (int64, error) {
	if err := b.checkChunkAligned(start, count); err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, nil
	}
	ci := int(start / b.chunkCap)
	local := start % b.chunkCap
	var nulls int64
	for i := local; i < local+count; i++ {
		if !b.validity[ci].Get(i) {
			nulls++
		}
	}
	return nulls, nil
}

func (b *ChunkedBuffer[T]) checkChunkAligned(start, count int64) error {
	if start < 0 || count < 0 || start+count > b.length {
		return taberrors.New(taberrors.ErrorTypeRange, "row range out of bounds").
			WithDetail("start", start).
			WithDetail("count", count).
			WithDetail("length", b.length)
	}
	if count > 0 && start/b.chunkCap != (start+count-1)/b.chunkCap {
		return taberrors.New(taberrors.ErrorTypeArgument, "row range spans multiple chunks").
			WithDetail("start", start).
			WithDetail("count", count).
			WithDetail("chunk_capacity", b.chunkCap)
	}
	return nil
}

// Clone returns a deep copy with independent chunks and identical values,
// validity and null count.
func (b *ChunkedBuffer[T]) Clone() *ChunkedBuffer[T] {
	out := &ChunkedBuffer[T]{
		chunks:   make([][]T, len(b.chunks)),
		validity: make([]*bitmap.Bitmap, len(b.validity)),
		length:   b.length,
		chunkCap: b.chunkCap,
	}
	for i, chunk := range b.chunks {
		c := make([]T, len(chunk))
		copy(c, chunk)
		out.chunks[i] = c
		out.validity[i] = b.validity[i].Clone()
	}
	return out
}

// suspendNullTracking disables incremental null counting on every chunk for
// bulk gather construction; resumeNullTracking finalizes the counts.
func (b *ChunkedBuffer[T]) suspendNullTracking() {
	for _, v := range b.validity {
		v.SuspendNullTracking()
	}
}

func (b *ChunkedBuffer[T]) resumeNullTracking() {
	for _, v := range b.validity {
		v.ResumeNullTracking()
	}
}

func (b *ChunkedBuffer[T]) rowRangeError(row int64) *taberrors.Error {
	return taberrors.New(taberrors.ErrorTypeRange, "row index out of range").
		WithDetail("row", row).
		WithDetail("length", b.length)
}
