package column

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/tabular/pkg/taberrors"
)

func TestBufferZeroLengthHasZeroChunks(t *testing.T) {
	b := newChunkedBuffer[int64](4)
	assert.Equal(t, int64(0), b.Len())
	assert.Equal(t, 0, b.NumChunks())
}

func TestBufferResizeGrowMarksNull(t *testing.T) {
	b := newChunkedBuffer[int64](4)
	require.NoError(t, b.Resize(10))

	assert.Equal(t, int64(10), b.Len())
	assert.Equal(t, 3, b.NumChunks())
	assert.Equal(t, int64(10), b.NullCount())

	v, valid, err := b.Value(9)
	require.NoError(t, err)
	assert.False(t, valid)
	assert.Equal(t, int64(0), v)
}

func TestBufferExactCapacityMultipleHasNoEmptyChunk(t *testing.T) {
	b := newChunkedBuffer[int64](4)
	require.NoError(t, b.Resize(8))
	assert.Equal(t, 2, b.NumChunks())

	// The next appended row lands in a freshly allocated third chunk.
	v := int64(42)
	b.Append(&v)
	assert.Equal(t, 3, b.NumChunks())
	assert.Equal(t, int64(9), b.Len())
}

func TestBufferResizeShrink(t *testing.T) {
	b := newChunkedBuffer[int64](4)
	for i := int64(0); i < 10; i++ {
		v := i
		b.Append(&v)
	}
	require.NoError(t, b.Set(9, nil))
	require.Equal(t, int64(1), b.NullCount())

	// Truncation drops the null row's contribution and the third chunk.
	require.NoError(t, b.Resize(8))
	assert.Equal(t, int64(8), b.Len())
	assert.Equal(t, 2, b.NumChunks())
	assert.Equal(t, int64(0), b.NullCount())

	// Shrink to a mid-chunk length.
	require.NoError(t, b.Resize(5))
	assert.Equal(t, 2, b.NumChunks())

	// Shrink to empty drops every chunk.
	require.NoError(t, b.Resize(0))
	assert.Equal(t, 0, b.NumChunks())
}

func TestBufferResizeNegative(t *testing.T) {
	b := newChunkedBuffer[int64](4)
	err := b.Resize(-1)
	assert.True(t, taberrors.IsType(err, taberrors.ErrorTypeRange))
}

func TestBufferAppendManyMatchesSequentialAppends(t *testing.T) {
	value := int64(7)
	tests := []struct {
		name string
		v    *int64
	}{
		{name: "null", v: nil},
		{name: "value", v: &value},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batched := newChunkedBuffer[int64](4)
			sequential := newChunkedBuffer[int64](4)

			require.NoError(t, batched.AppendMany(tt.v, 10))
			for i := 0; i < 10; i++ {
				sequential.Append(tt.v)
			}

			require.Equal(t, sequential.Len(), batched.Len())
			assert.Equal(t, sequential.NullCount(), batched.NullCount())
			for i := int64(0); i < 10; i++ {
				want, wantValid, err := sequential.Value(i)
				require.NoError(t, err)
				got, gotValid, err := batched.Value(i)
				require.NoError(t, err)
				assert.Equal(t, want, got)
				assert.Equal(t, wantValid, gotValid)
			}
		})
	}
}

func TestBufferSetUpdatesNullCountInPlace(t *testing.T) {
	b := newChunkedBuffer[int64](4)
	require.NoError(t, b.AppendMany(nil, 5))
	require.Equal(t, int64(5), b.NullCount())

	v := int64(3)
	require.NoError(t, b.Set(2, &v))
	assert.Equal(t, int64(4), b.NullCount())

	require.NoError(t, b.Set(2, nil))
	assert.Equal(t, int64(5), b.NullCount())
}

func TestBufferValueRangeError(t *testing.T) {
	b := newChunkedBuffer[int64](4)
	require.NoError(t, b.Resize(3))

	_, _, err := b.Value(3)
	assert.True(t, taberrors.IsType(err, taberrors.ErrorTypeRange))
	_, _, err = b.Value(-1)
	assert.True(t, taberrors.IsType(err, taberrors.ErrorTypeRange))
}

func TestBufferChunkIndexForRow(t *testing.T) {
	b := newChunkedBuffer[int64](4)
	require.NoError(t, b.Resize(9))

	ci, err := b.ChunkIndexForRow(0)
	require.NoError(t, err)
	assert.Equal(t, 0, ci)

	ci, err = b.ChunkIndexForRow(7)
	require.NoError(t, err)
	assert.Equal(t, 1, ci)

	ci, err = b.ChunkIndexForRow(8)
	require.NoError(t, err)
	assert.Equal(t, 2, ci)

	_, err = b.ChunkIndexForRow(9)
	assert.True(t, taberrors.IsType(err, taberrors.ErrorTypeRange))
}

func TestBufferValuesSliceChunkAligned(t *testing.T) {
	b := newChunkedBuffer[int64](4)
	for i := int64(0); i < 10; i++ {
		v := i * 10
		b.Append(&v)
	}

	vals, err := b.ValuesSlice(4, 4)
	require.NoError(t, err)
	assert.Equal(t, []int64{40, 50, 60, 70}, vals)

	// A range crossing a chunk boundary fails explicitly instead of copying.
	_, err = b.ValuesSlice(2, 4)
	assert.True(t, taberrors.IsType(err, taberrors.ErrorTypeArgument))

	_, err = b.ValuesSlice(8, 4)
	assert.True(t, taberrors.IsType(err, taberrors.ErrorTypeRange))
}

func TestBufferEmptyRangeAtEndOfStorage(t *testing.T) {
	// A zero-count range at start == length is inside the documented contract
	// but can point past the last allocated chunk: an empty buffer has zero
	// chunks, and an exact capacity multiple has no trailing empty chunk.
	b := newChunkedBuffer[int64](2)

	vals, err := b.ValuesSlice(0, 0)
	require.NoError(t, err)
	assert.Empty(t, vals)
	nulls, err := b.ValidityCountRange(0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), nulls)

	v := int64(7)
	require.NoError(t, b.AppendMany(&v, 4))
	require.Equal(t, 2, b.NumChunks())

	vals, err = b.ValuesSlice(4, 0)
	require.NoError(t, err)
	assert.Empty(t, vals)
	nulls, err = b.ValidityCountRange(4, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), nulls)

	// Past the end is still a range error.
	_, err = b.ValuesSlice(5, 0)
	assert.True(t, taberrors.IsType(err, taberrors.ErrorTypeRange))
}

func TestBufferValidityCountRange(t *testing.T) {
	b := newChunkedBuffer[int64](4)
	require.NoError(t, b.AppendMany(nil, 4))
	v := int64(1)
	require.NoError(t, b.Set(1, &v))

	nulls, err := b.ValidityCountRange(0, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(3), nulls)
}

func TestBufferClone(t *testing.T) {
	b := newChunkedBuffer[int64](4)
	for i := int64(0); i < 6; i++ {
		v := i
		b.Append(&v)
	}
	require.NoError(t, b.Set(5, nil))

	c := b.Clone()
	require.Equal(t, b.Len(), c.Len())
	assert.Equal(t, b.NullCount(), c.NullCount())

	// Mutating the clone leaves the source untouched.
	v := int64(99)
	require.NoError(t, c.Set(0, &v))
	orig, _, err := b.Value(0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), orig)
}
