// Package arrowwire exposes column storage in the Arrow columnar wire format:
// raw buffer framing for chunk-aligned row ranges, and arrow array/record
// construction for IPC handoff to downstream consumers.
package arrowwire

import (
	"encoding/binary"
	"math"

	"github.com/apache/arrow-go/v18/arrow/bitutil"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/ajitpratap0/tabular/pkg/column"
	"github.com/ajitpratap0/tabular/pkg/taberrors"
)

// RangeBuffers is the wire framing of one contiguous row range of a column:
// a value buffer of raw fixed-width element bytes (bools are bit-packed), a
// bit-packed LSB-first validity buffer (1 = valid), the range offset and
// length, and the range's null count. The range must not cross a chunk
// boundary; exporting a spanning range fails rather than silently copying
// across chunks.
type RangeBuffers struct {
	Values    *memory.Buffer
	Validity  *memory.Buffer
	Offset    int64
	Length    int64
	NullCount int64
}

// Release frees the underlying buffers.
func (r *RangeBuffers) Release() {
	if r.Values != nil {
		r.Values.Release()
	}
	if r.Validity != nil {
		r.Validity.Release()
	}
}

// ExportRange frames rows [start, start+count) of a column for wire export.
// The allocator may be nil, in which case the default Go allocator is used.
func ExportRange[T column.Scalar](col *column.Column[T], start, count int64, alloc memory.Allocator) (*RangeBuffers, error) {
	if alloc == nil {
		alloc = memory.DefaultAllocator
	}
	vals, err := col.Buffer().ValuesSlice(start, count)
	if err != nil {
		return nil, err
	}
	nulls, err := col.Buffer().ValidityCountRange(start, count)
	if err != nil {
		return nil, err
	}

	values, err := encodeValues(vals, alloc)
	if err != nil {
		return nil, err
	}

	validity := memory.NewResizableBuffer(alloc)
	validity.Resize(int(bitutil.BytesForBits(count)))
	for i := int64(0); i < count; i++ {
		valid, err := col.IsValid(start + i)
		if err != nil {
			values.Release()
			validity.Release()
			return nil, err
		}
		if valid {
			bitutil.SetBit(validity.Bytes(), int(i))
		}
	}

	return &RangeBuffers{
		Values:    values,
		Validity:  validity,
		Offset:    start,
		Length:    count,
		NullCount: nulls,
	}, nil
}

// encodeValues serializes elements little-endian at their fixed width; bools
// are bit-packed per the Arrow layout.
func encodeValues[T column.Scalar](vals []T, alloc memory.Allocator) (*memory.Buffer, error) {
	buf := memory.NewResizableBuffer(alloc)

	if _, ok := any(vals).([]bool); ok {
		bools := any(vals).([]bool)
		buf.Resize(int(bitutil.BytesForBits(int64(len(bools)))))
		for i, v := range bools {
			if v {
				bitutil.SetBit(buf.Bytes(), i)
			}
		}
		return buf, nil
	}

	width, err := column.KindOf[T]().ByteWidth()
	if err != nil {
		buf.Release()
		return nil, taberrors.Wrap(err, taberrors.ErrorTypeNotSupported, "cannot frame value buffer")
	}
	buf.Resize(len(vals) * width)
	out := buf.Bytes()
	for i, v := range vals {
		putValue(out[i*width:(i+1)*width], v)
	}
	return buf, nil
}

func putValue[T column.Scalar](dst []byte, v T) {
	switch x := any(v).(type) {
	case int8:
		dst[0] = byte(x)
	case uint8:
		dst[0] = x
	case int16:
		binary.LittleEndian.PutUint16(dst, uint16(x))
	case uint16:
		binary.LittleEndian.PutUint16(dst, x)
	case int32:
		binary.LittleEndian.PutUint32(dst, uint32(x))
	case uint32:
		binary.LittleEndian.PutUint32(dst, x)
	case int64:
		binary.LittleEndian.PutUint64(dst, uint64(x))
	case uint64:
		binary.LittleEndian.PutUint64(dst, x)
	case float32:
		binary.LittleEndian.PutUint32(dst, math.Float32bits(x))
	case float64:
		binary.LittleEndian.PutUint64(dst, math.Float64bits(x))
	}
}
