package arrowwire

import (
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/ajitpratap0/tabular/pkg/column"
	"github.com/ajitpratap0/tabular/pkg/table"
	"github.com/ajitpratap0/tabular/pkg/taberrors"
)

// ArrowType maps a scalar kind to its arrow data type.
func ArrowType(kind column.ScalarKind) (arrow.DataType, error) {
	switch kind {
	case column.KindBool:
		return arrow.FixedWidthTypes.Boolean, nil
	case column.KindInt8:
		return arrow.PrimitiveTypes.Int8, nil
	case column.KindInt16:
		return arrow.PrimitiveTypes.Int16, nil
	case column.KindInt32:
		return arrow.PrimitiveTypes.Int32, nil
	case column.KindInt64:
		return arrow.PrimitiveTypes.Int64, nil
	case column.KindUint8:
		return arrow.PrimitiveTypes.Uint8, nil
	case column.KindUint16:
		return arrow.PrimitiveTypes.Uint16, nil
	case column.KindUint32:
		return arrow.PrimitiveTypes.Uint32, nil
	case column.KindUint64:
		return arrow.PrimitiveTypes.Uint64, nil
	case column.KindFloat32:
		return arrow.PrimitiveTypes.Float32, nil
	case column.KindFloat64:
		return arrow.PrimitiveTypes.Float64, nil
	default:
		return nil, taberrors.Newf(taberrors.ErrorTypeNotSupported,
			"kind %s has no arrow type mapping", kind)
	}
}

// Schema builds the arrow schema for a table.
func Schema(t *table.Table) (*arrow.Schema, error) {
	fields := make([]arrow.Field, 0, t.NumColumns())
	for i := 0; i < t.NumColumns(); i++ {
		col, err := t.Column(i)
		if err != nil {
			return nil, err
		}
		typ, err := ArrowType(col.Kind())
		if err != nil {
			return nil, err
		}
		fields = append(fields, arrow.Field{Name: col.Name(), Type: typ, Nullable: true})
	}
	return arrow.NewSchema(fields, nil), nil
}

// BuildArray materializes a whole column as an arrow array. The caller owns
// the returned array and must Release it.
func BuildArray(col column.AnyColumn, alloc memory.Allocator) (arrow.Array, error) {
	if alloc == nil {
		alloc = memory.DefaultAllocator
	}
	switch c := col.(type) {
	case *column.Column[bool]:
		return buildArray(c, array.NewBooleanBuilder(alloc))
	case *column.Column[int8]:
		return buildArray(c, array.NewInt8Builder(alloc))
	case *column.Column[int16]:
		return buildArray(c, array.NewInt16Builder(alloc))
	case *column.Column[int32]:
		return buildArray(c, array.NewInt32Builder(alloc))
	case *column.Column[int64]:
		return buildArray(c, array.NewInt64Builder(alloc))
	case *column.Column[uint8]:
		return buildArray(c, array.NewUint8Builder(alloc))
	case *column.Column[uint16]:
		return buildArray(c, array.NewUint16Builder(alloc))
	case *column.Column[uint32]:
		return buildArray(c, array.NewUint32Builder(alloc))
	case *column.Column[uint64]:
		return buildArray(c, array.NewUint64Builder(alloc))
	case *column.Column[float32]:
		return buildArray(c, array.NewFloat32Builder(alloc))
	case *column.Column[float64]:
		return buildArray(c, array.NewFloat64Builder(alloc))
	default:
		return nil, taberrors.Newf(taberrors.ErrorTypeNotSupported,
			"kind %s has no arrow array builder", col.Kind())
	}
}

// valueBuilder is the slice of the arrow builder surface shared by every
// fixed-width primitive builder.
type valueBuilder[T column.Scalar] interface {
	Append(T)
	AppendNull()
	NewArray() arrow.Array
	Release()
}

func buildArray[T column.Scalar](c *column.Column[T], b valueBuilder[T]) (arrow.Array, error) {
	defer b.Release()
	length := c.Len()
	for row := int64(0); row < length; row++ {
		v, valid, err := c.Value(row)
		if err != nil {
			return nil, err
		}
		if valid {
			b.Append(v)
		} else {
			b.AppendNull()
		}
	}
	return b.NewArray(), nil
}

// BuildRecord materializes a table as one arrow record batch.
func BuildRecord(t *table.Table, alloc memory.Allocator) (arrow.Record, error) {
	if alloc == nil {
		alloc = memory.DefaultAllocator
	}
	schema, err := Schema(t)
	if err != nil {
		return nil, err
	}
	arrays := make([]arrow.Array, 0, t.NumColumns())
	release := func() {
		for _, a := range arrays {
			a.Release()
		}
	}
	for i := 0; i < t.NumColumns(); i++ {
		col, _ := t.Column(i)
		arr, err := BuildArray(col, alloc)
		if err != nil {
			release()
			return nil, err
		}
		arrays = append(arrays, arr)
	}
	rec := array.NewRecord(schema, arrays, t.NumRows())
	release()
	return rec, nil
}

// WriteIPC writes the table to w as a single-batch Arrow IPC file.
func WriteIPC(w io.Writer, t *table.Table) error {
	rec, err := BuildRecord(t, memory.DefaultAllocator)
	if err != nil {
		return err
	}
	defer rec.Release()

	fw, err := ipc.NewFileWriter(w, ipc.WithSchema(rec.Schema()), ipc.WithAllocator(memory.DefaultAllocator))
	if err != nil {
		return taberrors.Wrap(err, taberrors.ErrorTypeInternal, "failed to create arrow file writer")
	}
	if err := fw.Write(rec); err != nil {
		_ = fw.Close()
		return taberrors.Wrap(err, taberrors.ErrorTypeInternal, "failed to write record batch")
	}
	return fw.Close()
}
