package column

import "github.com/ajitpratap0/tabular/pkg/taberrors"

// ReduceOp identifies a null-aware numeric reduction over a row-index set.
// The group-by engine drives reductions exclusively through this enum so that
// every aggregate shares one fold path per column kind.
type ReduceOp int

const (
	ReduceMin ReduceOp = iota
	ReduceMax
	ReduceSum
	ReduceProduct
)

var reduceNames = map[ReduceOp]string{
	ReduceMin:     "min",
	ReduceMax:     "max",
	ReduceSum:     "sum",
	ReduceProduct: "product",
}

// String returns the operation's lowercase name.
func (op ReduceOp) String() string {
	if name, ok := reduceNames[op]; ok {
		return name
	}
	return "unknown"
}

// Reduce folds the given row set with op, skipping null rows. The boolean
// result reports whether any non-null row contributed; when it is false the
// value is T's zero value and the caller should treat the result as null.
// Non-numeric kinds fail fast with a not-supported error at first use, not at
// column construction.
func (c *Column[T]) Reduce(op ReduceOp, rows []int64) (T, bool, error) {
	var zero T
	switch col := any(c).(type) {
	case *Column[int8]:
		return retyped[T](reduceNumeric(col, op, rows))
	case *Column[int16]:
		return retyped[T](reduceNumeric(col, op, rows))
	case *Column[int32]:
		return retyped[T](reduceNumeric(col, op, rows))
	case *Column[int64]:
		return retyped[T](reduceNumeric(col, op, rows))
	case *Column[uint8]:
		return retyped[T](reduceNumeric(col, op, rows))
	case *Column[uint16]:
		return retyped[T](reduceNumeric(col, op, rows))
	case *Column[uint32]:
		return retyped[T](reduceNumeric(col, op, rows))
	case *Column[uint64]:
		return retyped[T](reduceNumeric(col, op, rows))
	case *Column[float32]:
		return retyped[T](reduceNumeric(col, op, rows))
	case *Column[float64]:
		return retyped[T](reduceNumeric(col, op, rows))
	default:
		return zero, false, taberrors.Newf(taberrors.ErrorTypeNotSupported,
			"kind %s has no %s reduction", c.kind, op)
	}
}

// retyped converts a reduction result from its concrete numeric type back to
// the column's type parameter. The assertion cannot fail: the type switch in
// Reduce guarantees U == T on every path.
func retyped[T Scalar, U Number](v U, ok bool, err error) (T, bool, error) {
	var zero T
	if err != nil {
		return zero, false, err
	}
	return any(v).(T), ok, nil
}

func reduceNumeric[T Number](c *Column[T], op ReduceOp, rows []int64) (T, bool, error) {
	var acc T
	var seen bool
	for _, row := range rows {
		v, valid, err := c.Value(row)
		if err != nil {
			return acc, false, err
		}
		if !valid {
			continue
		}
		if !seen {
			acc = v
			seen = true
			continue
		}
		switch op {
		case ReduceMin:
			if v < acc {
				acc = v
			}
		case ReduceMax:
			if v > acc {
				acc = v
			}
		case ReduceSum:
			acc += v
		case ReduceProduct:
			acc *= v
		}
	}
	return acc, seen, nil
}

// ReduceAppend implements AnyColumn: it folds rows with op and appends the
// result to dst, which must share this column's element type. A row set with
// no non-null contribution appends null.
func (c *Column[T]) ReduceAppend(op ReduceOp, rows []int64, dst AnyColumn) error {
	d, ok := dst.(*Column[T])
	if !ok {
		return taberrors.New(taberrors.ErrorTypeTypeMismatch, "destination column element type differs").
			WithDetail("want", c.kind.String()).
			WithDetail("got", dst.Kind().String())
	}
	v, seen, err := c.Reduce(op, rows)
	if err != nil {
		return err
	}
	if seen {
		d.Append(&v)
	} else {
		d.AppendNull()
	}
	return nil
}
