package column

import "github.com/ajitpratap0/tabular/pkg/taberrors"

// Scalar is the closed set of element types a column can store. Every kind is
// fixed-width; variable-length encodings (strings) live outside this package.
type Scalar interface {
	bool | int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64 | float32 | float64
}

// Number is the subset of Scalar with defined numeric reductions.
type Number interface {
	int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64 | float32 | float64
}

// ScalarKind identifies a column's element type for schema export and
// type dispatch. UTF-16 code unit columns are exposed as KindUint16 and
// high-precision decimals as KindFloat64, their nearest supported kinds.
type ScalarKind int

const (
	KindInvalid ScalarKind = iota
	KindBool
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
)

var kindNames = map[ScalarKind]string{
	KindInvalid: "invalid",
	KindBool:    "bool",
	KindInt8:    "int8",
	KindInt16:   "int16",
	KindInt32:   "int32",
	KindInt64:   "int64",
	KindUint8:   "uint8",
	KindUint16:  "uint16",
	KindUint32:  "uint32",
	KindUint64:  "uint64",
	KindFloat32: "float32",
	KindFloat64: "float64",
}

// String returns the kind's lowercase name.
func (k ScalarKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "invalid"
}

// ByteWidth returns the fixed element width in bytes, or an error for kinds
// without a whole-byte width (bool is bit-packed at the wire boundary).
func (k ScalarKind) ByteWidth() (int, error) {
	switch k {
	case KindInt8, KindUint8:
		return 1, nil
	case KindInt16, KindUint16:
		return 2, nil
	case KindInt32, KindUint32, KindFloat32:
		return 4, nil
	case KindInt64, KindUint64, KindFloat64:
		return 8, nil
	default:
		return 0, taberrors.Newf(taberrors.ErrorTypeNotSupported,
			"kind %s has no fixed byte width", k)
	}
}

// KindOf maps a Scalar type parameter to its ScalarKind.
func KindOf[T Scalar]() ScalarKind {
	return kindOf[T]()
}

// kindOf maps a Scalar type parameter to its ScalarKind.
func kindOf[T Scalar]() ScalarKind {
	var zero T
	switch any(zero).(type) {
	case bool:
		return KindBool
	case int8:
		return KindInt8
	case int16:
		return KindInt16
	case int32:
		return KindInt32
	case int64:
		return KindInt64
	case uint8:
		return KindUint8
	case uint16:
		return KindUint16
	case uint32:
		return KindUint32
	case uint64:
		return KindUint64
	case float32:
		return KindFloat32
	case float64:
		return KindFloat64
	default:
		return KindInvalid
	}
}
