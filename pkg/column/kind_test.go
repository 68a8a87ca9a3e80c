package column

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ajitpratap0/tabular/pkg/taberrors"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindBool, KindOf[bool]())
	assert.Equal(t, KindInt8, KindOf[int8]())
	assert.Equal(t, KindUint16, KindOf[uint16]())
	assert.Equal(t, KindInt64, KindOf[int64]())
	assert.Equal(t, KindFloat64, KindOf[float64]())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "int64", KindInt64.String())
	assert.Equal(t, "float32", KindFloat32.String())
	assert.Equal(t, "invalid", KindInvalid.String())
}

func TestKindByteWidth(t *testing.T) {
	tests := []struct {
		kind  ScalarKind
		width int
	}{
		{kind: KindInt8, width: 1},
		{kind: KindUint16, width: 2},
		{kind: KindFloat32, width: 4},
		{kind: KindInt64, width: 8},
	}
	for _, tt := range tests {
		w, err := tt.kind.ByteWidth()
		assert.NoError(t, err)
		assert.Equal(t, tt.width, w)
	}

	// Bools are bit-packed, so a per-element byte width does not apply.
	_, err := KindBool.ByteWidth()
	assert.True(t, taberrors.IsType(err, taberrors.ErrorTypeNotSupported))
	_, err = KindInvalid.ByteWidth()
	assert.Error(t, err)
}

func TestOrderedMapPreservesInsertionOrder(t *testing.T) {
	om := NewOrderedMap[string, int]()
	om.Set("c", 3)
	om.Set("a", 1)
	om.Set("b", 2)
	om.Set("a", 10)

	assert.Equal(t, 3, om.Len())
	assert.Equal(t, []string{"c", "a", "b"}, om.Keys())
	assert.Equal(t, []int{3, 10, 2}, om.Values())

	v, ok := om.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 10, v)
	_, ok = om.Get("z")
	assert.False(t, ok)

	var seen []string
	om.Range(func(k string, v int) bool {
		seen = append(seen, k)
		return k != "a"
	})
	assert.Equal(t, []string{"c", "a"}, seen)
}
