package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/tabular/pkg/column"
	"github.com/ajitpratap0/tabular/pkg/taberrors"
	"github.com/ajitpratap0/tabular/pkg/testutil"
)

// keyed builds the canonical fixture: keys [1,2,1,3,2] standing in for
// [A,B,A,C,B], values [1,2,3,4,5].
func keyed(t *testing.T) *Table {
	t.Helper()
	k := column.FromSlice("k", []int64{1, 2, 1, 3, 2})
	v := column.FromSlice("v", []int64{1, 2, 3, 4, 5})
	tbl, err := New(k, v)
	require.NoError(t, err)
	return tbl
}

func int64Values(t *testing.T, tbl *Table, colIdx int) []*int64 {
	t.Helper()
	col, err := tbl.Column(colIdx)
	require.NoError(t, err)
	vals, err := col.(*column.Column[int64]).Values(0, col.Len())
	require.NoError(t, err)
	return vals
}

func deref(t *testing.T, vals []*int64) []int64 {
	t.Helper()
	out := make([]int64, len(vals))
	for i, v := range vals {
		require.NotNil(t, v, "row %d is unexpectedly null", i)
		out[i] = *v
	}
	return out
}

func TestGroupByPartitionOrder(t *testing.T) {
	tbl := keyed(t)
	g, err := tbl.GroupBy(0)
	require.NoError(t, err)

	assert.Equal(t, 3, g.NumGroups())
	assert.Equal(t, [][]int64{{0, 2}, {1, 4}, {3}}, g.RowSets())

	keys := g.Keys()
	vals, err := keys.(*column.Column[int64]).Values(0, keys.Len())
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, deref(t, vals))
}

func TestGroupByBadIndex(t *testing.T) {
	tbl := keyed(t)
	_, err := tbl.GroupBy(5)
	assert.True(t, taberrors.IsType(err, taberrors.ErrorTypeRange))
}

func TestCount(t *testing.T) {
	tbl := keyed(t)
	g, err := tbl.GroupBy(0)
	require.NoError(t, err)

	out, err := g.Count()
	require.NoError(t, err)

	require.Equal(t, 2, out.NumColumns())
	assert.Equal(t, []string{"k", "v"}, out.ColumnNames())
	assert.Equal(t, []int64{1, 2, 3}, deref(t, int64Values(t, out, 0)))
	assert.Equal(t, []int64{2, 2, 1}, deref(t, int64Values(t, out, 1)))
}

func TestCountIgnoresNullRows(t *testing.T) {
	one, three := int64(1), int64(3)
	k := column.FromSlice("k", []int64{1, 1, 2})
	v := column.FromValues("v", []*int64{&one, nil, &three})
	tbl, err := New(k, v)
	require.NoError(t, err)

	g, err := tbl.GroupBy(0)
	require.NoError(t, err)
	out, err := g.Count()
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 1}, deref(t, int64Values(t, out, 1)))
}

func TestSum(t *testing.T) {
	tbl := keyed(t)
	g, err := tbl.GroupBy(0)
	require.NoError(t, err)

	out, err := g.Sum()
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2, 3}, deref(t, int64Values(t, out, 0)))
	assert.Equal(t, []int64{4, 7, 4}, deref(t, int64Values(t, out, 1)))
}

func TestMinMaxProduct(t *testing.T) {
	tbl := keyed(t)
	g, err := tbl.GroupBy(0)
	require.NoError(t, err)

	out, err := g.Min()
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 4}, deref(t, int64Values(t, out, 1)))

	out, err = g.Max()
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 5, 4}, deref(t, int64Values(t, out, 1)))

	out, err = g.Product()
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 10, 4}, deref(t, int64Values(t, out, 1)))
}

func TestFirstTakesFirstRowVerbatim(t *testing.T) {
	tbl := keyed(t)
	g, err := tbl.GroupBy(0)
	require.NoError(t, err)

	out, err := g.First()
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2, 4}, deref(t, int64Values(t, out, 1)))
}

func TestFirstIncludesNull(t *testing.T) {
	// "First" means first row, not first non-null value.
	two := int64(2)
	k := column.FromSlice("k", []int64{1, 1})
	v := column.FromValues("v", []*int64{nil, &two})
	tbl, err := New(k, v)
	require.NoError(t, err)

	g, err := tbl.GroupBy(0)
	require.NoError(t, err)
	out, err := g.First()
	require.NoError(t, err)

	vals := int64Values(t, out, 1)
	require.Len(t, vals, 1)
	assert.Nil(t, vals[0])
}

func TestHeadAndTail(t *testing.T) {
	tbl := keyed(t)
	g, err := tbl.GroupBy(0)
	require.NoError(t, err)

	head, err := g.Head(1)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, deref(t, int64Values(t, head, 0)))
	assert.Equal(t, []int64{1, 2, 4}, deref(t, int64Values(t, head, 1)))

	tail, err := g.Tail(1)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, deref(t, int64Values(t, tail, 0)))
	assert.Equal(t, []int64{3, 5, 4}, deref(t, int64Values(t, tail, 1)))
}

func TestHeadClampsToGroupSize(t *testing.T) {
	tbl := keyed(t)
	g, err := tbl.GroupBy(0)
	require.NoError(t, err)

	// Larger than any group: keeps every row, group-major.
	out, err := g.Head(10)
	require.NoError(t, err)
	assert.Equal(t, int64(5), out.NumRows())
	assert.Equal(t, []int64{1, 1, 2, 2, 3}, deref(t, int64Values(t, out, 0)))
	assert.Equal(t, []int64{1, 3, 2, 5, 4}, deref(t, int64Values(t, out, 1)))

	_, err = g.Head(-1)
	assert.True(t, taberrors.IsType(err, taberrors.ErrorTypeArgument))
}

func TestTailPreservesOriginalOrder(t *testing.T) {
	k := column.FromSlice("k", []int64{1, 1, 1})
	v := column.FromSlice("v", []int64{10, 20, 30})
	tbl, err := New(k, v)
	require.NoError(t, err)

	g, err := tbl.GroupBy(0)
	require.NoError(t, err)
	out, err := g.Tail(2)
	require.NoError(t, err)

	// Last two rows, not reversed.
	assert.Equal(t, []int64{20, 30}, deref(t, int64Values(t, out, 1)))
}

func TestAggregateColumnsShareLength(t *testing.T) {
	k := column.FromSlice("k", []int64{1, 2, 1})
	a := column.FromSlice("a", []int64{1, 2, 3})
	b := column.FromSlice("b", []float64{1.5, 2.5, 3.5})
	tbl, err := New(k, a, b)
	require.NoError(t, err)

	g, err := tbl.GroupBy(0)
	require.NoError(t, err)

	for name, agg := range map[string]func() (*Table, error){
		"count": g.Count,
		"first": g.First,
		"sum":   g.Sum,
	} {
		out, err := agg()
		require.NoError(t, err, name)
		require.Equal(t, 3, out.NumColumns(), name)
		for i := 0; i < out.NumColumns(); i++ {
			col, err := out.Column(i)
			require.NoError(t, err)
			assert.Equal(t, int64(2), col.Len(), name)
		}
	}
}

func TestAggregateDoesNotMutateSource(t *testing.T) {
	tbl := keyed(t)
	g, err := tbl.GroupBy(0)
	require.NoError(t, err)

	_, err = g.Sum()
	require.NoError(t, err)
	_, err = g.Head(2)
	require.NoError(t, err)

	assert.Equal(t, int64(5), tbl.NumRows())
	assert.Equal(t, []int64{1, 2, 1, 3, 2}, deref(t, int64Values(t, tbl, 0)))
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, deref(t, int64Values(t, tbl, 1)))
}

func TestAggregatesIndependentOfChunkCapacity(t *testing.T) {
	testutil.TestLogger(t)

	keys := []int64{1, 2, 1, 3, 2, 3, 1}
	vals := []int64{1, 2, 3, 4, 5, 6, 7}

	run := func(opts ...column.Option) map[string][]int64 {
		k := column.FromSlice("k", keys, opts...)
		v := column.FromSlice("v", vals, opts...)
		tbl, err := New(k, v)
		require.NoError(t, err)
		g, err := tbl.GroupBy(0)
		require.NoError(t, err)

		out := map[string][]int64{}
		for name, agg := range map[string]func() (*Table, error){
			"count": g.Count,
			"sum":   g.Sum,
			"min":   g.Min,
			"max":   g.Max,
			"first": g.First,
			"head2": func() (*Table, error) { return g.Head(2) },
			"tail2": func() (*Table, error) { return g.Tail(2) },
		} {
			res, err := agg()
			require.NoError(t, err, name)
			out[name] = deref(t, int64Values(t, res, 1))
		}
		return out
	}

	want := run()
	for _, chunkCap := range []int64{1, 2, 3} {
		assert.Equal(t, want, run(testutil.SmallChunks(chunkCap)...),
			"chunk capacity %d diverged", chunkCap)
	}
}

func TestGroupByNullKeysCollapse(t *testing.T) {
	ten, twenty, thirty := int64(10), int64(20), int64(30)
	k := column.FromValues("k", []*int64{nil, &ten, nil})
	v := column.FromValues("v", []*int64{&ten, &twenty, &thirty})
	tbl, err := New(k, v)
	require.NoError(t, err)

	g, err := tbl.GroupBy(0)
	require.NoError(t, err)
	out, err := g.Sum()
	require.NoError(t, err)

	// Null keys group under the zero value.
	assert.Equal(t, []int64{0, 10}, deref(t, int64Values(t, out, 0)))
	assert.Equal(t, []int64{40, 20}, deref(t, int64Values(t, out, 1)))
}
