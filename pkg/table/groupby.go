package table

import (
	"go.uber.org/zap"

	"github.com/ajitpratap0/tabular/pkg/column"
	"github.com/ajitpratap0/tabular/pkg/taberrors"
)

// GroupedTable is the partition of a table's rows by one column's values:
// an ordered list of distinct keys (first-occurrence order) and, per key, the
// original row indices holding it in original row order. It is transient,
// recomputed from scratch by every GroupBy call, and never mutates the source.
type GroupedTable struct {
	src      *Table
	keyIndex int
	keys     column.AnyColumn
	rowSets  [][]int64
}

// GroupBy partitions the table's rows by the values of the column at
// keyIndex, scanning it once. Null rows group under the key type's zero
// value; see Column.GroupRowsByKey.
func (t *Table) GroupBy(keyIndex int) (*GroupedTable, error) {
	key, err := t.Column(keyIndex)
	if err != nil {
		return nil, err
	}
	keys, rowSets := key.PartitionRows()
	t.log.Debug("built group partition",
		zap.String("key_column", key.Name()),
		zap.Int("groups", len(rowSets)),
		zap.Int64("rows", t.NumRows()))
	return &GroupedTable{src: t, keyIndex: keyIndex, keys: keys, rowSets: rowSets}, nil
}

// NumGroups returns the number of distinct keys.
func (g *GroupedTable) NumGroups() int {
	return len(g.rowSets)
}

// Keys returns an independent copy of the materialized key column, one value
// per group in group order.
func (g *GroupedTable) Keys() column.AnyColumn {
	return g.keys.CloneAny()
}

// RowSets returns the per-group row indices in group order. The slices alias
// the partition; callers must not mutate them.
func (g *GroupedTable) RowSets() [][]int64 {
	return g.rowSets
}

// resultColumns tracks lazily allocated output columns: a column is created
// when the first group first touches it and looked up by name for every
// subsequent group, so source column names must be unique for assembly to be
// unambiguous.
type resultColumns struct {
	cols *column.OrderedMap[string, column.AnyColumn]
}

func newResultColumns() *resultColumns {
	return &resultColumns{cols: column.NewOrderedMap[string, column.AnyColumn]()}
}

func (r *resultColumns) lookup(name string, create func() column.AnyColumn) column.AnyColumn {
	if c, ok := r.cols.Get(name); ok {
		return c
	}
	c := create()
	r.cols.Set(name, c)
	return c
}

func (r *resultColumns) assemble(keys column.AnyColumn) (*Table, error) {
	out := []column.AnyColumn{keys}
	return New(append(out, r.cols.Values()...)...)
}

// Count produces one row per group; each non-key column's result is the
// count of non-null rows in the group. Nullness of the grouping column itself
// is ignored.
func (g *GroupedTable) Count() (*Table, error) {
	results := newResultColumns()
	for _, rows := range g.rowSets {
		for ci, col := range g.src.columns {
			if ci == g.keyIndex {
				continue
			}
			dst := results.lookup(col.Name(), func() column.AnyColumn {
				return column.New[int64](col.Name())
			})
			cnt, err := col.CountValid(rows)
			if err != nil {
				return nil, err
			}
			dst.(*column.Column[int64]).Append(&cnt)
		}
	}
	return results.assemble(g.Keys())
}

// First produces one row per group; each non-key column's result is the value
// at the group's first row index, taken verbatim including null. "First"
// means first row, not first non-null value.
func (g *GroupedTable) First() (*Table, error) {
	results := newResultColumns()
	for _, rows := range g.rowSets {
		for ci, col := range g.src.columns {
			if ci == g.keyIndex {
				continue
			}
			dst := results.lookup(col.Name(), func() column.AnyColumn {
				return col.CloneEmpty(col.Name())
			})
			if err := dst.AppendFromRow(col, rows[0]); err != nil {
				return nil, err
			}
		}
	}
	return results.assemble(g.Keys())
}

// Head keeps the first min(n, groupSize) rows of each group in original
// encounter order; the output is group-major, then original row order, with
// the key column mirrored from the source as the first output column.
func (g *GroupedTable) Head(n int64) (*Table, error) {
	if n < 0 {
		return nil, taberrors.Newf(taberrors.ErrorTypeArgument, "head count %d is negative", n)
	}
	kept := make([]int64, 0)
	for _, rows := range g.rowSets {
		take := n
		if int64(len(rows)) < take {
			take = int64(len(rows))
		}
		kept = append(kept, rows[:take]...)
	}
	return g.gatherRows(kept)
}

// Tail keeps the last min(n, groupSize) rows of each group, in original
// encounter order (not reversed); output assembly matches Head.
func (g *GroupedTable) Tail(n int64) (*Table, error) {
	if n < 0 {
		return nil, taberrors.Newf(taberrors.ErrorTypeArgument, "tail count %d is negative", n)
	}
	kept := make([]int64, 0)
	for _, rows := range g.rowSets {
		take := n
		if int64(len(rows)) < take {
			take = int64(len(rows))
		}
		kept = append(kept, rows[int64(len(rows))-take:]...)
	}
	return g.gatherRows(kept)
}

// gatherRows materializes the kept rows for every column via the positional
// gather clone, key column first.
func (g *GroupedTable) gatherRows(kept []int64) (*Table, error) {
	indices := column.FromSlice("", kept)
	key := g.src.columns[g.keyIndex]
	out := make([]column.AnyColumn, 0, len(g.src.columns))
	keyCol, err := key.CloneIndexedAny(indices, false, 0)
	if err != nil {
		return nil, err
	}
	out = append(out, keyCol)
	for ci, col := range g.src.columns {
		if ci == g.keyIndex {
			continue
		}
		gathered, err := col.CloneIndexedAny(indices, false, 0)
		if err != nil {
			return nil, err
		}
		out = append(out, gathered)
	}
	return New(out...)
}

// Min produces one row per group with each non-key column's minimum non-null
// value; groups with no non-null rows yield null.
func (g *GroupedTable) Min() (*Table, error) {
	return g.reduce(column.ReduceMin)
}

// Max produces one row per group with each non-key column's maximum non-null
// value.
func (g *GroupedTable) Max() (*Table, error) {
	return g.reduce(column.ReduceMax)
}

// Sum produces one row per group with each non-key column's sum over its
// non-null values.
func (g *GroupedTable) Sum() (*Table, error) {
	return g.reduce(column.ReduceSum)
}

// Product produces one row per group with each non-key column's product over
// its non-null values.
func (g *GroupedTable) Product() (*Table, error) {
	return g.reduce(column.ReduceProduct)
}

// reduce walks every (group, non-key column) pair in group-major order and
// delegates to the column's own null-aware numeric reduction over exactly the
// group's row-index set.
func (g *GroupedTable) reduce(op column.ReduceOp) (*Table, error) {
	results := newResultColumns()
	for _, rows := range g.rowSets {
		for ci, col := range g.src.columns {
			if ci == g.keyIndex {
				continue
			}
			dst := results.lookup(col.Name(), func() column.AnyColumn {
				return col.CloneEmpty(col.Name())
			})
			if err := col.ReduceAppend(op, rows, dst); err != nil {
				return nil, err
			}
		}
	}
	return results.assemble(g.Keys())
}
