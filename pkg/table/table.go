// Package table provides the in-memory table: an ordered set of equally sized
// columns, plus the group-by engine that partitions rows by key and folds the
// partitions into aggregate result tables.
package table

import (
	"go.uber.org/zap"

	"github.com/ajitpratap0/tabular/pkg/column"
	"github.com/ajitpratap0/tabular/pkg/logger"
	"github.com/ajitpratap0/tabular/pkg/taberrors"
)

// Table is an ordered collection of named columns of identical length.
//
// Column names should be unique: name lookup resolves to the first match, and
// aggregate result assembly relies on by-name lookup being unambiguous.
// Duplicate names are an accepted limitation, not handled.
//
// A Table is exclusively owned and not safe for concurrent mutation. Schema
// changes (add/remove/replace of columns) bump a monotonically increasing
// version that downstream schema snapshots use for cache invalidation.
type Table struct {
	columns []column.AnyColumn
	version uint64
	log     *zap.Logger
}

// New creates a table from the given columns, which must all have the same
// length.
func New(cols ...column.AnyColumn) (*Table, error) {
	t := &Table{
		columns: make([]column.AnyColumn, 0, len(cols)),
		log:     logger.Get().Named("table"),
	}
	for _, c := range cols {
		if err := t.checkLength(c); err != nil {
			return nil, err
		}
		t.columns = append(t.columns, c)
	}
	return t, nil
}

func (t *Table) checkLength(c column.AnyColumn) error {
	if len(t.columns) > 0 && c.Len() != t.columns[0].Len() {
		return taberrors.New(taberrors.ErrorTypeArgument, "column length differs from table row count").
			WithDetail("column", c.Name()).
			WithDetail("column_length", c.Len()).
			WithDetail("row_count", t.columns[0].Len())
	}
	return nil
}

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int {
	return len(t.columns)
}

// NumRows returns the table row count.
func (t *Table) NumRows() int64 {
	if len(t.columns) == 0 {
		return 0
	}
	return t.columns[0].Len()
}

// SchemaVersion returns the current schema version marker.
func (t *Table) SchemaVersion() uint64 {
	return t.version
}

// Column returns the column at index i.
func (t *Table) Column(i int) (column.AnyColumn, error) {
	if i < 0 || i >= len(t.columns) {
		return nil, taberrors.New(taberrors.ErrorTypeRange, "column index out of range").
			WithDetail("index", i).
			WithDetail("columns", len(t.columns))
	}
	return t.columns[i], nil
}

// ColumnByName returns the first column with the given name.
func (t *Table) ColumnByName(name string) (column.AnyColumn, bool) {
	for _, c := range t.columns {
		if c.Name() == name {
			return c, true
		}
	}
	return nil, false
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name()
	}
	return names
}

// AddColumn appends a column and bumps the schema version.
func (t *Table) AddColumn(c column.AnyColumn) error {
	if err := t.checkLength(c); err != nil {
		return err
	}
	t.columns = append(t.columns, c)
	t.version++
	return nil
}

// RemoveColumn removes the column at index i and bumps the schema version.
func (t *Table) RemoveColumn(i int) error {
	if i < 0 || i >= len(t.columns) {
		return taberrors.New(taberrors.ErrorTypeRange, "column index out of range").
			WithDetail("index", i).
			WithDetail("columns", len(t.columns))
	}
	t.columns = append(t.columns[:i], t.columns[i+1:]...)
	t.version++
	return nil
}

// ReplaceColumn swaps the column at index i and bumps the schema version. The
// new column must match the table row count.
func (t *Table) ReplaceColumn(i int, c column.AnyColumn) error {
	if i < 0 || i >= len(t.columns) {
		return taberrors.New(taberrors.ErrorTypeRange, "column index out of range").
			WithDetail("index", i).
			WithDetail("columns", len(t.columns))
	}
	// Replacing the only column may change the row count.
	if len(t.columns) > 1 && c.Len() != t.NumRows() {
		return taberrors.New(taberrors.ErrorTypeArgument, "column length differs from table row count").
			WithDetail("column", c.Name()).
			WithDetail("column_length", c.Len()).
			WithDetail("row_count", t.NumRows())
	}
	t.columns[i] = c
	t.version++
	return nil
}

// Clone returns a deep copy of the table; no chunk storage is shared with the
// source.
func (t *Table) Clone() *Table {
	cols := make([]column.AnyColumn, len(t.columns))
	for i, c := range t.columns {
		cols[i] = c.CloneAny()
	}
	return &Table{columns: cols, log: t.log}
}
