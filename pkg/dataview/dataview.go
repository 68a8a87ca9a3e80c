// Package dataview provides the read-only tabular-consumption view of a
// table: a schema snapshot over the fixed set of supported scalar kinds and a
// positional row cursor with per-column value readers.
//
// A snapshot is bound to the table's schema version at creation time. The
// consumer owns invalidation: when the underlying table's column set changes
// (insert/remove/replace), Valid reports false and the consumer must
// re-snapshot. Source types without a native kind are exposed as their
// nearest supported kind (a UTF-16 code unit as uint16, a high-precision
// decimal as float64); the mapping happens when the column is constructed,
// so every column reaching a snapshot already carries a supported kind.
package dataview

import (
	"github.com/goccy/go-json"

	"github.com/ajitpratap0/tabular/pkg/column"
	"github.com/ajitpratap0/tabular/pkg/taberrors"
	"github.com/ajitpratap0/tabular/pkg/table"
)

// ColumnSchema describes one column of a snapshot.
type ColumnSchema struct {
	Name string            `json:"name"`
	Kind column.ScalarKind `json:"-"`
	// KindName carries the kind in serialized form.
	KindName string `json:"kind"`
}

// Snapshot is a read-only schema view of a table, pinned to the table's
// schema version at creation.
type Snapshot struct {
	src     *table.Table
	version uint64
	cols    []ColumnSchema
}

// NewSnapshot captures the table's current schema.
func NewSnapshot(t *table.Table) (*Snapshot, error) {
	cols := make([]ColumnSchema, 0, t.NumColumns())
	for i := 0; i < t.NumColumns(); i++ {
		c, err := t.Column(i)
		if err != nil {
			return nil, err
		}
		if c.Kind() == column.KindInvalid {
			return nil, taberrors.Newf(taberrors.ErrorTypeNotSupported,
				"column %q has no supported scalar kind", c.Name())
		}
		cols = append(cols, ColumnSchema{
			Name:     c.Name(),
			Kind:     c.Kind(),
			KindName: c.Kind().String(),
		})
	}
	return &Snapshot{src: t, version: t.SchemaVersion(), cols: cols}, nil
}

// Columns returns the captured column schemas in table order.
func (s *Snapshot) Columns() []ColumnSchema {
	out := make([]ColumnSchema, len(s.cols))
	copy(out, s.cols)
	return out
}

// Version returns the schema version the snapshot was captured at.
func (s *Snapshot) Version() uint64 {
	return s.version
}

// Valid reports whether the source table's column set is unchanged since the
// snapshot was taken.
func (s *Snapshot) Valid() bool {
	return s.src.SchemaVersion() == s.version
}

// MarshalJSON serializes the snapshot schema.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Version uint64         `json:"version"`
		Columns []ColumnSchema `json:"columns"`
	}{Version: s.version, Columns: s.cols})
}

// Cursor opens a row cursor over the snapshot. It fails if the snapshot is
// stale; re-snapshot after schema changes.
func (s *Snapshot) Cursor() (*Cursor, error) {
	if !s.Valid() {
		return nil, taberrors.New(taberrors.ErrorTypeArgument, "snapshot is stale").
			WithDetail("snapshot_version", s.version).
			WithDetail("table_version", s.src.SchemaVersion())
	}
	return &Cursor{snap: s, row: -1}, nil
}

// Cursor is a forward-only position over the snapshot's rows. It never
// mutates the source table.
type Cursor struct {
	snap *Snapshot
	row  int64
}

// Next advances to the next row, returning false once the rows are exhausted.
func (c *Cursor) Next() bool {
	if c.row+1 >= c.snap.src.NumRows() {
		return false
	}
	c.row++
	return true
}

// Row returns the current row index; -1 before the first Next call.
func (c *Cursor) Row() int64 {
	return c.row
}

// ValueReader returns a reader callback for one column, bound to the cursor
// position: each call reads the value under the cursor at call time. The
// second result is false for null rows.
func (c *Cursor) ValueReader(colIdx int) (func() (interface{}, bool, error), error) {
	col, err := c.snap.src.Column(colIdx)
	if err != nil {
		return nil, err
	}
	return func() (interface{}, bool, error) {
		return col.ValueAny(c.row)
	}, nil
}

// Value reads one column's value at the cursor position directly.
func (c *Cursor) Value(colIdx int) (interface{}, bool, error) {
	col, err := c.snap.src.Column(colIdx)
	if err != nil {
		return nil, false, err
	}
	return col.ValueAny(c.row)
}
