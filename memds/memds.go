// Package memds provides a small in-memory columnar Dataset used by tests
// and the CLI. It implements the cdmsilver.Dataset boundary with the same
// observable contracts a production engine would offer; casting is lenient
// in the Spark tradition, so an unparseable cast yields null rather than an
// error.
package memds

import (
	"fmt"
	"sort"

	cdmsilver "github.com/cdmsilver/cdmsilver"
)

// Table is an immutable in-memory dataset. Every operation returns a new
// Table sharing no row storage with its input.
type Table struct {
	fields []cdmsilver.Field
	rows   [][]any
}

// New builds a table from a schema and row-major data. Null is nil.
func New(schema cdmsilver.Schema, rows [][]any) *Table {
	t := &Table{fields: append([]cdmsilver.Field(nil), schema...)}
	t.rows = make([][]any, len(rows))
	for i, row := range rows {
		t.rows[i] = append([]any(nil), row...)
	}
	return t
}

// FromRecords builds an untyped (all-string-kind) table from column names
// and row-major data, the shape bronze ingestion produces.
func FromRecords(cols []string, rows [][]any) *Table {
	schema := make(cdmsilver.Schema, len(cols))
	for i, name := range cols {
		schema[i] = cdmsilver.Field{Name: name, Type: cdmsilver.String, Nullable: true}
	}
	return New(schema, rows)
}

// Columns returns the column names in dataset order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.fields))
	for i, f := range t.fields {
		out[i] = f.Name
	}
	return out
}

// Schema returns the table's schema.
func (t *Table) Schema() cdmsilver.Schema {
	return append(cdmsilver.Schema(nil), t.fields...)
}

// Count returns the number of rows.
func (t *Table) Count() (int64, error) { return int64(len(t.rows)), nil }

// Rows materializes the table row-major.
func (t *Table) Rows() ([][]any, error) {
	out := make([][]any, len(t.rows))
	for i, row := range t.rows {
		out[i] = append([]any(nil), row...)
	}
	return out, nil
}

// Select projects the table onto the given expressions, in order.
func (t *Table) Select(cols ...cdmsilver.NamedExpr) (cdmsilver.Dataset, error) {
	ev, err := newEvaluator(t.fields)
	if err != nil {
		return nil, err
	}
	fields := make([]cdmsilver.Field, len(cols))
	for i, c := range cols {
		fields[i] = cdmsilver.Field{Name: c.Name, Type: ev.inferType(c.Expr), Nullable: true}
	}
	rows := make([][]any, len(t.rows))
	for ri, row := range t.rows {
		out := make([]any, len(cols))
		for ci, c := range cols {
			v, err := ev.eval(c.Expr, row)
			if err != nil {
				return nil, err
			}
			out[ci] = v
		}
		rows[ri] = out
	}
	return &Table{fields: fields, rows: rows}, nil
}

// Filter keeps rows for which pred evaluates to true.
func (t *Table) Filter(pred cdmsilver.Expr) (cdmsilver.Dataset, error) {
	ev, err := newEvaluator(t.fields)
	if err != nil {
		return nil, err
	}
	var rows [][]any
	for _, row := range t.rows {
		v, err := ev.eval(pred, row)
		if err != nil {
			return nil, err
		}
		if v == true {
			rows = append(rows, append([]any(nil), row...))
		}
	}
	return &Table{fields: t.Schema(), rows: rows}, nil
}

// WithColumn appends a computed column, or replaces it when the name already
// exists.
func (t *Table) WithColumn(name string, e cdmsilver.Expr) (cdmsilver.Dataset, error) {
	ev, err := newEvaluator(t.fields)
	if err != nil {
		return nil, err
	}
	at := -1
	for i, f := range t.fields {
		if f.Name == name {
			at = i
			break
		}
	}
	fields := t.Schema()
	field := cdmsilver.Field{Name: name, Type: ev.inferType(e), Nullable: true}
	if at < 0 {
		fields = append(fields, field)
	} else {
		fields[at] = field
	}
	rows := make([][]any, len(t.rows))
	for ri, row := range t.rows {
		v, err := ev.eval(e, row)
		if err != nil {
			return nil, err
		}
		out := append([]any(nil), row...)
		if at < 0 {
			out = append(out, v)
		} else {
			out[at] = v
		}
		rows[ri] = out
	}
	return &Table{fields: fields, rows: rows}, nil
}

// Distinct removes duplicate rows, keeping first occurrences in order.
func (t *Table) Distinct() (cdmsilver.Dataset, error) {
	seen := make(map[string]bool, len(t.rows))
	var rows [][]any
	for _, row := range t.rows {
		k := rowKey(row)
		if seen[k] {
			continue
		}
		seen[k] = true
		rows = append(rows, append([]any(nil), row...))
	}
	return &Table{fields: t.Schema(), rows: rows}, nil
}

// Subtract removes rows also present in other. Both datasets must share a
// column layout.
func (t *Table) Subtract(other cdmsilver.Dataset) (cdmsilver.Dataset, error) {
	if len(other.Columns()) != len(t.fields) {
		return nil, fmt.Errorf("memds: subtract: column count mismatch (%d vs %d)",
			len(t.fields), len(other.Columns()))
	}
	otherRows, err := other.Rows()
	if err != nil {
		return nil, err
	}
	drop := make(map[string]bool, len(otherRows))
	for _, row := range otherRows {
		drop[rowKey(row)] = true
	}
	var rows [][]any
	for _, row := range t.rows {
		if drop[rowKey(row)] {
			continue
		}
		rows = append(rows, append([]any(nil), row...))
	}
	return &Table{fields: t.Schema(), rows: rows}, nil
}

// RankRows appends rankCol holding each row's 1-based rank within its
// partitionCol partition, ordered by orderCol descending with nulls last.
// Rows with equal order values rank in input order, so re-running a
// pipeline ranks ties identically.
func (t *Table) RankRows(partitionCol, orderCol, rankCol string) (cdmsilver.Dataset, error) {
	pi, err := t.colIndex(partitionCol)
	if err != nil {
		return nil, err
	}
	oi, err := t.colIndex(orderCol)
	if err != nil {
		return nil, err
	}

	groups := make(map[string][]int)
	var order []string
	for i, row := range t.rows {
		k := formatValue(row[pi])
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], i)
	}

	ranks := make([]int64, len(t.rows))
	for _, k := range order {
		idx := groups[k]
		sort.SliceStable(idx, func(a, b int) bool {
			va, vb := t.rows[idx[a]][oi], t.rows[idx[b]][oi]
			switch {
			case va == nil && vb == nil:
				return false
			case vb == nil:
				return true // nulls sort last, i.e. oldest
			case va == nil:
				return false
			}
			if c, ok := compareValues(va, vb); ok {
				return c > 0 // descending
			}
			return false
		})
		for rank, ri := range idx {
			ranks[ri] = int64(rank + 1)
		}
	}

	fields := append(t.Schema(), cdmsilver.Field{Name: rankCol, Type: cdmsilver.Integer, Nullable: false})
	rows := make([][]any, len(t.rows))
	for i, row := range t.rows {
		rows[i] = append(append([]any(nil), row...), ranks[i])
	}
	return &Table{fields: fields, rows: rows}, nil
}

func (t *Table) colIndex(name string) (int, error) {
	for i, f := range t.fields {
		if f.Name == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("memds: unknown column %q (have %v)", name, t.Columns())
}

func rowKey(row []any) string {
	k := ""
	for _, v := range row {
		if v == nil {
			k += "\x00\x01"
			continue
		}
		k += formatValue(v) + "\x00"
	}
	return k
}
