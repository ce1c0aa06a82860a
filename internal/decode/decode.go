package decode

import (
	"errors"
	"fmt"

	"github.com/nerrad567/emotionalsongs-core/internal/schema"
)

// Table decodes every registered column of t from the current row by label.
//
// The row must expose each column of t under its registered name. A missing
// column is reported as ErrMissingColumn.
func Table(cur Cursor, t schema.Table) (Attributes, error) {
	cols := schema.Columns(t)
	attrs := NewAttributes(t)
	for _, c := range cols {
		v, err := cur.ValueByLabel(c.Name())
		if err != nil {
			if errors.Is(err, ErrNoSuchLabel) {
				return Attributes{}, fmt.Errorf("%w: %s", ErrMissingColumn, c)
			}
			return Attributes{}, fmt.Errorf("reading %s: %w", c, err)
		}
		attrs.values[c] = v
	}
	return attrs, nil
}

// Result holds the attribute maps produced by a multi-table decode.
type Result struct {
	attrs    map[schema.Table]Attributes
	order    []schema.Table
	consumed int
}

// Table returns the attributes decoded for t. Asking for a table that was not
// part of the decode returns empty attributes and false.
func (r *Result) Table(t schema.Table) (Attributes, bool) {
	a, ok := r.attrs[t]
	return a, ok
}

// Tables returns the decoded tables in decode order.
func (r *Result) Tables() []schema.Table {
	return append([]schema.Table(nil), r.order...)
}

// Consumed returns the number of row columns assigned to a table.
func (r *Result) Consumed() int {
	return r.consumed
}

// Tables decodes a joined row positionally.
//
// A running position starts at column 1. For each table in order, and once per
// registered column of that table, the label at the current position is
// matched against that table's columns. A match stores the value and advances
// the position; a label that matches none of the table's columns does not
// advance, so the next table starts reading at the same position.
//
// The row's SELECT list must place each table's columns as one contiguous
// block, blocks in the order of tables. Reading past the last column returns
// ErrRowExhausted.
func Tables(cur Cursor, tables ...schema.Table) (*Result, error) {
	res := &Result{
		attrs: make(map[schema.Table]Attributes, len(tables)),
		order: make([]schema.Table, 0, len(tables)),
	}
	width := cur.ColumnCount()
	pos := 1

	for _, t := range tables {
		cols := schema.Columns(t)
		attrs := NewAttributes(t)

		for range cols {
			if pos > width {
				return nil, fmt.Errorf("%w: %s needs column %d, row has %d", ErrRowExhausted, t, pos, width)
			}
			label, err := cur.Label(pos)
			if err != nil {
				return nil, fmt.Errorf("reading label %d: %w", pos, err)
			}
			for _, c := range cols {
				if !c.Matches(label) {
					continue
				}
				v, err := cur.Value(pos)
				if err != nil {
					return nil, fmt.Errorf("reading %s at %d: %w", c, pos, err)
				}
				attrs.values[c] = v
				pos++
				break
			}
		}

		res.attrs[t] = attrs
		res.order = append(res.order, t)
	}

	res.consumed = pos - 1
	return res, nil
}

// Plan is an ordered table list shared by SQL generation and decoding.
// query.Projection implements it.
type Plan interface {
	Tables() []schema.Table
}

// Projected decodes a row produced from p's SELECT list.
//
// Every table in p must come back complete; a short block is reported as
// ErrMissingColumn rather than silently shifting later tables.
func Projected(cur Cursor, p Plan) (*Result, error) {
	tables := p.Tables()
	res, err := Tables(cur, tables...)
	if err != nil {
		return nil, err
	}
	for _, t := range tables {
		a := res.attrs[t]
		if a.Len() == schema.Count(t) {
			continue
		}
		for _, c := range schema.Columns(t) {
			if !a.Has(c) {
				return nil, fmt.Errorf("%w: %s", ErrMissingColumn, c)
			}
		}
	}
	return res, nil
}
