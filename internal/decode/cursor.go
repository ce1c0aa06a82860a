package decode

import (
	"database/sql"
	"fmt"
	"strings"
)

// Cursor is a positioned tabular result row.
//
// Positions are 1-based. Labels are the column labels reported by the driver
// and are compared case-insensitively by the decoder.
type Cursor interface {
	ColumnCount() int
	Label(pos int) (string, error)
	Value(pos int) (any, error)
	ValueByLabel(label string) (any, error)
}

// Rows adapts *sql.Rows to Cursor.
//
// Each call to Next scans the whole row into memory; the current row's values
// stay valid until the next call to Next. Close must be called when done.
type Rows struct {
	rows   *sql.Rows
	labels []string
	values []any
	err    error
}

// NewRows wraps rows. On error rows is closed.
func NewRows(rows *sql.Rows) (*Rows, error) {
	labels, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, fmt.Errorf("reading column labels: %w", err)
	}
	return &Rows{rows: rows, labels: labels}, nil
}

// Next advances to the next row and scans it.
func (r *Rows) Next() bool {
	r.values = nil
	if r.err != nil || !r.rows.Next() {
		return false
	}

	values := make([]any, len(r.labels))
	ptrs := make([]any, len(r.labels))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := r.rows.Scan(ptrs...); err != nil {
		r.err = fmt.Errorf("scanning row: %w", err)
		return false
	}
	r.values = values
	return true
}

// Err returns the first error met while iterating.
func (r *Rows) Err() error {
	if r.err != nil {
		return r.err
	}
	return r.rows.Err()
}

// Close releases the underlying result set.
func (r *Rows) Close() error {
	return r.rows.Close()
}

// ColumnCount implements Cursor.
func (r *Rows) ColumnCount() int {
	return len(r.labels)
}

// Label implements Cursor.
func (r *Rows) Label(pos int) (string, error) {
	if pos < 1 || pos > len(r.labels) {
		return "", fmt.Errorf("%w: position %d of %d", ErrRowExhausted, pos, len(r.labels))
	}
	return r.labels[pos-1], nil
}

// Value implements Cursor.
func (r *Rows) Value(pos int) (any, error) {
	if r.values == nil {
		return nil, ErrNoRow
	}
	if pos < 1 || pos > len(r.values) {
		return nil, fmt.Errorf("%w: position %d of %d", ErrRowExhausted, pos, len(r.values))
	}
	return r.values[pos-1], nil
}

// ValueByLabel implements Cursor. The first column whose label matches wins.
func (r *Rows) ValueByLabel(label string) (any, error) {
	if r.values == nil {
		return nil, ErrNoRow
	}
	for i, l := range r.labels {
		if strings.EqualFold(l, label) {
			return r.values[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNoSuchLabel, label)
}
