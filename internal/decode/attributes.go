package decode

import (
	"fmt"
	"math"
	"strconv"

	"github.com/nerrad567/emotionalsongs-core/internal/schema"
)

// Attributes maps the columns of one table to raw values for one row.
//
// The zero value is empty and read-only; use NewAttributes to build one for writing.
type Attributes struct {
	table  schema.Table
	values map[schema.Column]any
}

// NewAttributes returns an empty attribute map for t.
func NewAttributes(t schema.Table) Attributes {
	return Attributes{table: t, values: make(map[schema.Column]any, schema.Count(t))}
}

// Table returns the table the attributes belong to.
func (a Attributes) Table() schema.Table {
	return a.table
}

// Len returns the number of columns present.
func (a Attributes) Len() int {
	return len(a.values)
}

// Get returns the raw value stored for c.
func (a Attributes) Get(c schema.Column) (any, bool) {
	v, ok := a.values[c]
	return v, ok
}

// Has reports whether c is present.
func (a Attributes) Has(c schema.Column) bool {
	_, ok := a.values[c]
	return ok
}

// Set stores v under c. It returns ErrForeignColumn if c belongs to another table.
func (a Attributes) Set(c schema.Column, v any) error {
	if c.Table() != a.table {
		return fmt.Errorf("%w: %s in %s attributes", ErrForeignColumn, c, a.table)
	}
	a.values[c] = v
	return nil
}

// Columns returns the present columns in registry order.
func (a Attributes) Columns() []schema.Column {
	if a.table == "" {
		return nil
	}
	cols := schema.Columns(a.table)
	present := cols[:0]
	for _, c := range cols {
		if _, ok := a.values[c]; ok {
			present = append(present, c)
		}
	}
	return present
}

// Reader returns a typed reader over a.
func (a Attributes) Reader() *Reader {
	return &Reader{attrs: a}
}

// Reader converts raw attribute values to Go types.
//
// The first failure is sticky: later reads return zero values and Err reports
// the first error. Constructors read every field then check Err once.
type Reader struct {
	attrs Attributes
	err   error
}

// Err returns the first conversion or lookup error.
func (r *Reader) Err() error {
	return r.err
}

func (r *Reader) raw(c schema.Column) (any, bool) {
	if r.err != nil {
		return nil, false
	}
	if c.Table() != r.attrs.table {
		r.err = fmt.Errorf("%w: %s in %s attributes", ErrForeignColumn, c, r.attrs.table)
		return nil, false
	}
	v, ok := r.attrs.values[c]
	if !ok {
		r.err = fmt.Errorf("%w: %s", ErrMissingColumn, c)
		return nil, false
	}
	return v, true
}

func (r *Reader) fail(c schema.Column, v any) {
	r.err = fmt.Errorf("%w: %s is %s, got %T", ErrTypeMismatch, c, c.Type(), v)
}

// String reads a text column. NULL reads as "".
func (r *Reader) String(c schema.Column) string {
	v, ok := r.raw(c)
	if !ok || v == nil {
		return ""
	}
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	}
	r.fail(c, v)
	return ""
}

// Int64 reads an integer column. NULL reads as 0.
func (r *Reader) Int64(c schema.Column) int64 {
	v, ok := r.raw(c)
	if !ok || v == nil {
		return 0
	}
	switch x := v.(type) {
	case int64:
		return x
	case int32:
		return int64(x)
	case int:
		return int64(x)
	case float64:
		if x == math.Trunc(x) {
			return int64(x)
		}
	case []byte:
		if n, err := strconv.ParseInt(string(x), 10, 64); err == nil {
			return n
		}
	case string:
		if n, err := strconv.ParseInt(x, 10, 64); err == nil {
			return n
		}
	}
	r.fail(c, v)
	return 0
}

// Int reads an integer column into an int.
func (r *Reader) Int(c schema.Column) int {
	n := r.Int64(c)
	if n > math.MaxInt32 || n < math.MinInt32 {
		if r.err == nil {
			r.err = fmt.Errorf("%w: %s value %d overflows %s", ErrTypeMismatch, c, n, c.Type())
		}
		return 0
	}
	return int(n)
}

// Bool reads a boolean column. Integer 0/1 and textual booleans are accepted.
// NULL reads as false.
func (r *Reader) Bool(c schema.Column) bool {
	v, ok := r.raw(c)
	if !ok || v == nil {
		return false
	}
	switch x := v.(type) {
	case bool:
		return x
	case int64:
		return x != 0
	case int32:
		return x != 0
	case int:
		return x != 0
	case []byte:
		if b, err := strconv.ParseBool(string(x)); err == nil {
			return b
		}
	case string:
		if b, err := strconv.ParseBool(x); err == nil {
			return b
		}
	}
	r.fail(c, v)
	return false
}

// Bytes reads a binary column. The returned slice is a copy. NULL reads as nil.
func (r *Reader) Bytes(c schema.Column) []byte {
	v, ok := r.raw(c)
	if !ok || v == nil {
		return nil
	}
	switch x := v.(type) {
	case []byte:
		return append([]byte(nil), x...)
	case string:
		return []byte(x)
	}
	r.fail(c, v)
	return nil
}
