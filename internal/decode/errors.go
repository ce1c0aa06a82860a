package decode

import "errors"

var (
	// ErrMissingColumn is returned when a registered column is absent from a row.
	// It signals drift between the schema registry and the live store.
	ErrMissingColumn = errors.New("decode: registered column missing from row")

	// ErrRowExhausted is returned when positional decoding reads past the last column.
	ErrRowExhausted = errors.New("decode: row has fewer columns than the requested tables")

	// ErrNoRow is returned when a value is read before the cursor is positioned on a row.
	ErrNoRow = errors.New("decode: cursor is not positioned on a row")

	// ErrNoSuchLabel is returned by cursors when no column carries the requested label.
	ErrNoSuchLabel = errors.New("decode: no column with that label")

	// ErrTypeMismatch is returned when a raw value cannot be converted to the column's type.
	ErrTypeMismatch = errors.New("decode: value does not match column type")

	// ErrForeignColumn is returned when a column of another table is read from or
	// written to an attribute map.
	ErrForeignColumn = errors.New("decode: column belongs to another table")
)
