// Package decode turns cursor rows into per-table attribute maps.
//
// Two modes are provided:
//
//   - Table decodes a row that holds exactly one table's columns, looking each
//     registered column up by label (case-insensitive).
//   - Tables decodes a joined row positionally. Each requested table's columns
//     must appear as one contiguous block, blocks in the same order as the
//     tables passed in. Within a block the columns may appear in any order.
//
// The positional contract cannot be verified at runtime: a SELECT list whose
// blocks are out of order or non-contiguous is decoded into the wrong tables
// without an error. Build joined SELECT lists with query.Projection and decode
// them with Projected so both sides share one descriptor.
//
// Decoding never touches the database and never retains attribute maps; they
// are handed straight to entity constructors.
package decode
