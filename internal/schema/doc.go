// Package schema is the static registry of logical tables and their typed columns.
//
// The registry is the single source of truth shared by SQL generation
// (internal/query) and result decoding (internal/decode). It is populated once
// at package initialisation from a fixed table literal and is never read from
// the database; the live store is checked against it by internal/integrity.
//
// Column order within a table is significant: it is the order in which the
// table's columns appear as one contiguous block in a multi-table SELECT list.
//
// # Thread Safety
//
// The registry is immutable after initialisation and safe for concurrent use.
// Functions returning column slices return copies.
package schema
