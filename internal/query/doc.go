// Package query generates SQL text from the schema registry.
//
// A Projection is an ordered list of table sources. Its SELECT list places
// every registered column of each source as one contiguous block, in source
// order, and the same Projection is handed to decode.Projected to read the
// rows back. Keeping one value for both sides is what makes the positional
// multi-table decode safe.
//
// Dialect covers the differences between the supported stores: placeholder
// syntax, IN-list expansion and column type names.
package query
