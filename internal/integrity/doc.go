// Package integrity compares the live database schema with the schema
// registry.
//
// Check lists, per registered table, the registered columns that the live
// store does not have. Decoding a row from such a table fails with
// decode.ErrMissingColumn, so Check is the batch form of that failure.
// Repair adds missing columns as nullable columns of the dialect's type;
// readers treat NULL as the zero value. Missing tables are reported but not
// created: run the migrations for that.
package integrity
