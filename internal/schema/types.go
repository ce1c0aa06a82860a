package schema

import "strings"

// Table identifies a logical table. The identifier is also the physical table name.
type Table string

// Registered tables.
const (
	Account      Table = "account"
	Residence    Table = "residence"
	Artist       Table = "artist"
	Album        Table = "album"
	AlbumImage   Table = "album_image"
	Song         Table = "song"
	Playlist     Table = "playlist"
	PlaylistSong Table = "playlist_song"
)

// String returns the table name.
func (t Table) String() string {
	return string(t)
}

// Type is the semantic type of a column.
type Type int

// Semantic column types.
const (
	String Type = iota + 1
	Integer
	Long
	Boolean
	Binary
)

// String returns the lowercase type name.
func (t Type) String() string {
	switch t {
	case String:
		return "string"
	case Integer:
		return "integer"
	case Long:
		return "long"
	case Boolean:
		return "boolean"
	case Binary:
		return "binary"
	default:
		return "unknown"
	}
}

// Column describes one attribute of a registered table.
//
// Column is a comparable value and is used directly as a map key. Two tables
// that both have an "id" column yield two distinct descriptors.
type Column struct {
	name  string
	table Table
	typ   Type
}

func newColumn(table Table, name string, typ Type) Column {
	return Column{name: name, table: table, typ: typ}
}

// Name returns the column name as registered.
func (c Column) Name() string { return c.name }

// Table returns the owning table.
func (c Column) Table() Table { return c.table }

// Type returns the semantic type.
func (c Column) Type() Type { return c.typ }

// Matches reports whether label names this column. Comparison is case-insensitive.
func (c Column) Matches(label string) bool {
	return strings.EqualFold(c.name, label)
}

// String returns the qualified name, e.g. "account.id".
func (c Column) String() string {
	return string(c.table) + "." + c.name
}
