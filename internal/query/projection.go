package query

import (
	"fmt"
	"strings"

	"github.com/nerrad567/emotionalsongs-core/internal/decode"
	"github.com/nerrad567/emotionalsongs-core/internal/schema"
)

// Source is one table in a projection, optionally aliased.
type Source struct {
	Table schema.Table
	Alias string
}

// From returns a source for t aliased as alias. An empty alias uses the table name.
func From(t schema.Table, alias string) Source {
	return Source{Table: t, Alias: alias}
}

func (s Source) qualifier() string {
	if s.Alias != "" {
		return s.Alias
	}
	return string(s.Table)
}

// Col returns the qualified reference to c, e.g. "r.street".
func (s Source) Col(c schema.Column) string {
	return s.qualifier() + "." + c.Name()
}

// Projection is the ordered set of tables a query returns.
type Projection struct {
	sources []Source
}

// Project builds a projection. Each table may appear once; repeating a table
// or naming an unregistered one panics.
func Project(sources ...Source) Projection {
	seen := make(map[schema.Table]bool, len(sources))
	for _, s := range sources {
		if _, ok := schema.Lookup(s.Table); !ok {
			panic(fmt.Sprintf("query: table %q is not registered", string(s.Table)))
		}
		if seen[s.Table] {
			panic(fmt.Sprintf("query: table %s projected twice", s.Table))
		}
		seen[s.Table] = true
	}
	return Projection{sources: append([]Source(nil), sources...)}
}

// Tables implements decode.Plan.
func (p Projection) Tables() []schema.Table {
	out := make([]schema.Table, len(p.sources))
	for i, s := range p.sources {
		out[i] = s.Table
	}
	return out
}

// SelectList renders every column of every source, one contiguous block per
// source, each labelled with its bare column name.
func (p Projection) SelectList() string {
	var b strings.Builder
	for i, s := range p.sources {
		for j, c := range schema.Columns(s.Table) {
			if i > 0 || j > 0 {
				b.WriteString(", ")
			}
			b.WriteString(s.Col(c))
			b.WriteString(" AS ")
			b.WriteString(c.Name())
		}
	}
	return b.String()
}

// Select returns "SELECT <list> <tail>".
func (p Projection) Select(tail string) string {
	return "SELECT " + p.SelectList() + " " + strings.TrimSpace(tail)
}

var _ decode.Plan = Projection{}
