package query

import (
	"strings"

	"github.com/nerrad567/emotionalsongs-core/internal/decode"
	"github.com/nerrad567/emotionalsongs-core/internal/schema"
)

// Insert renders an INSERT of the present attributes, in registry order.
func Insert(d Dialect, attrs decode.Attributes) (string, []any) {
	cols := attrs.Columns()
	names := make([]string, len(cols))
	marks := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		names[i] = c.Name()
		marks[i] = "?"
		args[i], _ = attrs.Get(c)
	}

	q := "INSERT INTO " + string(attrs.Table()) +
		" (" + strings.Join(names, ", ") + ") VALUES (" + strings.Join(marks, ", ") + ")"
	return d.Rebind(q), args
}

// AllEqual renders "q.c1 = ? AND q.c2 = ?" for cols qualified by s.
// Rebind the enclosing statement once it is complete.
func AllEqual(s Source, cols ...schema.Column) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = s.Col(c) + " = ?"
	}
	return strings.Join(parts, " AND ")
}
