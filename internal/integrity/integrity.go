package integrity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/nerrad567/emotionalsongs-core/internal/query"
	"github.com/nerrad567/emotionalsongs-core/internal/schema"
)

// ErrMissingTable is returned by Repair when a registered table does not exist.
var ErrMissingTable = errors.New("integrity: registered table is missing")

// Querier is the subset of *sql.DB used by Check and Repair.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// TableReport is the result of checking one table.
type TableReport struct {
	Table   schema.Table    `json:"table"`
	Exists  bool            `json:"exists"`
	Missing []schema.Column `json:"-"`
}

// MissingNames returns the names of the missing columns.
func (t TableReport) MissingNames() []string {
	names := make([]string, len(t.Missing))
	for i, c := range t.Missing {
		names[i] = c.Name()
	}
	return names
}

// OK reports whether the table exists with every registered column.
func (t TableReport) OK() bool {
	return t.Exists && len(t.Missing) == 0
}

// Report is the result of Check, one entry per registered table in registry order.
type Report struct {
	Tables []TableReport `json:"tables"`
}

// OK reports whether every table passed.
func (r Report) OK() bool {
	for _, t := range r.Tables {
		if !t.OK() {
			return false
		}
	}
	return true
}

// MissingColumns returns the number of missing columns across existing tables.
func (r Report) MissingColumns() int {
	n := 0
	for _, t := range r.Tables {
		if t.Exists {
			n += len(t.Missing)
		}
	}
	return n
}

// Check reads the live columns of every registered table and reports the
// registered columns it lacks. Name comparison is case-insensitive.
func Check(ctx context.Context, q Querier, d query.Dialect) (Report, error) {
	var report Report
	for _, table := range schema.Tables() {
		live, err := liveColumns(ctx, q, d, table)
		if err != nil {
			return Report{}, err
		}

		tr := TableReport{Table: table, Exists: len(live) > 0}
		for _, c := range schema.Columns(table) {
			if _, ok := live[strings.ToLower(c.Name())]; !ok {
				tr.Missing = append(tr.Missing, c)
			}
		}
		report.Tables = append(report.Tables, tr)
	}
	return report, nil
}

// Repair adds the missing columns of every existing table in report and
// returns how many it added. Missing tables are left alone and reported
// through ErrMissingTable after the columns of the other tables are added.
func Repair(ctx context.Context, q Querier, d query.Dialect, report Report) (int, error) {
	added := 0
	var absent []string
	for _, t := range report.Tables {
		if !t.Exists {
			absent = append(absent, string(t.Table))
			continue
		}
		for _, c := range t.Missing {
			stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", t.Table, c.Name(), d.ColumnType(c.Type()))
			if _, err := q.ExecContext(ctx, stmt); err != nil {
				return added, fmt.Errorf("adding column %s: %w", c, err)
			}
			added++
		}
	}
	if len(absent) > 0 {
		return added, fmt.Errorf("%w: %s", ErrMissingTable, strings.Join(absent, ", "))
	}
	return added, nil
}

// liveColumns returns the lowercased column names of table. A missing table
// yields an empty set.
func liveColumns(ctx context.Context, q Querier, d query.Dialect, table schema.Table) (map[string]struct{}, error) {
	var stmt string
	switch d {
	case query.Postgres:
		stmt = "SELECT column_name FROM information_schema.columns " +
			"WHERE table_schema = current_schema() AND table_name = $1"
	default:
		stmt = "SELECT name FROM pragma_table_info(?)"
	}

	rows, err := q.QueryContext(ctx, stmt, string(table))
	if err != nil {
		return nil, fmt.Errorf("listing columns of %s: %w", table, err)
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	live := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning column of %s: %w", table, err)
		}
		live[strings.ToLower(name)] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing columns of %s: %w", table, err)
	}
	return live, nil
}
