package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nerrad567/emotionalsongs-core/internal/decode"
)

// Querier executes SQL. *sql.DB, *sql.Tx and *database.DB satisfy it.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// collect runs stmt and builds one value per row. The cursor is closed before
// collect returns, so callers may issue dependent queries straight after.
// A cancelled context stops iteration and discards what was built.
func collect[T any](ctx context.Context, q Querier, stmt string, args []any, build func(decode.Cursor) (T, error)) ([]T, error) {
	rows, err := q.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("querying: %w", err)
	}
	cur, err := decode.NewRows(rows)
	if err != nil {
		return nil, err
	}
	defer cur.Close() //nolint:errcheck // closed explicitly below on success

	var out []T
	for cur.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err := build(cur)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	if err := cur.Close(); err != nil {
		return nil, fmt.Errorf("closing rows: %w", err)
	}
	return out, nil
}

// first is collect for queries expecting at most one row. notFound is
// returned when there is none.
func first[T any](ctx context.Context, q Querier, stmt string, args []any, notFound error, build func(decode.Cursor) (T, error)) (T, error) {
	var zero T
	items, err := collect(ctx, q, stmt, args, build)
	if err != nil {
		return zero, err
	}
	if len(items) == 0 {
		return zero, notFound
	}
	return items[0], nil
}
