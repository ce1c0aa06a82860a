package catalog

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// Query kinds reported to a QueryRecorder.
const (
	QueryKindRead  = "read"
	QueryKindWrite = "write"
)

// QueryRecorder receives one observation per database round trip.
type QueryRecorder interface {
	RecordQuery(kind, table string, elapsed time.Duration, err error)
}

// InstrumentedQuerier reports every round trip of the wrapped Querier.
type InstrumentedQuerier struct {
	next     Querier
	recorder QueryRecorder
}

// Instrument wraps q so that rec observes each query.
func Instrument(q Querier, rec QueryRecorder) *InstrumentedQuerier {
	return &InstrumentedQuerier{next: q, recorder: rec}
}

// QueryContext implements Querier.
func (i *InstrumentedQuerier) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := i.next.QueryContext(ctx, query, args...)
	i.recorder.RecordQuery(QueryKindRead, statementTable(query), time.Since(start), err)
	return rows, err
}

// ExecContext implements Querier.
func (i *InstrumentedQuerier) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := i.next.ExecContext(ctx, query, args...)
	i.recorder.RecordQuery(QueryKindWrite, statementTable(query), time.Since(start), err)
	return res, err
}

// statementTable returns the first table named after FROM or INTO, or "".
func statementTable(stmt string) string {
	fields := strings.Fields(stmt)
	for i, f := range fields {
		if (strings.EqualFold(f, "FROM") || strings.EqualFold(f, "INTO")) && i+1 < len(fields) {
			return strings.Trim(fields[i+1], "(\"`")
		}
	}
	return ""
}
