package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/emotionalsongs-core/internal/catalog"
)

// MeasurementCatalogQueries holds one point per catalog database round trip.
const MeasurementCatalogQueries = "catalog_queries"

var _ catalog.QueryRecorder = (*Client)(nil)

// RecordQuery implements catalog.QueryRecorder.
//
// Tags: kind (read/write), table, status (ok/error).
// Fields: duration_ms (float), count (always 1, for sum() queries).
func (c *Client) RecordQuery(kind, table string, elapsed time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	if table == "" {
		table = "unknown"
	}

	c.WritePoint(MeasurementCatalogQueries,
		map[string]string{
			"kind":   kind,
			"table":  table,
			"status": status,
		},
		map[string]any{
			"duration_ms": float64(elapsed.Microseconds()) / 1000,
			"count":       1,
		},
	)
}

// WritePoint queues a point stamped with the current time.
//
// The write API batches points and flushes them in the background, so this
// never blocks on the network. Failures surface later through the
// SetOnError callback and Stats().Failures.
//
// Parameters:
//   - measurement: InfluxDB measurement name (e.g. MeasurementCatalogQueries)
//   - tags: indexed string dimensions
//   - fields: values; numeric fields must keep one type per measurement
//
// Points written after Close are counted as dropped.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]any) {
	if !c.IsConnected() {
		c.dropped.Add(1)
		return
	}
	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, time.Now()))
	c.points.Add(1)
}
