package influxdb

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/emotionalsongs-core/internal/infrastructure/config"
)

const (
	connectTimeout = 10 * time.Second
	pingTimeout    = 5 * time.Second

	defaultBatchSize     = 100
	defaultFlushInterval = 10 * time.Second
)

// pointWriter is the part of api.WriteAPI the client uses.
type pointWriter interface {
	WritePoint(point *write.Point)
	Flush()
}

// Stats counts points handed to the write API and asynchronous write failures.
type Stats struct {
	Connected bool   `json:"connected"`
	Points    uint64 `json:"points"`
	Dropped   uint64 `json:"dropped"`
	Failures  uint64 `json:"write_failures"`
}

// Client records catalog metrics through a non-blocking, batched write API.
// It is safe for concurrent use.
type Client struct {
	client   influxdb2.Client
	writeAPI pointWriter

	closed atomic.Bool

	points   atomic.Uint64
	dropped  atomic.Uint64
	failures atomic.Uint64

	errMu   sync.RWMutex
	onError func(err error)
}

// writeOptions resolves batching settings, falling back to defaults for
// non-positive values.
func writeOptions(cfg config.InfluxDBConfig) *influxdb2.Options {
	batch := uint(defaultBatchSize)
	if cfg.BatchSize > 0 {
		batch = uint(cfg.BatchSize)
	}
	flush := defaultFlushInterval
	if cfg.FlushInterval > 0 {
		flush = time.Duration(cfg.FlushInterval) * time.Second
	}
	return influxdb2.DefaultOptions().
		SetBatchSize(batch).
		SetFlushInterval(uint(flush.Milliseconds()))
}

// Connect pings the server and opens the write API for cfg's org and bucket.
//
// It performs the following steps:
//  1. Creates the SDK client with batch_size and flush_interval (see writeOptions)
//  2. Pings within connectTimeout and requires a healthy answer
//  3. Opens the non-blocking write API
//  4. Starts a goroutine that counts asynchronous write errors and forwards
//     them to the SetOnError callback
//
// Parameters:
//   - cfg: the influxdb section of the configuration
//
// Returns:
//   - *Client: ready for RecordQuery / WritePoint; the caller must Close it
//   - error: ErrDisabled when influxdb.enabled is false, or ErrConnectionFailed
//     (wrapped, with the URL) when the ping fails
//
// Example:
//
//	influx, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer influx.Close()
//	querier := catalog.Instrument(db, influx)
func Connect(cfg config.InfluxDBConfig) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	// Create client
	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token, writeOptions(cfg))

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := ping(ctx, client); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrConnectionFailed, cfg.URL, err)
	}

	api := client.WriteAPI(cfg.Org, cfg.Bucket)
	c := &Client{client: client, writeAPI: api}
	go c.drainErrors(api.Errors())
	return c, nil
}

func ping(ctx context.Context, client influxdb2.Client) error {
	healthy, err := client.Ping(ctx)
	if err != nil {
		return err
	}
	if !healthy {
		return ErrUnhealthy
	}
	return nil
}

// drainErrors counts asynchronous write failures and forwards them to the
// SetOnError callback. It returns when the write API closes errs.
func (c *Client) drainErrors(errs <-chan error) {
	for err := range errs {
		c.failures.Add(1)
		c.errMu.RLock()
		callback := c.onError
		c.errMu.RUnlock()
		if callback != nil {
			callback(err)
		}
	}
}

// Close flushes buffered points and releases the client.
//
// Points written after Close are counted in Stats().Dropped rather than
// sent. Calling Close more than once is safe.
func (c *Client) Close() error {
	if c.client == nil || c.closed.Swap(true) {
		return nil
	}
	c.writeAPI.Flush()
	c.client.Close()
	return nil
}

// HealthCheck pings the server.
func (c *Client) HealthCheck(ctx context.Context) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := ping(ctx, c.client); err != nil {
		return fmt.Errorf("influxdb health check: %w", err)
	}
	return nil
}

// IsConnected reports whether the client is open.
func (c *Client) IsConnected() bool {
	return c != nil && c.writeAPI != nil && !c.closed.Load()
}

// SetOnError sets a callback for asynchronous write failures.
func (c *Client) SetOnError(callback func(err error)) {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	c.onError = callback
}

// Flush forces buffered points out. It is a no-op after Close.
func (c *Client) Flush() {
	if c.IsConnected() {
		c.writeAPI.Flush()
	}
}

// Stats returns the current counters.
func (c *Client) Stats() Stats {
	return Stats{
		Connected: c.IsConnected(),
		Points:    c.points.Load(),
		Dropped:   c.dropped.Load(),
		Failures:  c.failures.Load(),
	}
}
