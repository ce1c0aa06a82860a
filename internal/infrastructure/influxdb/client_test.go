package influxdb

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/emotionalsongs-core/internal/infrastructure/config"
)

// testConfig returns a configuration for a local development InfluxDB.
func testConfig() config.InfluxDBConfig {
	return config.InfluxDBConfig{
		Enabled:       true,
		URL:           "http://127.0.0.1:8086",
		Token:         "emotionalsongs-dev-token",
		Org:           "emotionalsongs",
		Bucket:        "metrics",
		BatchSize:     100,
		FlushInterval: 1,
	}
}

// fakeWriter captures points as line protocol.
type fakeWriter struct {
	mu      sync.Mutex
	lines   []string
	flushes int
}

func (f *fakeWriter) WritePoint(p *write.Point) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lines = append(f.lines, write.PointToLineProtocol(p, time.Nanosecond))
}

func (f *fakeWriter) Flush() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushes++
}

func connectedClient(w *fakeWriter) *Client {
	return &Client{writeAPI: w}
}

func TestConnect_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false

	_, err := Connect(cfg)
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestConnect_Unreachable(t *testing.T) {
	cfg := testConfig()
	cfg.URL = "http://127.0.0.1:1" // nothing listens here

	_, err := Connect(cfg)
	if !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestRecordQuery(t *testing.T) {
	w := &fakeWriter{}
	c := connectedClient(w)

	c.RecordQuery("read", "song", 1500*time.Microsecond, nil)
	c.RecordQuery("write", "", time.Millisecond, errors.New("constraint failed"))

	if len(w.lines) != 2 {
		t.Fatalf("wrote %d points, want 2", len(w.lines))
	}
	if got := c.Stats().Points; got != 2 {
		t.Errorf("Stats().Points = %d, want 2", got)
	}

	ok := w.lines[0]
	for _, want := range []string{
		MeasurementCatalogQueries + ",",
		"kind=read", "status=ok", "table=song",
		"count=1i", "duration_ms=1.5",
	} {
		if !strings.Contains(ok, want) {
			t.Errorf("point %q missing %q", ok, want)
		}
	}

	failed := w.lines[1]
	for _, want := range []string{"kind=write", "status=error", "table=unknown"} {
		if !strings.Contains(failed, want) {
			t.Errorf("point %q missing %q", failed, want)
		}
	}
}

func TestWritePoint_DroppedAfterClose(t *testing.T) {
	w := &fakeWriter{}
	c := connectedClient(w)
	c.closed.Store(true)

	c.RecordQuery("read", "song", time.Millisecond, nil)
	c.Flush()

	if len(w.lines) != 0 || w.flushes != 0 {
		t.Errorf("closed client wrote %d points and flushed %d times", len(w.lines), w.flushes)
	}
	if got := c.Stats(); got.Dropped != 1 || got.Points != 0 || got.Connected {
		t.Errorf("Stats() = %+v, want 1 dropped, 0 points, disconnected", got)
	}
	if err := c.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
}

func TestWriteOptions(t *testing.T) {
	opts := writeOptions(config.InfluxDBConfig{BatchSize: 50, FlushInterval: 2})
	if opts.BatchSize() != 50 || opts.FlushInterval() != 2000 {
		t.Errorf("batch=%d flush=%d, want 50/2000", opts.BatchSize(), opts.FlushInterval())
	}

	opts = writeOptions(config.InfluxDBConfig{})
	if opts.BatchSize() != defaultBatchSize || opts.FlushInterval() != uint(defaultFlushInterval.Milliseconds()) {
		t.Errorf("defaults: batch=%d flush=%d", opts.BatchSize(), opts.FlushInterval())
	}
}

func TestFlush(t *testing.T) {
	w := &fakeWriter{}
	c := connectedClient(w)

	c.Flush()
	if w.flushes != 1 {
		t.Errorf("flushes = %d, want 1", w.flushes)
	}
}

func TestClose_Nil(t *testing.T) {
	c := &Client{}
	if err := c.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	var nilClient *Client
	if nilClient.IsConnected() {
		t.Error("nil client reports connected")
	}
}

func TestDrainErrors(t *testing.T) {
	c := connectedClient(&fakeWriter{})

	var got []error
	var mu sync.Mutex
	c.SetOnError(func(err error) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, err)
	})

	ch := make(chan error, 2)
	ch <- errors.New("batch rejected")
	ch <- errors.New("timeout")
	close(ch)
	c.drainErrors(ch)

	if len(got) != 2 {
		t.Errorf("callback saw %d errors, want 2", len(got))
	}
	if f := c.Stats().Failures; f != 2 {
		t.Errorf("Stats().Failures = %d, want 2", f)
	}
}
