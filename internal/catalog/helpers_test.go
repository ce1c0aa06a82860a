package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nerrad567/emotionalsongs-core/internal/auth"
	"github.com/nerrad567/emotionalsongs-core/internal/decode"
	"github.com/nerrad567/emotionalsongs-core/internal/infrastructure/database"
	"github.com/nerrad567/emotionalsongs-core/internal/query"
	_ "github.com/nerrad567/emotionalsongs-core/migrations"
)

// fastHasher keeps registration tests quick.
var fastHasher = auth.PasswordHasher{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

// openTestDB opens a migrated SQLite database in a temp directory.
func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "catalog.db"),
		BusyTimeout: 5,
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	_, err = db.Migrate(context.Background())
	require.NoError(t, err)
	return db
}

// countingQuerier counts round trips and lets a test run code before an exec.
type countingQuerier struct {
	Querier
	queries atomic.Int64
	execs   atomic.Int64

	mu         sync.Mutex
	beforeExec func(stmt string)
}

func (c *countingQuerier) QueryContext(ctx context.Context, stmt string, args ...any) (*sql.Rows, error) {
	c.queries.Add(1)
	return c.Querier.QueryContext(ctx, stmt, args...)
}

func (c *countingQuerier) ExecContext(ctx context.Context, stmt string, args ...any) (sql.Result, error) {
	c.execs.Add(1)
	c.mu.Lock()
	hook := c.beforeExec
	c.mu.Unlock()
	if hook != nil {
		hook(stmt)
	}
	return c.Querier.ExecContext(ctx, stmt, args...)
}

func (c *countingQuerier) reset() {
	c.queries.Store(0)
	c.execs.Store(0)
}

func (c *countingQuerier) onExec(hook func(stmt string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.beforeExec = hook
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) kinds() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Kind
	}
	return out
}

// sequenceIDs hands out "ID1", "ID2", ... in order.
type sequenceIDs struct {
	mu   sync.Mutex
	next int
}

func (s *sequenceIDs) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return fmt.Sprintf("ID%03d", s.next)
}

// countRows returns the number of rows in table.
func countRows(t *testing.T, q Querier, table string) int {
	t.Helper()
	rows, err := q.QueryContext(context.Background(), "SELECT COUNT(*) FROM "+table)
	require.NoError(t, err)
	defer rows.Close() //nolint:errcheck // Test cleanup

	var n int
	require.True(t, rows.Next())
	require.NoError(t, rows.Scan(&n))
	return n
}

// fixedClock returns a clock frozen at t.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// steppingClock advances one millisecond every `every` calls. It is safe
// for concurrent use, so the number of distinct readings is fixed by the
// call count alone.
type steppingClock struct {
	mu    sync.Mutex
	start time.Time
	every int
	calls int
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	step := c.calls / c.every
	c.calls++
	return c.start.Add(time.Duration(step) * time.Millisecond)
}

// insert writes attribute rows directly.
func insert(t *testing.T, q Querier, rows ...decode.Attributes) {
	t.Helper()
	for _, attrs := range rows {
		stmt, args := query.Insert(query.SQLite, attrs)
		_, err := q.ExecContext(context.Background(), stmt, args...)
		require.NoError(t, err, stmt)
	}
}

// seedCatalog loads one artist, three albums (two with images) and four songs.
func seedCatalog(t *testing.T, q Querier) {
	t.Helper()
	insert(t, q,
		Artist{ID: "AR1", Name: "Daft Punk", Followers: 9_000_000_000, Popularity: 85}.Attributes(),

		Album{ID: "AL1", Name: "Discovery", Type: "album", TotalTracks: 14, ReleaseDate: "2001-03-12", ArtistID: "AR1"}.Attributes(),
		Album{ID: "AL2", Name: "Random Access Memories", Type: "album", TotalTracks: 13, ReleaseDate: "2013-05-17", ArtistID: "AR1"}.Attributes(),
		Album{ID: "AL3", Name: "Homework", Type: "album", TotalTracks: 16, ReleaseDate: "1997-01-20", ArtistID: "AR1"}.Attributes(),

		Image{AlbumID: "AL1", Size: "small", URL: "https://img/al1-64", Height: 64, Width: 64}.Attributes(),
		Image{AlbumID: "AL1", Size: "medium", URL: "https://img/al1-300", Height: 300, Width: 300}.Attributes(),
		Image{AlbumID: "AL1", Size: "large", URL: "https://img/al1-640", Height: 640, Width: 640}.Attributes(),
		Image{AlbumID: "AL2", Size: "large", URL: "https://img/al2-640", Height: 640, Width: 640}.Attributes(),

		Song{ID: "S1", Name: "One More Time", AlbumID: "AL1", ArtistID: "AR1", DurationMS: 320357, Popularity: 80}.Attributes(),
		Song{ID: "S2", Name: "Digital Love", AlbumID: "AL1", ArtistID: "AR1", DurationMS: 301373, Popularity: 70, Explicit: true}.Attributes(),
		Song{ID: "S3", Name: "Get Lucky", AlbumID: "AL2", ArtistID: "AR1", DurationMS: 369626, Popularity: 90}.Attributes(),
		Song{ID: "S4", Name: "Around the World", AlbumID: "AL3", ArtistID: "AR1", DurationMS: 429533, Popularity: 60}.Attributes(),
	)
}

// testStore returns a Store over a seeded database and the counter in front of it.
func testStore(t *testing.T, opts ...Option) (*Store, *countingQuerier) {
	t.Helper()
	db := openTestDB(t)
	seedCatalog(t, db)

	cq := &countingQuerier{Querier: db}
	opts = append([]Option{WithPasswordHasher(fastHasher), WithIDs(&sequenceIDs{})}, opts...)
	return NewStore(cq, query.SQLite, opts...), cq
}

func sampleResidence() Residence {
	return Residence{Street: "Via Roma", CivicNumber: 12, CouncilName: "Varese", ProvinceName: "VA"}
}

func sampleAccount(nickname string) Registration {
	return Registration{
		Name:     "Mario",
		Surname:  "Rossi",
		Nickname: nickname,
		Email:    nickname + "@example.com",
		Password: "s3cret-password",
	}
}
