package catalog

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/emotionalsongs-core/internal/query"
)

type observation struct {
	kind, table string
	failed      bool
}

type fakeRecorder struct {
	mu  sync.Mutex
	obs []observation
}

func (f *fakeRecorder) RecordQuery(kind, table string, _ time.Duration, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.obs = append(f.obs, observation{kind: kind, table: table, failed: err != nil})
}

func TestInstrument_RecordsEveryRoundTrip(t *testing.T) {
	db := openTestDB(t)
	seedCatalog(t, db)

	rec := &fakeRecorder{}
	store := NewStore(Instrument(db, rec), query.SQLite, WithIDs(&sequenceIDs{}))

	_, err := store.Song(context.Background(), "S1")
	require.NoError(t, err)

	_, _, err = store.Resolver().Resolve(context.Background(), sampleResidence())
	require.NoError(t, err)

	assert.Equal(t, []observation{
		{kind: QueryKindRead, table: "song"},
		{kind: QueryKindRead, table: "album_image"},
		{kind: QueryKindRead, table: "residence"},
		{kind: QueryKindWrite, table: "residence"},
	}, rec.obs)
}

func TestInstrument_RecordsFailures(t *testing.T) {
	db := openTestDB(t)
	rec := &fakeRecorder{}
	q := Instrument(db, rec)

	_, err := q.ExecContext(context.Background(), "INSERT INTO nowhere (x) VALUES (1)")
	require.Error(t, err)

	require.Len(t, rec.obs, 1)
	assert.Equal(t, observation{kind: QueryKindWrite, table: "nowhere", failed: true}, rec.obs[0])
}

func TestStatementTable(t *testing.T) {
	assert.Equal(t, "song", statementTable("SELECT s.id AS id FROM song s WHERE s.id = ?"))
	assert.Equal(t, "playlist_song", statementTable("INSERT INTO playlist_song (playlist_id) VALUES (?)"))
	assert.Equal(t, "", statementTable("SELECT 1"))
}
