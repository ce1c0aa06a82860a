package decode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/emotionalsongs-core/internal/schema"
)

func songAttrs(t *testing.T, explicit any) Attributes {
	t.Helper()
	a := NewAttributes(schema.Song)
	require.NoError(t, a.Set(schema.SongID, []byte("S1")))
	require.NoError(t, a.Set(schema.SongName, "Blue"))
	require.NoError(t, a.Set(schema.SongDurationMS, int64(215000)))
	require.NoError(t, a.Set(schema.SongPopularity, float64(71)))
	require.NoError(t, a.Set(schema.SongExplicit, explicit))
	return a
}

func TestReader_Coercions(t *testing.T) {
	for _, explicit := range []any{true, int64(1), "true", []byte("1")} {
		r := songAttrs(t, explicit).Reader()
		assert.Equal(t, "S1", r.String(schema.SongID))
		assert.Equal(t, "Blue", r.String(schema.SongName))
		assert.Equal(t, int64(215000), r.Int64(schema.SongDurationMS))
		assert.Equal(t, 71, r.Int(schema.SongPopularity))
		assert.True(t, r.Bool(schema.SongExplicit), "explicit=%v", explicit)
		require.NoError(t, r.Err())
	}
}

func TestReader_NullReadsAsZero(t *testing.T) {
	r := songAttrs(t, nil).Reader()
	assert.False(t, r.Bool(schema.SongExplicit))
	require.NoError(t, r.Err())
}

func TestReader_ErrorIsSticky(t *testing.T) {
	r := songAttrs(t, "maybe").Reader()

	assert.False(t, r.Bool(schema.SongExplicit))
	require.ErrorIs(t, r.Err(), ErrTypeMismatch)

	// Later reads return zero values and keep the first error.
	assert.Equal(t, "", r.String(schema.SongName))
	require.ErrorIs(t, r.Err(), ErrTypeMismatch)
}

func TestReader_MissingAndForeign(t *testing.T) {
	r := songAttrs(t, true).Reader()
	_ = r.String(schema.SongSpotifyURL)
	require.ErrorIs(t, r.Err(), ErrMissingColumn)

	r = songAttrs(t, true).Reader()
	_ = r.String(schema.AlbumID)
	require.ErrorIs(t, r.Err(), ErrForeignColumn)
}

func TestReader_IntOverflow(t *testing.T) {
	a := NewAttributes(schema.Artist)
	require.NoError(t, a.Set(schema.ArtistPopularity, int64(1)<<40))

	r := a.Reader()
	assert.Equal(t, 0, r.Int(schema.ArtistPopularity))
	require.ErrorIs(t, r.Err(), ErrTypeMismatch)
}

func TestAttributes_SetForeignColumn(t *testing.T) {
	a := NewAttributes(schema.Album)
	err := a.Set(schema.SongID, "S1")
	require.ErrorIs(t, err, ErrForeignColumn)
	assert.Equal(t, 0, a.Len())
}

func TestAttributes_ColumnsInRegistryOrder(t *testing.T) {
	a := NewAttributes(schema.Residence)
	require.NoError(t, a.Set(schema.ResidenceProvinceName, "VA"))
	require.NoError(t, a.Set(schema.ResidenceID, "R1"))

	assert.Equal(t, []schema.Column{schema.ResidenceID, schema.ResidenceProvinceName}, a.Columns())
	assert.Nil(t, Attributes{}.Columns())
}

func TestReader_BytesCopies(t *testing.T) {
	raw := []byte("abc")
	a := NewAttributes(schema.Song)
	require.NoError(t, a.Set(schema.SongName, raw))

	got := a.Reader().Bytes(schema.SongName)
	got[0] = 'x'
	assert.Equal(t, "abc", string(raw))
}
