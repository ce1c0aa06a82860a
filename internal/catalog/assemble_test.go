package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/emotionalsongs-core/internal/decode"
	"github.com/nerrad567/emotionalsongs-core/internal/schema"
)

func TestNewAccount_NestsResidenceWithoutQueries(t *testing.T) {
	home := Residence{ID: "R1", Street: "Via Roma", CivicNumber: 12, CouncilName: "Varese", ProvinceName: "VA"}
	acc := Account{
		ID: "A1", Name: "Mario", Surname: "Rossi", Nickname: "mrossi",
		Email: "mario@example.com", PasswordHash: "$argon2id$x", ResidenceID: "R1",
	}

	got, err := NewAccount(acc.Attributes(), home.Attributes())
	require.NoError(t, err)

	require.NotNil(t, got.Residence)
	assert.Equal(t, home, *got.Residence)
	assert.Equal(t, "mrossi", got.Nickname)
	assert.Equal(t, "$argon2id$x", got.PasswordHash)
}

func TestNewAccount_ResidenceMismatch(t *testing.T) {
	home := Residence{ID: "R2", Street: "Via Roma", CivicNumber: 12, CouncilName: "Varese", ProvinceName: "VA"}
	acc := Account{ID: "A1", Nickname: "mrossi", ResidenceID: "R1"}

	_, err := NewAccount(acc.Attributes(), home.Attributes())
	require.Error(t, err)
}

func TestConstructors_RejectForeignAttributes(t *testing.T) {
	songAttrs := Song{ID: "S1"}.Attributes()

	_, err := NewAlbum(songAttrs)
	assert.ErrorIs(t, err, decode.ErrForeignColumn)

	_, err = NewAccount(songAttrs, Residence{}.Attributes())
	assert.ErrorIs(t, err, decode.ErrForeignColumn)

	_, err = membershipEntry(songAttrs)
	assert.ErrorIs(t, err, decode.ErrForeignColumn)
}

func TestNewSong_StartsWithEmptyImages(t *testing.T) {
	song, err := NewSong(Song{ID: "S1", Name: "Digital Love", Explicit: true, DurationMS: 301373}.Attributes())
	require.NoError(t, err)

	require.NotNil(t, song.Images)
	assert.Zero(t, song.Images.Len())
	assert.True(t, song.Explicit)
	assert.EqualValues(t, 301373, song.DurationMS)
}

func TestNewSong_CoercesDriverValues(t *testing.T) {
	a := Song{}.Attributes()
	require.NoError(t, a.Set(schema.SongID, []byte("S9")))
	require.NoError(t, a.Set(schema.SongPopularity, int64(42)))
	require.NoError(t, a.Set(schema.SongExplicit, int64(1)))
	require.NoError(t, a.Set(schema.SongName, nil))

	song, err := NewSong(a)
	require.NoError(t, err)
	assert.Equal(t, "S9", song.ID)
	assert.Equal(t, 42, song.Popularity)
	assert.True(t, song.Explicit)
	assert.Empty(t, song.Name)
}

func TestImageSet_SameLabelOverwrites(t *testing.T) {
	set := NewImageSet()
	set.Put(Image{Size: "large", URL: "first"})
	set.Put(Image{Size: "small", URL: "thumb"})
	set.Put(Image{Size: "large", URL: "second"})

	assert.Equal(t, 2, set.Len())
	assert.Equal(t, []string{"large", "small"}, set.Labels())
	img, ok := set.Get("large")
	require.True(t, ok)
	assert.Equal(t, "second", img.URL)

	_, ok = set.Get("medium")
	assert.False(t, ok)
}

func TestImageSet_CloneIsIndependent(t *testing.T) {
	set := NewImageSet()
	set.Put(Image{Size: "large", URL: "a"})

	c := set.Clone()
	c.Put(Image{Size: "small", URL: "b"})

	assert.Equal(t, 1, set.Len())
	assert.Equal(t, 2, c.Len())
}

func TestImageSet_JSON(t *testing.T) {
	set := NewImageSet()
	set.Put(Image{AlbumID: "AL1", Size: "large", URL: "u", Height: 640, Width: 640})

	out, err := json.Marshal(Album{ID: "AL1", Images: set})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"images":{"large":{"size":"large","url":"u","height":640,"width":640}}`)

	empty, err := json.Marshal(Album{ID: "AL2", Images: NewImageSet()})
	require.NoError(t, err)
	assert.Contains(t, string(empty), `"images":{}`)
}

func TestMembership(t *testing.T) {
	m := NewMembership()
	m.Add("S2")
	m.Add("S1")
	m.Add("S2")

	assert.Equal(t, 2, m.Len())
	assert.Equal(t, []string{"S2", "S1"}, m.SongIDs())
	assert.True(t, m.Contains("S1"))
	assert.False(t, m.Contains("S3"))

	out, err := json.Marshal(NewMembership())
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(out))
}
