package schema

import (
	"fmt"
	"slices"
)

// Account columns.
var (
	AccountID          = newColumn(Account, "id", String)
	AccountName        = newColumn(Account, "name", String)
	AccountSurname     = newColumn(Account, "surname", String)
	AccountNickname    = newColumn(Account, "nickname", String)
	AccountEmail       = newColumn(Account, "email", String)
	AccountPassword    = newColumn(Account, "password_hash", String)
	AccountResidenceID = newColumn(Account, "residence_id", String)
)

// Residence columns. Every column except the id forms the natural key.
var (
	ResidenceID           = newColumn(Residence, "id", String)
	ResidenceStreet       = newColumn(Residence, "street", String)
	ResidenceCivicNumber  = newColumn(Residence, "civic_number", Integer)
	ResidenceCouncilName  = newColumn(Residence, "council_name", String)
	ResidenceProvinceName = newColumn(Residence, "province_name", String)
)

// Artist columns.
var (
	ArtistID         = newColumn(Artist, "id", String)
	ArtistName       = newColumn(Artist, "name", String)
	ArtistSpotifyURL = newColumn(Artist, "spotify_url", String)
	ArtistFollowers  = newColumn(Artist, "followers", Long)
	ArtistPopularity = newColumn(Artist, "popularity", Integer)
)

// Album columns.
var (
	AlbumID          = newColumn(Album, "id", String)
	AlbumName        = newColumn(Album, "name", String)
	AlbumType        = newColumn(Album, "album_type", String)
	AlbumTotalTracks = newColumn(Album, "total_tracks", Integer)
	AlbumReleaseDate = newColumn(Album, "release_date", String)
	AlbumSpotifyURL  = newColumn(Album, "spotify_url", String)
	AlbumArtistID    = newColumn(Album, "artist_id", String)
)

// AlbumImage columns. (album_id, image_size) is the key of an image variant.
var (
	AlbumImageAlbumID = newColumn(AlbumImage, "album_id", String)
	AlbumImageSize    = newColumn(AlbumImage, "image_size", String)
	AlbumImageURL     = newColumn(AlbumImage, "url", String)
	AlbumImageHeight  = newColumn(AlbumImage, "height", Integer)
	AlbumImageWidth   = newColumn(AlbumImage, "width", Integer)
)

// Song columns.
var (
	SongID         = newColumn(Song, "id", String)
	SongName       = newColumn(Song, "name", String)
	SongAlbumID    = newColumn(Song, "album_id", String)
	SongArtistID   = newColumn(Song, "artist_id", String)
	SongDurationMS = newColumn(Song, "duration_ms", Long)
	SongPopularity = newColumn(Song, "popularity", Integer)
	SongExplicit   = newColumn(Song, "explicit", Boolean)
	SongSpotifyURL = newColumn(Song, "spotify_url", String)
)

// Playlist columns.
var (
	PlaylistID        = newColumn(Playlist, "id", String)
	PlaylistName      = newColumn(Playlist, "name", String)
	PlaylistAccountID = newColumn(Playlist, "account_id", String)
)

// PlaylistSong columns.
var (
	PlaylistSongPlaylistID = newColumn(PlaylistSong, "playlist_id", String)
	PlaylistSongSongID     = newColumn(PlaylistSong, "song_id", String)
)

// order is the registration order, used for deterministic iteration.
var order = []Table{Account, Residence, Artist, Album, AlbumImage, Song, Playlist, PlaylistSong}

// tables is the registry. It is written only by init.
var tables map[Table][]Column

func init() {
	tables = map[Table][]Column{
		Account: {
			AccountID, AccountName, AccountSurname, AccountNickname,
			AccountEmail, AccountPassword, AccountResidenceID,
		},
		Residence: {
			ResidenceID, ResidenceStreet, ResidenceCivicNumber,
			ResidenceCouncilName, ResidenceProvinceName,
		},
		Artist: {
			ArtistID, ArtistName, ArtistSpotifyURL, ArtistFollowers, ArtistPopularity,
		},
		Album: {
			AlbumID, AlbumName, AlbumType, AlbumTotalTracks,
			AlbumReleaseDate, AlbumSpotifyURL, AlbumArtistID,
		},
		AlbumImage: {
			AlbumImageAlbumID, AlbumImageSize, AlbumImageURL, AlbumImageHeight, AlbumImageWidth,
		},
		Song: {
			SongID, SongName, SongAlbumID, SongArtistID,
			SongDurationMS, SongPopularity, SongExplicit, SongSpotifyURL,
		},
		Playlist: {
			PlaylistID, PlaylistName, PlaylistAccountID,
		},
		PlaylistSong: {
			PlaylistSongPlaylistID, PlaylistSongSongID,
		},
	}

	for _, t := range order {
		for _, c := range tables[t] {
			if c.table != t {
				panic(fmt.Sprintf("schema: column %s registered under table %s", c, t))
			}
		}
	}
}

// Columns returns the ordered column descriptors of t.
//
// Requesting an unregistered table is a programming error and panics.
func Columns(t Table) []Column {
	cols, ok := tables[t]
	if !ok {
		panic(fmt.Sprintf("schema: table %q is not registered", string(t)))
	}
	return slices.Clone(cols)
}

// Lookup returns the ordered column descriptors of t and whether t is registered.
func Lookup(t Table) ([]Column, bool) {
	cols, ok := tables[t]
	if !ok {
		return nil, false
	}
	return slices.Clone(cols), true
}

// Count returns the number of columns registered for t. It panics like Columns.
func Count(t Table) int {
	cols, ok := tables[t]
	if !ok {
		panic(fmt.Sprintf("schema: table %q is not registered", string(t)))
	}
	return len(cols)
}

// Tables returns every registered table in registration order.
func Tables() []Table {
	return slices.Clone(order)
}

// ResidenceNaturalKey returns the non-surrogate columns that identify a residence.
func ResidenceNaturalKey() []Column {
	return []Column{ResidenceStreet, ResidenceCivicNumber, ResidenceCouncilName, ResidenceProvinceName}
}
