package catalog

import (
	"fmt"

	"github.com/nerrad567/emotionalsongs-core/internal/decode"
	"github.com/nerrad567/emotionalsongs-core/internal/schema"
)

// expect fails when a is not an attribute map of t.
func expect(a decode.Attributes, t schema.Table) error {
	if a.Table() != t {
		return fmt.Errorf("building %s from %q attributes: %w", t, string(a.Table()), decode.ErrForeignColumn)
	}
	return nil
}

// must sets values on attributes known to belong to their table.
func must(a decode.Attributes, pairs ...any) decode.Attributes {
	for i := 0; i+1 < len(pairs); i += 2 {
		if err := a.Set(pairs[i].(schema.Column), pairs[i+1]); err != nil {
			panic(err)
		}
	}
	return a
}

// NewResidence builds a Residence from residence attributes.
func NewResidence(a decode.Attributes) (Residence, error) {
	if err := expect(a, schema.Residence); err != nil {
		return Residence{}, err
	}
	r := a.Reader()
	res := Residence{
		ID:           r.String(schema.ResidenceID),
		Street:       r.String(schema.ResidenceStreet),
		CivicNumber:  r.Int(schema.ResidenceCivicNumber),
		CouncilName:  r.String(schema.ResidenceCouncilName),
		ProvinceName: r.String(schema.ResidenceProvinceName),
	}
	if err := r.Err(); err != nil {
		return Residence{}, fmt.Errorf("building residence: %w", err)
	}
	return res, nil
}

// Attributes returns r as residence attributes.
func (r Residence) Attributes() decode.Attributes {
	return must(decode.NewAttributes(schema.Residence),
		schema.ResidenceID, r.ID,
		schema.ResidenceStreet, r.Street,
		schema.ResidenceCivicNumber, int64(r.CivicNumber),
		schema.ResidenceCouncilName, r.CouncilName,
		schema.ResidenceProvinceName, r.ProvinceName,
	)
}

// NewAccount builds an Account with its Residence nested from two attribute
// maps decoded from the same row. It performs no queries.
func NewAccount(account, residence decode.Attributes) (Account, error) {
	if err := expect(account, schema.Account); err != nil {
		return Account{}, err
	}
	res, err := NewResidence(residence)
	if err != nil {
		return Account{}, err
	}

	r := account.Reader()
	acc := Account{
		ID:           r.String(schema.AccountID),
		Name:         r.String(schema.AccountName),
		Surname:      r.String(schema.AccountSurname),
		Nickname:     r.String(schema.AccountNickname),
		Email:        r.String(schema.AccountEmail),
		PasswordHash: r.String(schema.AccountPassword),
		ResidenceID:  r.String(schema.AccountResidenceID),
	}
	if err := r.Err(); err != nil {
		return Account{}, fmt.Errorf("building account: %w", err)
	}
	if acc.ResidenceID != res.ID {
		return Account{}, fmt.Errorf("building account %s: residence_id %s does not match residence %s",
			acc.ID, acc.ResidenceID, res.ID)
	}
	acc.Residence = &res
	return acc, nil
}

// Attributes returns a as account attributes. The nested residence is not included.
func (a Account) Attributes() decode.Attributes {
	return must(decode.NewAttributes(schema.Account),
		schema.AccountID, a.ID,
		schema.AccountName, a.Name,
		schema.AccountSurname, a.Surname,
		schema.AccountNickname, a.Nickname,
		schema.AccountEmail, a.Email,
		schema.AccountPassword, a.PasswordHash,
		schema.AccountResidenceID, a.ResidenceID,
	)
}

// NewArtist builds an Artist.
func NewArtist(a decode.Attributes) (Artist, error) {
	if err := expect(a, schema.Artist); err != nil {
		return Artist{}, err
	}
	r := a.Reader()
	artist := Artist{
		ID:         r.String(schema.ArtistID),
		Name:       r.String(schema.ArtistName),
		SpotifyURL: r.String(schema.ArtistSpotifyURL),
		Followers:  r.Int64(schema.ArtistFollowers),
		Popularity: r.Int(schema.ArtistPopularity),
	}
	if err := r.Err(); err != nil {
		return Artist{}, fmt.Errorf("building artist: %w", err)
	}
	return artist, nil
}

// Attributes returns a as artist attributes.
func (a Artist) Attributes() decode.Attributes {
	return must(decode.NewAttributes(schema.Artist),
		schema.ArtistID, a.ID,
		schema.ArtistName, a.Name,
		schema.ArtistSpotifyURL, a.SpotifyURL,
		schema.ArtistFollowers, a.Followers,
		schema.ArtistPopularity, int64(a.Popularity),
	)
}

// NewAlbum builds an Album with an empty image set.
func NewAlbum(a decode.Attributes) (Album, error) {
	if err := expect(a, schema.Album); err != nil {
		return Album{}, err
	}
	r := a.Reader()
	album := Album{
		ID:          r.String(schema.AlbumID),
		Name:        r.String(schema.AlbumName),
		Type:        r.String(schema.AlbumType),
		TotalTracks: r.Int(schema.AlbumTotalTracks),
		ReleaseDate: r.String(schema.AlbumReleaseDate),
		SpotifyURL:  r.String(schema.AlbumSpotifyURL),
		ArtistID:    r.String(schema.AlbumArtistID),
		Images:      NewImageSet(),
	}
	if err := r.Err(); err != nil {
		return Album{}, fmt.Errorf("building album: %w", err)
	}
	return album, nil
}

// Attributes returns a as album attributes.
func (a Album) Attributes() decode.Attributes {
	return must(decode.NewAttributes(schema.Album),
		schema.AlbumID, a.ID,
		schema.AlbumName, a.Name,
		schema.AlbumType, a.Type,
		schema.AlbumTotalTracks, int64(a.TotalTracks),
		schema.AlbumReleaseDate, a.ReleaseDate,
		schema.AlbumSpotifyURL, a.SpotifyURL,
		schema.AlbumArtistID, a.ArtistID,
	)
}

// NewImage builds an Image.
func NewImage(a decode.Attributes) (Image, error) {
	if err := expect(a, schema.AlbumImage); err != nil {
		return Image{}, err
	}
	r := a.Reader()
	img := Image{
		AlbumID: r.String(schema.AlbumImageAlbumID),
		Size:    r.String(schema.AlbumImageSize),
		URL:     r.String(schema.AlbumImageURL),
		Height:  r.Int(schema.AlbumImageHeight),
		Width:   r.Int(schema.AlbumImageWidth),
	}
	if err := r.Err(); err != nil {
		return Image{}, fmt.Errorf("building image: %w", err)
	}
	return img, nil
}

// Attributes returns img as album_image attributes.
func (img Image) Attributes() decode.Attributes {
	return must(decode.NewAttributes(schema.AlbumImage),
		schema.AlbumImageAlbumID, img.AlbumID,
		schema.AlbumImageSize, img.Size,
		schema.AlbumImageURL, img.URL,
		schema.AlbumImageHeight, int64(img.Height),
		schema.AlbumImageWidth, int64(img.Width),
	)
}

// NewSong builds a Song with an empty image set.
func NewSong(a decode.Attributes) (Song, error) {
	if err := expect(a, schema.Song); err != nil {
		return Song{}, err
	}
	r := a.Reader()
	song := Song{
		ID:         r.String(schema.SongID),
		Name:       r.String(schema.SongName),
		AlbumID:    r.String(schema.SongAlbumID),
		ArtistID:   r.String(schema.SongArtistID),
		DurationMS: r.Int64(schema.SongDurationMS),
		Popularity: r.Int(schema.SongPopularity),
		Explicit:   r.Bool(schema.SongExplicit),
		SpotifyURL: r.String(schema.SongSpotifyURL),
		Images:     NewImageSet(),
	}
	if err := r.Err(); err != nil {
		return Song{}, fmt.Errorf("building song: %w", err)
	}
	return song, nil
}

// Attributes returns s as song attributes.
func (s Song) Attributes() decode.Attributes {
	return must(decode.NewAttributes(schema.Song),
		schema.SongID, s.ID,
		schema.SongName, s.Name,
		schema.SongAlbumID, s.AlbumID,
		schema.SongArtistID, s.ArtistID,
		schema.SongDurationMS, s.DurationMS,
		schema.SongPopularity, int64(s.Popularity),
		schema.SongExplicit, s.Explicit,
		schema.SongSpotifyURL, s.SpotifyURL,
	)
}

// NewPlaylist builds a Playlist with an empty membership.
func NewPlaylist(a decode.Attributes) (Playlist, error) {
	if err := expect(a, schema.Playlist); err != nil {
		return Playlist{}, err
	}
	r := a.Reader()
	pl := Playlist{
		ID:        r.String(schema.PlaylistID),
		Name:      r.String(schema.PlaylistName),
		AccountID: r.String(schema.PlaylistAccountID),
		Songs:     NewMembership(),
	}
	if err := r.Err(); err != nil {
		return Playlist{}, fmt.Errorf("building playlist: %w", err)
	}
	return pl, nil
}

// Attributes returns p as playlist attributes. Membership is not included.
func (p Playlist) Attributes() decode.Attributes {
	return must(decode.NewAttributes(schema.Playlist),
		schema.PlaylistID, p.ID,
		schema.PlaylistName, p.Name,
		schema.PlaylistAccountID, p.AccountID,
	)
}

// membershipEntry reads the song ID of one playlist_song row.
func membershipEntry(a decode.Attributes) (string, error) {
	if err := expect(a, schema.PlaylistSong); err != nil {
		return "", err
	}
	r := a.Reader()
	id := r.String(schema.PlaylistSongSongID)
	if err := r.Err(); err != nil {
		return "", fmt.Errorf("building playlist entry: %w", err)
	}
	return id, nil
}

// membershipAttributes returns the playlist_song row linking playlistID and songID.
func membershipAttributes(playlistID, songID string) decode.Attributes {
	return must(decode.NewAttributes(schema.PlaylistSong),
		schema.PlaylistSongPlaylistID, playlistID,
		schema.PlaylistSongSongID, songID,
	)
}
