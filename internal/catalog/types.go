package catalog

import (
	"fmt"
	"strings"
)

// Residence is a postal address shared by accounts.
type Residence struct {
	ID           string `json:"id"`
	Street       string `json:"street"`
	CivicNumber  int    `json:"civic_number"`
	CouncilName  string `json:"council_name"`
	ProvinceName string `json:"province_name"`
}

// ResidenceKey is the natural key of a residence.
type ResidenceKey struct {
	Street       string
	CivicNumber  int
	CouncilName  string
	ProvinceName string
}

// String renders the key for use as a map or singleflight key.
func (k ResidenceKey) String() string {
	return fmt.Sprintf("%s\x1f%d\x1f%s\x1f%s", k.Street, k.CivicNumber, k.CouncilName, k.ProvinceName)
}

// NaturalKey returns every non-surrogate field of r.
func (r Residence) NaturalKey() ResidenceKey {
	return ResidenceKey{
		Street:       r.Street,
		CivicNumber:  r.CivicNumber,
		CouncilName:  r.CouncilName,
		ProvinceName: r.ProvinceName,
	}
}

func (r Residence) validate() error {
	var missing []string
	if strings.TrimSpace(r.Street) == "" {
		missing = append(missing, "street")
	}
	if r.CivicNumber <= 0 {
		missing = append(missing, "civic_number")
	}
	if strings.TrimSpace(r.CouncilName) == "" {
		missing = append(missing, "council_name")
	}
	if strings.TrimSpace(r.ProvinceName) == "" {
		missing = append(missing, "province_name")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: residence needs %s", ErrInvalidInput, strings.Join(missing, ", "))
	}
	return nil
}

// Account is a registered user. Residence is always populated on reads.
type Account struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Surname      string     `json:"surname"`
	Nickname     string     `json:"nickname"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	ResidenceID  string     `json:"residence_id"`
	Residence    *Residence `json:"residence,omitempty"`
}

// Registration holds the fields a caller supplies to register an account.
type Registration struct {
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// minPasswordLength is the shortest accepted password.
const minPasswordLength = 8

func (n Registration) validate() error {
	var bad []string
	if strings.TrimSpace(n.Name) == "" {
		bad = append(bad, "name")
	}
	if strings.TrimSpace(n.Surname) == "" {
		bad = append(bad, "surname")
	}
	if strings.TrimSpace(n.Nickname) == "" {
		bad = append(bad, "nickname")
	}
	if !strings.Contains(n.Email, "@") {
		bad = append(bad, "email")
	}
	if len(n.Password) < minPasswordLength {
		bad = append(bad, "password")
	}
	if len(bad) > 0 {
		return fmt.Errorf("%w: account needs valid %s", ErrInvalidInput, strings.Join(bad, ", "))
	}
	return nil
}

// Artist is a performing artist.
type Artist struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	SpotifyURL string `json:"spotify_url"`
	Followers  int64  `json:"followers"`
	Popularity int    `json:"popularity"`
}

// Image is one size variant of an album cover.
type Image struct {
	AlbumID string `json:"-"`
	Size    string `json:"size"`
	URL     string `json:"url"`
	Height  int    `json:"height"`
	Width   int    `json:"width"`
}

// Album is a release. Images is never nil on entities returned by a Store.
type Album struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"album_type"`
	TotalTracks int       `json:"total_tracks"`
	ReleaseDate string    `json:"release_date"`
	SpotifyURL  string    `json:"spotify_url"`
	ArtistID    string    `json:"artist_id"`
	Images      *ImageSet `json:"images"`
}

// Song is a track. Its images are its album's images.
type Song struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	AlbumID    string    `json:"album_id"`
	ArtistID   string    `json:"artist_id"`
	DurationMS int64     `json:"duration_ms"`
	Popularity int       `json:"popularity"`
	Explicit   bool      `json:"explicit"`
	SpotifyURL string    `json:"spotify_url"`
	Images     *ImageSet `json:"images"`
}

// Playlist is an account's named song list.
type Playlist struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	AccountID string      `json:"account_id"`
	Songs     *Membership `json:"songs"`
}

// Page selects a window of a listing. Zero values take the store defaults.
type Page struct {
	Limit  int
	Offset int
}
