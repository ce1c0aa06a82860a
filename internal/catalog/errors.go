package catalog

import "errors"

var (
	// ErrAccountNotFound is returned when no account matches a lookup.
	ErrAccountNotFound = errors.New("account not found")

	// ErrArtistNotFound is returned when an artist ID does not exist.
	ErrArtistNotFound = errors.New("artist not found")

	// ErrAlbumNotFound is returned when an album ID does not exist.
	ErrAlbumNotFound = errors.New("album not found")

	// ErrSongNotFound is returned when a song ID does not exist.
	ErrSongNotFound = errors.New("song not found")

	// ErrPlaylistNotFound is returned when a playlist does not exist or
	// belongs to another account.
	ErrPlaylistNotFound = errors.New("playlist not found")

	// ErrAccountExists is returned when the email or nickname is already registered.
	ErrAccountExists = errors.New("account already exists")

	// ErrInvalidCredentials is returned when authentication fails.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidInput is returned when caller-supplied fields fail validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrIDCollision is returned when a generated surrogate ID is already taken
	// and no retry could produce a free one.
	ErrIDCollision = errors.New("generated id collides with an existing row")

	// ErrUnknownFetchStrategy is returned for an unrecognised strategy name.
	ErrUnknownFetchStrategy = errors.New("unknown fetch strategy")

	// ErrUnknownIDScheme is returned for an unrecognised id scheme name.
	ErrUnknownIDScheme = errors.New("unknown id scheme")
)

// errNoResidence is the internal not-found signal of a residence lookup.
var errNoResidence = errors.New("no residence with that natural key")
