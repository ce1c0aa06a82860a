package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nerrad567/emotionalsongs-core/internal/auth"
	"github.com/nerrad567/emotionalsongs-core/internal/decode"
	"github.com/nerrad567/emotionalsongs-core/internal/infrastructure/database"
	"github.com/nerrad567/emotionalsongs-core/internal/infrastructure/logging"
	"github.com/nerrad567/emotionalsongs-core/internal/query"
	"github.com/nerrad567/emotionalsongs-core/internal/schema"
)

// Page size defaults used when no WithPageLimits option is given.
const (
	defaultPageLimit = 20
	defaultMaxLimit  = 100
)

// PasswordHasher hashes and verifies account passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
}

// Store reads and writes catalog entities.
type Store struct {
	q         Querier
	dialect   query.Dialect
	strategy  FetchStrategy
	ids       IDGenerator
	hasher    PasswordHasher
	publisher EventPublisher
	logger    *logging.Logger
	resolver  *ResidenceResolver
	pageLimit int
	maxLimit  int
	now       func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithFetchStrategy sets how dependent collections are loaded. Default PerEntity{1}.
func WithFetchStrategy(s FetchStrategy) Option {
	return func(st *Store) { st.strategy = s }
}

// WithIDs sets the surrogate ID generator. Default TimeHexIDs.
func WithIDs(ids IDGenerator) Option {
	return func(st *Store) { st.ids = ids }
}

// WithPasswordHasher replaces the Argon2id hasher.
func WithPasswordHasher(h PasswordHasher) Option {
	return func(st *Store) { st.hasher = h }
}

// WithPublisher sets where write events go. Default drops them.
func WithPublisher(p EventPublisher) Option {
	return func(st *Store) { st.publisher = p }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(st *Store) { st.logger = l }
}

// WithPageLimits sets the default and maximum page sizes.
func WithPageLimits(def, maxLimit int) Option {
	return func(st *Store) {
		st.pageLimit = def
		st.maxLimit = maxLimit
	}
}

// NewStore creates a Store over q speaking dialect d.
func NewStore(q Querier, d query.Dialect, opts ...Option) *Store {
	s := &Store{
		q:         q,
		dialect:   d,
		strategy:  PerEntity{Parallelism: 1},
		ids:       TimeHexIDs{},
		hasher:    auth.DefaultPasswordHasher(),
		publisher: nopPublisher{},
		logger:    logging.Discard(),
		pageLimit: defaultPageLimit,
		maxLimit:  defaultMaxLimit,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "catalog")
	s.resolver = NewResidenceResolver(q, d, s.ids, s.logger)
	return s
}

// Resolver returns the store's residence resolver.
func (s *Store) Resolver() *ResidenceResolver {
	return s.resolver
}

// FetchStrategy returns the configured dependent fetch strategy.
func (s *Store) FetchStrategy() FetchStrategy {
	return s.strategy
}

func (s *Store) clamp(p Page) Page {
	if p.Limit <= 0 {
		p.Limit = s.pageLimit
	}
	if p.Limit > s.maxLimit {
		p.Limit = s.maxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

func (s *Store) publish(ctx context.Context, kind, id string, attrs map[string]string) {
	e := Event{Kind: kind, EntityID: id, At: s.now().UTC(), Attrs: attrs}
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("publishing catalog event failed",
			"kind", kind,
			"entity_id", id,
			"error", err,
		)
	}
}

// likePattern escapes LIKE wildcards in text and wraps it for a contains match.
func likePattern(text string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(text)) + "%"
}

// --- songs ---

var songSource = query.From(schema.Song, "s")

func decodeSong(cur decode.Cursor) (Song, error) {
	res, err := decode.Projected(cur, query.Project(songSource))
	if err != nil {
		return Song{}, err
	}
	attrs, _ := res.Table(schema.Song)
	return NewSong(attrs)
}

func (s *Store) songs(ctx context.Context, tail string, args ...any) ([]Song, error) {
	stmt := s.dialect.Rebind(query.Project(songSource).Select("FROM song s " + tail))
	songs, err := collect(ctx, s.q, stmt, args, decodeSong)
	if err != nil {
		return nil, fmt.Errorf("listing songs: %w", err)
	}
	if err := s.attachSongImages(ctx, songs); err != nil {
		return nil, err
	}
	return songs, nil
}

// attachSongImages gives each song a copy of its album's image set.
func (s *Store) attachSongImages(ctx context.Context, songs []Song) error {
	albumIDs := make([]string, len(songs))
	for i, song := range songs {
		albumIDs[i] = song.AlbumID
	}
	sets, err := s.imageSets(ctx, albumIDs)
	if err != nil {
		return err
	}
	for i := range songs {
		if set, ok := sets[songs[i].AlbumID]; ok {
			songs[i].Images = set.Clone()
		}
	}
	return nil
}

// imageSets loads the image variants of each album, one set per album ID.
// Albums without images get an empty set.
func (s *Store) imageSets(ctx context.Context, albumIDs []string) (map[string]*ImageSet, error) {
	images, err := fetchDependents(ctx, s.strategy, s.q, s.dialect, albumImages, albumIDs, NewImage)
	if err != nil {
		return nil, fmt.Errorf("loading album images: %w", err)
	}
	sets := make(map[string]*ImageSet, len(albumIDs))
	for _, id := range albumIDs {
		if _, ok := sets[id]; ok {
			continue
		}
		set := NewImageSet()
		for _, img := range images[id] {
			set.Put(img)
		}
		sets[id] = set
	}
	return sets, nil
}

// SearchSongs returns songs whose title contains text, case-insensitively.
func (s *Store) SearchSongs(ctx context.Context, text string, page Page) ([]Song, error) {
	page = s.clamp(page)
	return s.songs(ctx, `WHERE LOWER(s.name) LIKE ? ESCAPE '\' ORDER BY s.name, s.id LIMIT ? OFFSET ?`,
		likePattern(text), page.Limit, page.Offset)
}

// TopPopularSongs returns songs ordered by popularity, most popular first.
func (s *Store) TopPopularSongs(ctx context.Context, page Page) ([]Song, error) {
	page = s.clamp(page)
	return s.songs(ctx, "ORDER BY s.popularity DESC, s.id LIMIT ? OFFSET ?", page.Limit, page.Offset)
}

// AlbumSongs returns the songs of an album.
func (s *Store) AlbumSongs(ctx context.Context, albumID string) ([]Song, error) {
	return s.songs(ctx, "WHERE s.album_id = ? ORDER BY s.name, s.id", albumID)
}

// SongsByIDs returns the songs with the given IDs in request order.
// Unknown IDs are skipped.
func (s *Store) SongsByIDs(ctx context.Context, ids []string) ([]Song, error) {
	ids = distinct(ids)
	if len(ids) == 0 {
		return []Song{}, nil
	}

	stmt, args, err := s.dialect.In(query.Project(songSource).Select("FROM song s WHERE s.id IN (?)"), ids)
	if err != nil {
		return nil, err
	}
	found, err := collect(ctx, s.q, stmt, args, decodeSong)
	if err != nil {
		return nil, fmt.Errorf("listing songs by id: %w", err)
	}

	byID := make(map[string]Song, len(found))
	for _, song := range found {
		byID[song.ID] = song
	}
	songs := make([]Song, 0, len(found))
	for _, id := range ids {
		if song, ok := byID[id]; ok {
			songs = append(songs, song)
		}
	}
	if err := s.attachSongImages(ctx, songs); err != nil {
		return nil, err
	}
	return songs, nil
}

// Song returns one song with its images.
func (s *Store) Song(ctx context.Context, id string) (Song, error) {
	songs, err := s.songs(ctx, "WHERE s.id = ?", id)
	if err != nil {
		return Song{}, err
	}
	if len(songs) == 0 {
		return Song{}, ErrSongNotFound
	}
	return songs[0], nil
}

// --- albums and artists ---

var albumSource = query.From(schema.Album, "a")

func decodeAlbum(cur decode.Cursor) (Album, error) {
	res, err := decode.Projected(cur, query.Project(albumSource))
	if err != nil {
		return Album{}, err
	}
	attrs, _ := res.Table(schema.Album)
	return NewAlbum(attrs)
}

func (s *Store) albums(ctx context.Context, tail string, args ...any) ([]Album, error) {
	stmt := s.dialect.Rebind(query.Project(albumSource).Select("FROM album a " + tail))
	albums, err := collect(ctx, s.q, stmt, args, decodeAlbum)
	if err != nil {
		return nil, fmt.Errorf("listing albums: %w", err)
	}

	ids := make([]string, len(albums))
	for i, a := range albums {
		ids[i] = a.ID
	}
	sets, err := s.imageSets(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range albums {
		albums[i].Images = sets[albums[i].ID]
	}
	return albums, nil
}

// SearchAlbums returns albums whose name contains text, case-insensitively.
func (s *Store) SearchAlbums(ctx context.Context, text string, page Page) ([]Album, error) {
	page = s.clamp(page)
	return s.albums(ctx, `WHERE LOWER(a.name) LIKE ? ESCAPE '\' ORDER BY a.name, a.id LIMIT ? OFFSET ?`,
		likePattern(text), page.Limit, page.Offset)
}

// RecentAlbums returns albums released in or after sinceYear, newest first.
func (s *Store) RecentAlbums(ctx context.Context, page Page, sinceYear int) ([]Album, error) {
	page = s.clamp(page)
	// release_date is ISO-8601 text ("2021", "2021-03" or "2021-03-05"),
	// so comparing against the bare year is a lexical range check.
	return s.albums(ctx, "WHERE a.release_date >= ? ORDER BY a.release_date DESC, a.id LIMIT ? OFFSET ?",
		fmt.Sprintf("%04d", sinceYear), page.Limit, page.Offset)
}

// Album returns one album with its images.
func (s *Store) Album(ctx context.Context, id string) (Album, error) {
	albums, err := s.albums(ctx, "WHERE a.id = ?", id)
	if err != nil {
		return Album{}, err
	}
	if len(albums) == 0 {
		return Album{}, ErrAlbumNotFound
	}
	return albums[0], nil
}

// AlbumImages returns the image variants of one album.
func (s *Store) AlbumImages(ctx context.Context, albumID string) (*ImageSet, error) {
	sets, err := s.imageSets(ctx, []string{albumID})
	if err != nil {
		return nil, err
	}
	return sets[albumID], nil
}

// Artist returns one artist.
func (s *Store) Artist(ctx context.Context, id string) (Artist, error) {
	src := query.From(schema.Artist, "ar")
	p := query.Project(src)
	stmt := s.dialect.Rebind(p.Select("FROM artist ar WHERE ar.id = ?"))

	artist, err := first(ctx, s.q, stmt, []any{id}, ErrArtistNotFound, func(cur decode.Cursor) (Artist, error) {
		res, err := decode.Projected(cur, p)
		if err != nil {
			return Artist{}, err
		}
		attrs, _ := res.Table(schema.Artist)
		return NewArtist(attrs)
	})
	if err != nil && !errors.Is(err, ErrArtistNotFound) {
		return Artist{}, fmt.Errorf("reading artist %s: %w", id, err)
	}
	return artist, err
}

// --- accounts ---

var (
	accountSource   = query.From(schema.Account, "acc")
	residenceSource = query.From(schema.Residence, "res")
	accountWithHome = query.Project(accountSource, residenceSource)
)

// accountBy reads an account and its residence from one joined row.
func (s *Store) accountBy(ctx context.Context, col schema.Column, value string) (Account, error) {
	stmt := s.dialect.Rebind(accountWithHome.Select(
		"FROM account acc JOIN residence res ON res.id = acc.residence_id WHERE " +
			accountSource.Col(col) + " = ?",
	))

	acc, err := first(ctx, s.q, stmt, []any{value}, ErrAccountNotFound, func(cur decode.Cursor) (Account, error) {
		res, err := decode.Projected(cur, accountWithHome)
		if err != nil {
			return Account{}, err
		}
		a, _ := res.Table(schema.Account)
		r, _ := res.Table(schema.Residence)
		return NewAccount(a, r)
	})
	if err != nil && !errors.Is(err, ErrAccountNotFound) {
		return Account{}, fmt.Errorf("reading account by %s: %w", col.Name(), err)
	}
	return acc, err
}

// AccountByID returns an account with its residence.
func (s *Store) AccountByID(ctx context.Context, id string) (Account, error) {
	return s.accountBy(ctx, schema.AccountID, id)
}

// AccountByEmail returns an account with its residence. The address is
// matched case-insensitively, the same way RegisterAccount stores it.
func (s *Store) AccountByEmail(ctx context.Context, email string) (Account, error) {
	return s.accountBy(ctx, schema.AccountEmail, normalizeEmail(email))
}

// AccountByNickname returns an account with its residence.
func (s *Store) AccountByNickname(ctx context.Context, nickname string) (Account, error) {
	return s.accountBy(ctx, schema.AccountNickname, nickname)
}

// RegisterAccount hashes the password, resolves the residence by natural key
// (creating it if needed) and inserts the account.
func (s *Store) RegisterAccount(ctx context.Context, n Registration, home Residence) (Account, error) {
	if err := n.validate(); err != nil {
		return Account{}, err
	}
	if err := home.validate(); err != nil {
		return Account{}, err
	}

	hash, err := s.hasher.Hash(n.Password)
	if err != nil {
		return Account{}, fmt.Errorf("hashing password: %w", err)
	}

	residence, created, err := s.resolver.Resolve(ctx, home)
	if err != nil {
		return Account{}, fmt.Errorf("resolving residence: %w", err)
	}
	if created {
		s.publish(ctx, EventResidenceCreated, residence.ID, map[string]string{
			"council_name":  residence.CouncilName,
			"province_name": residence.ProvinceName,
		})
	}

	acc := Account{
		ID:           s.ids.NewID(),
		Name:         strings.TrimSpace(n.Name),
		Surname:      strings.TrimSpace(n.Surname),
		Nickname:     strings.TrimSpace(n.Nickname),
		Email:        normalizeEmail(n.Email),
		PasswordHash: hash,
		ResidenceID:  residence.ID,
		Residence:    &residence,
	}

	stmt, args := query.Insert(s.dialect, acc.Attributes())
	if _, err := s.q.ExecContext(ctx, stmt, args...); err != nil {
		if database.IsUniqueViolation(err) {
			return Account{}, s.accountConflict(ctx, acc)
		}
		return Account{}, fmt.Errorf("inserting account: %w", err)
	}

	s.logger.Info("account registered", "account_id", acc.ID, "residence_id", residence.ID)
	s.publish(ctx, EventAccountRegistered, acc.ID, map[string]string{"nickname": acc.Nickname})
	return acc, nil
}

// accountConflict tells a taken email or nickname apart from an ID collision.
func (s *Store) accountConflict(ctx context.Context, acc Account) error {
	lookups := []func(context.Context, string) (Account, error){s.AccountByEmail, s.AccountByNickname}
	values := []string{acc.Email, acc.Nickname}
	for i, lookup := range lookups {
		_, err := lookup(ctx, values[i])
		if err == nil {
			return ErrAccountExists
		}
		if !errors.Is(err, ErrAccountNotFound) {
			return fmt.Errorf("checking account conflict: %w", err)
		}
	}
	return fmt.Errorf("inserting account %s: %w", acc.ID, ErrIDCollision)
}

// Authenticate returns the account when nickname and password match.
func (s *Store) Authenticate(ctx context.Context, nickname, password string) (Account, error) {
	acc, err := s.AccountByNickname(ctx, strings.TrimSpace(nickname))
	if errors.Is(err, ErrAccountNotFound) {
		return Account{}, ErrInvalidCredentials
	}
	if err != nil {
		return Account{}, err
	}

	ok, err := s.hasher.Verify(password, acc.PasswordHash)
	if err != nil {
		return Account{}, fmt.Errorf("verifying password for %s: %w", acc.ID, err)
	}
	if !ok {
		return Account{}, ErrInvalidCredentials
	}
	return acc, nil
}

// --- playlists ---

var playlistSource = query.From(schema.Playlist, "p")

func decodePlaylist(cur decode.Cursor) (Playlist, error) {
	res, err := decode.Projected(cur, query.Project(playlistSource))
	if err != nil {
		return Playlist{}, err
	}
	attrs, _ := res.Table(schema.Playlist)
	return NewPlaylist(attrs)
}

// CreatePlaylist creates an empty playlist owned by accountID.
func (s *Store) CreatePlaylist(ctx context.Context, accountID, name string) (Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Playlist{}, fmt.Errorf("%w: playlist needs a name", ErrInvalidInput)
	}
	if _, err := s.AccountByID(ctx, accountID); err != nil {
		return Playlist{}, err
	}

	pl := Playlist{ID: s.ids.NewID(), Name: name, AccountID: accountID, Songs: NewMembership()}
	stmt, args := query.Insert(s.dialect, pl.Attributes())
	if _, err := s.q.ExecContext(ctx, stmt, args...); err != nil {
		if database.IsUniqueViolation(err) {
			return Playlist{}, fmt.Errorf("inserting playlist %s: %w", pl.ID, ErrIDCollision)
		}
		return Playlist{}, fmt.Errorf("inserting playlist: %w", err)
	}

	s.publish(ctx, EventPlaylistCreated, pl.ID, map[string]string{"account_id": accountID})
	return pl, nil
}

// AccountPlaylists returns an account's playlists with their membership.
func (s *Store) AccountPlaylists(ctx context.Context, accountID string) ([]Playlist, error) {
	stmt := s.dialect.Rebind(query.Project(playlistSource).Select(
		"FROM playlist p WHERE p.account_id = ? ORDER BY p.name, p.id"))
	playlists, err := collect(ctx, s.q, stmt, []any{accountID}, decodePlaylist)
	if err != nil {
		return nil, fmt.Errorf("listing playlists: %w", err)
	}
	if err := s.attachMembership(ctx, playlists); err != nil {
		return nil, err
	}
	return playlists, nil
}

func (s *Store) attachMembership(ctx context.Context, playlists []Playlist) error {
	ids := make([]string, len(playlists))
	for i, pl := range playlists {
		ids[i] = pl.ID
	}
	entries, err := fetchDependents(ctx, s.strategy, s.q, s.dialect, playlistSongs, ids, membershipEntry)
	if err != nil {
		return fmt.Errorf("loading playlist songs: %w", err)
	}
	for i := range playlists {
		for _, songID := range entries[playlists[i].ID] {
			playlists[i].Songs.Add(songID)
		}
	}
	return nil
}

// playlist returns the playlist if accountID owns it.
func (s *Store) playlist(ctx context.Context, accountID, playlistID string) (Playlist, error) {
	stmt := s.dialect.Rebind(query.Project(playlistSource).Select(
		"FROM playlist p WHERE p.id = ? AND p.account_id = ?"))
	pl, err := first(ctx, s.q, stmt, []any{playlistID, accountID}, ErrPlaylistNotFound, decodePlaylist)
	if err != nil && !errors.Is(err, ErrPlaylistNotFound) {
		return Playlist{}, fmt.Errorf("reading playlist %s: %w", playlistID, err)
	}
	return pl, err
}

// AddSongToPlaylist adds songID to a playlist owned by accountID. Adding a
// song that is already present is a no-op.
func (s *Store) AddSongToPlaylist(ctx context.Context, accountID, playlistID, songID string) error {
	if _, err := s.playlist(ctx, accountID, playlistID); err != nil {
		return err
	}
	if _, err := s.Song(ctx, songID); err != nil {
		return err
	}

	stmt, args := query.Insert(s.dialect, membershipAttributes(playlistID, songID))
	if _, err := s.q.ExecContext(ctx, stmt, args...); err != nil {
		if database.IsUniqueViolation(err) {
			return nil
		}
		return fmt.Errorf("adding song %s to playlist %s: %w", songID, playlistID, err)
	}

	s.publish(ctx, EventPlaylistSongAdded, playlistID, map[string]string{"song_id": songID})
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
