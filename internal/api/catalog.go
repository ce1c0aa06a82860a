package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/emotionalsongs-core/internal/catalog"
)

// maxIDsPerRequest caps the ids parameter of /songs/by-ids.
const maxIDsPerRequest = 100

// parsePage reads limit and offset query parameters. Missing values are zero,
// which the store replaces with its defaults.
func parsePage(r *http.Request) (catalog.Page, error) {
	var page catalog.Page
	var err error
	if page.Limit, err = nonNegativeParam(r, "limit"); err != nil {
		return page, err
	}
	if page.Offset, err = nonNegativeParam(r, "offset"); err != nil {
		return page, err
	}
	return page, nil
}

func nonNegativeParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", name)
	}
	return n, nil
}

// listResponse wraps a listing with its length.
func listResponse(key string, items any, count int) map[string]any {
	return map[string]any{key: items, "count": count}
}

func (s *Server) handleSearchSongs(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	songs, err := s.store.SearchSongs(r.Context(), r.URL.Query().Get("q"), page)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse("songs", songs, len(songs)))
}

func (s *Server) handleTopSongs(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	songs, err := s.store.TopPopularSongs(r.Context(), page)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse("songs", songs, len(songs)))
}

// handleSongsByIDs returns songs for a comma-separated ids list, in request
// order. Unknown IDs are skipped.
func (s *Server) handleSongsByIDs(w http.ResponseWriter, r *http.Request) {
	var ids []string
	for _, id := range strings.Split(r.URL.Query().Get("ids"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		writeBadRequest(w, "ids is required")
		return
	}
	if len(ids) > maxIDsPerRequest {
		writeBadRequest(w, fmt.Sprintf("at most %d ids per request", maxIDsPerRequest))
		return
	}

	songs, err := s.store.SongsByIDs(r.Context(), ids)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse("songs", songs, len(songs)))
}

func (s *Server) handleGetSong(w http.ResponseWriter, r *http.Request) {
	song, err := s.store.Song(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, song)
}

func (s *Server) handleSearchAlbums(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	albums, err := s.store.SearchAlbums(r.Context(), r.URL.Query().Get("q"), page)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse("albums", albums, len(albums)))
}

// handleRecentAlbums lists albums released in or after the threshold year,
// newest first. The threshold defaults to catalog.recent_albums_year.
func (s *Server) handleRecentAlbums(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	year := s.catalogCfg.RecentAlbumsYear
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		year, err = strconv.Atoi(raw)
		if err != nil || year < 0 || year > 9999 {
			writeBadRequest(w, "threshold must be a year between 0 and 9999")
			return
		}
	}

	albums, err := s.store.RecentAlbums(r.Context(), page, year)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse("albums", albums, len(albums)))
}

func (s *Server) handleGetAlbum(w http.ResponseWriter, r *http.Request) {
	album, err := s.store.Album(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, album)
}

func (s *Server) handleAlbumSongs(w http.ResponseWriter, r *http.Request) {
	songs, err := s.store.AlbumSongs(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse("songs", songs, len(songs)))
}

func (s *Server) handleAlbumImages(w http.ResponseWriter, r *http.Request) {
	images, err := s.store.AlbumImages(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, images)
}

func (s *Server) handleGetArtist(w http.ResponseWriter, r *http.Request) {
	artist, err := s.store.Artist(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, artist)
}
