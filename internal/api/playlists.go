package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type createPlaylistRequest struct {
	Name string `json:"name"`
}

type addSongRequest struct {
	SongID string `json:"song_id"`
}

// handleListPlaylists returns the caller's playlists ordered by name.
func (s *Server) handleListPlaylists(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r.Context())
	if !ok {
		writeUnauthorized(w, "missing claims")
		return
	}

	playlists, err := s.store.AccountPlaylists(r.Context(), claims.Subject)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"playlists": playlists,
		"count":     len(playlists),
	})
}

// handleCreatePlaylist creates an empty playlist owned by the caller.
func (s *Server) handleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r.Context())
	if !ok {
		writeUnauthorized(w, "missing claims")
		return
	}

	var req createPlaylistRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	pl, err := s.store.CreatePlaylist(r.Context(), claims.Subject, req.Name)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, pl)
}

// handleAddPlaylistSong adds a song to one of the caller's playlists.
// Adding a song that is already present succeeds without change.
func (s *Server) handleAddPlaylistSong(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r.Context())
	if !ok {
		writeUnauthorized(w, "missing claims")
		return
	}

	var req addSongRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.SongID == "" {
		writeBadRequest(w, "song_id is required")
		return
	}

	err := s.store.AddSongToPlaylist(r.Context(), claims.Subject, chi.URLParam(r, "id"), req.SongID)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
