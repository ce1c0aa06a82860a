package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/metrics", s.handleMetrics)

		r.Route("/songs", func(r chi.Router) {
			r.Get("/", s.handleSearchSongs)
			r.Get("/top", s.handleTopSongs)
			r.Get("/by-ids", s.handleSongsByIDs)
			r.Get("/{id}", s.handleGetSong)
		})

		r.Route("/albums", func(r chi.Router) {
			r.Get("/", s.handleSearchAlbums)
			r.Get("/recent", s.handleRecentAlbums)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetAlbum)
				r.Get("/songs", s.handleAlbumSongs)
				r.Get("/images", s.handleAlbumImages)
			})
		})

		r.Get("/artists/{id}", s.handleGetArtist)

		r.Post("/accounts", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Route("/me", func(r chi.Router) {
				r.Get("/", s.handleMe)
				r.Get("/playlists", s.handleListPlaylists)
				r.Post("/playlists", s.handleCreatePlaylist)
				r.Post("/playlists/{id}/songs", s.handleAddPlaylistSong)
			})

			r.Get("/system/integrity", s.handleIntegrity)
		})
	})

	return r
}
