// Package api implements the HTTP REST API for the music catalog.
//
// This package provides:
//   - Read endpoints for songs, albums, album images and artists
//   - Account registration and JWT login
//   - Authenticated playlist management under /me
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//
// # Security
//
// Protected routes require an "Authorization: Bearer <token>" header carrying
// an access token issued by POST /auth/login. The token subject is the
// account ID.
//
// # Graceful Degradation
//
// The server runs without MQTT. Catalog events are then dropped and /health
// omits the mqtt field.
package api
